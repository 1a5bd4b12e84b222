package store_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/reoring/grape"
	"github.com/reoring/grape/store"
)

func emailSchema(rule grape.Rule) *grape.SchemaValidator {
	return grape.MustSchema(grape.Prop("email", grape.NewString(true).Trim().Use(rule)))
}

func TestUnique_Taken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE email = ?")).
		WithArgs("a@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	r, err := emailSchema(store.Unique("users", "email")).
		Validate(context.Background(), map[string]any{"email": " a@example.com "}, grape.WithResource(db))
	require.NoError(t, err)

	m, ok := r.Message("email")
	require.True(t, ok)
	assert.Equal(t, "unique", m.Rule)
	assert.Equal(t, "email must be unique in users", m.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnique_IgnoreAndDollar(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE email = $1 AND tenant = $2 AND id <> $3")).
		WithArgs("a@example.com", "acme", 7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	rule := store.Unique("users", "email",
		store.Where(map[string]any{"tenant": "acme"}),
		store.Ignore("id", 7),
		store.Dollar(),
		store.Using(db),
	)
	r, err := emailSchema(rule).Validate(context.Background(), map[string]any{"email": "a@example.com"})
	require.NoError(t, err)
	assert.True(t, r.Passes(), r.Messages())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM countries WHERE code = ?")).
		WithArgs("FR").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	s := grape.MustSchema(grape.Prop("country", grape.NewString(true).Uppercase().Use(store.Exists("countries", "code"))))
	r, err := s.Validate(context.Background(), map[string]any{"country": "fr"}, grape.WithResource(db))
	require.NoError(t, err)

	m, _ := r.Message("country")
	assert.Equal(t, "exists", m.Rule)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnique_DatabaseErrorIsReported(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("connection reset"))

	r, err := emailSchema(store.Unique("users", "email")).
		Validate(context.Background(), map[string]any{"email": "a@example.com"}, grape.WithResource(db))
	require.NoError(t, err)

	m, _ := r.Message("email")
	assert.Equal(t, "unique", m.Rule)
	assert.Equal(t, "email could not be verified", m.Message)
}

func TestUnique_MissingQuerierAborts(t *testing.T) {
	_, err := emailSchema(store.Unique("users", "email")).
		Validate(context.Background(), map[string]any{"email": "a@example.com"})
	assert.ErrorIs(t, err, store.ErrNoQuerier)
}

func TestUnique_NilHandleAborts(t *testing.T) {
	var db *sql.DB
	s := emailSchema(store.Unique("users", "email"))
	_, err := s.Validate(context.Background(), map[string]any{"email": "a@example.com"}, grape.WithResource(db))
	assert.ErrorIs(t, err, store.ErrNoQuerier)

	_, err = emailSchema(store.Exists("users", "email", store.Using(db))).
		Validate(context.Background(), map[string]any{"email": "a@example.com"})
	assert.ErrorIs(t, err, store.ErrNoQuerier)
}

func TestUnique_SQLite(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT NOT NULL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO users (id, email) VALUES (1, 'taken@example.com')`)
	require.NoError(t, err)

	s := emailSchema(store.Unique("users", "email"))
	ctx := context.Background()

	r, err := s.Validate(ctx, map[string]any{"email": "taken@example.com"}, grape.WithResource(db))
	require.NoError(t, err)
	assert.True(t, r.Failed())

	r, err = s.Validate(ctx, map[string]any{"email": "free@example.com"}, grape.WithResource(db))
	require.NoError(t, err)
	assert.True(t, r.Passes(), r.Messages())

	update := emailSchema(store.Unique("users", "email", store.Ignore("id", 1)))
	r, err = update.Validate(ctx, map[string]any{"email": "taken@example.com"}, grape.WithResource(db))
	require.NoError(t, err)
	assert.True(t, r.Passes(), "the row being updated must be ignored")
}
