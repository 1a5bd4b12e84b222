// Package store provides rules that check a value against a SQL database:
// Unique for "not taken yet" and Exists for "refers to a known row".
//
// The database handle is owned by the caller and reaches the rules either
// through grape.WithResource or through the Using option. Queries run with
// the context of the validation pass.
package store

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/reoring/grape"
	"github.com/reoring/grape/i18n"
)

// Querier is the part of *sql.DB, *sql.Tx and *sql.Conn the rules need.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ErrNoQuerier aborts the pass when no database handle was provided.
var ErrNoQuerier = errors.New("store: no Querier available; pass one with grape.WithResource or store.Using")

// Option configures Unique and Exists.
type Option func(*lookup)

// Ignore excludes rows whose column equals value, typically the row being
// updated.
func Ignore(column string, value any) Option {
	return func(l *lookup) { l.ignore = append(l.ignore, sq.NotEq{column: value}) }
}

// Where adds equality conditions, for example a tenant column.
func Where(eq map[string]any) Option {
	return func(l *lookup) { l.where = append(l.where, sq.Eq(eq)) }
}

// Dollar switches to $1, $2 placeholders (PostgreSQL).
func Dollar() Option {
	return func(l *lookup) { l.placeholders = sq.Dollar }
}

// Using sets the database handle, overriding the pass resource.
func Using(q Querier) Option {
	return func(l *lookup) { l.q = q }
}

type lookup struct {
	table        string
	column       string
	q            Querier
	ignore       []sq.Sqlizer
	where        []sq.Sqlizer
	placeholders sq.PlaceholderFormat
}

func newLookup(table, column string, opts []Option) *lookup {
	l := &lookup{table: table, column: column, placeholders: sq.Question}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// query builds SELECT COUNT(*) FROM table WHERE column = value [AND ...].
func (l *lookup) query(value any) (string, []any, error) {
	b := sq.Select("COUNT(*)").
		From(l.table).
		Where(sq.Eq{l.column: value}).
		PlaceholderFormat(l.placeholders)
	for _, w := range l.where {
		b = b.Where(w)
	}
	for _, w := range l.ignore {
		b = b.Where(w)
	}
	return b.ToSql()
}

// count runs the lookup. ok is false when the rule already reported or
// aborted.
func (l *lookup) count(c *grape.Context, rule string) (n int64, ok bool) {
	q := l.q
	if !usable(q) {
		q, _ = c.Resource().(Querier)
	}
	if !usable(q) {
		c.Abort(ErrNoQuerier)
		return 0, false
	}
	v := c.Value()
	if !v.IsScalar() {
		c.Report(i18n.T("unverified", nil), rule)
		return 0, false
	}
	query, args, err := l.query(v.Interface())
	if err == nil {
		err = q.QueryRowContext(c.Context(), query, args...).Scan(&n)
	}
	if err != nil {
		c.Logger().Warn().Err(err).Str("table", l.table).Str("column", l.column).Msg("lookup failed")
		c.Report(i18n.T("unverified", nil), rule)
		return 0, false
	}
	return n, true
}

// usable rejects nil and typed-nil handles.
func usable(q Querier) bool {
	switch h := q.(type) {
	case nil:
		return false
	case *sql.DB:
		return h != nil
	case *sql.Tx:
		return h != nil
	case *sql.Conn:
		return h != nil
	}
	return true
}

// Unique reports the value when a row of table already holds it in column.
func Unique(table, column string, opts ...Option) grape.Rule {
	l := newLookup(table, column, opts)
	return func(c *grape.Context) {
		if n, ok := l.count(c, "unique"); ok && n > 0 {
			c.Report(i18n.T("unique", map[string]string{"table": table}), "unique")
		}
	}
}

// Exists reports the value when no row of table holds it in column.
func Exists(table, column string, opts ...Option) grape.Rule {
	l := newLookup(table, column, opts)
	return func(c *grape.Context) {
		if n, ok := l.count(c, "exists"); ok && n == 0 {
			c.Report(i18n.T("exists", map[string]string{"table": table}), "exists")
		}
	}
}
