package main

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schemaDoc = `
properties:
  email: {type: string, required: true, rules: [trim, lowercase, email]}
  age: {type: integer, strict: false, rules: [{min: 0}]}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Usage(t *testing.T) {
	code, _, stderr := runCLI(t, "")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "grape validate")

	code, _, _ = runCLI(t, "", "lint")
	assert.Equal(t, exitUsage, code)

	code, _, _ = runCLI(t, "", "validate", "-schema", "x.yaml")
	assert.Equal(t, exitUsage, code)

	code, _, _ = runCLI(t, "", "validate", "-bogus")
	assert.Equal(t, exitUsage, code)
}

func TestValidate_Valid(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.yaml", schemaDoc)
	input := writeFile(t, dir, "in.json", `{"email": " Bob@Example.com ", "age": "7", "extra": true}`)

	code, stdout, _ := runCLI(t, "", "validate", "-schema", schema, "-input", input)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "valid")
	assert.Contains(t, stdout, `"bob@example.com"`)
	assert.NotContains(t, stdout, "extra")
}

func TestValidate_Invalid(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.yaml", schemaDoc)
	input := writeFile(t, dir, "in.json", `{"email": "nope", "age": -3}`)

	code, stdout, _ := runCLI(t, "", "validate", "-schema", schema, "-input", input)
	assert.Equal(t, exitInvalid, code)
	assert.Contains(t, stdout, "invalid: 2 error(s)")
	assert.Contains(t, stdout, "email must be a valid email (email)")
	assert.Contains(t, stdout, "age must be at least 0 (min)")
	assert.NotContains(t, stdout, "\x1b[")

	code, stdout, _ = runCLI(t, "", "validate", "-schema", schema, "-input", input, "-color", "always")
	assert.Equal(t, exitInvalid, code)
	assert.Contains(t, stdout, "\x1b[")
}

func TestValidate_JSONOutputFromStdin(t *testing.T) {
	schema := writeFile(t, t.TempDir(), "schema.json", `{"properties": {"email": {"type": "string", "required": true}}}`)

	code, stdout, _ := runCLI(t, `{}`, "validate", "-schema", schema, "-input", "-", "-json")
	assert.Equal(t, exitInvalid, code)

	var out struct {
		Valid    bool `json:"valid"`
		Messages map[string]struct {
			Message string `json:"message"`
			Rule    string `json:"rule"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.False(t, out.Valid)
	assert.Equal(t, "required", out.Messages["email"].Rule)
}

func TestValidate_YAMLInput(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.yaml", schemaDoc)
	input := writeFile(t, dir, "in.yml", "email: bob@example.com\nage: 30\n")

	code, _, _ := runCLI(t, "", "validate", "-schema", schema, "-input", input)
	assert.Equal(t, exitOK, code)
}

func TestValidate_Errors(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.yaml", schemaDoc)
	input := writeFile(t, dir, "in.json", `{"email": "a@b.co"}`)

	code, _, stderr := runCLI(t, "", "validate", "-schema", writeFile(t, dir, "bad.yaml", "properties: [a]"), "-input", input)
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "schema:")

	code, _, stderr = runCLI(t, "", "validate", "-schema", schema, "-input", filepath.Join(dir, "missing.json"))
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "input:")

	t.Setenv("GRAPE_DUPLICATE_KEYS", "error")
	dup := writeFile(t, dir, "dup.json", `{"email": "a@b.co", "email": "c@d.co"}`)
	code, _, _ = runCLI(t, "", "validate", "-schema", schema, "-input", dup)
	assert.Equal(t, exitUsage, code)

	t.Setenv("GRAPE_LANG", "de")
	code, _, stderr = runCLI(t, "", "validate", "-schema", schema, "-input", input)
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "config:")
}

func TestValidate_UniqueAgainstSQLite(t *testing.T) {
	dir := t.TempDir()
	dsn := filepath.Join(dir, "users.db")
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE users (email TEXT NOT NULL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO users (email) VALUES ('taken@example.com')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	t.Setenv("GRAPE_DB_DRIVER", "sqlite")
	t.Setenv("GRAPE_DB_DSN", dsn)
	schema := writeFile(t, dir, "schema.yaml", `
properties:
  email: {type: string, rules: [lowercase, {unique: {table: users, column: email}}]}
`)

	code, stdout, _ := runCLI(t, "", "validate", "-schema", schema, "-input", writeFile(t, dir, "a.json", `{"email": "Taken@example.com"}`))
	assert.Equal(t, exitInvalid, code)
	assert.Contains(t, stdout, "email must be unique in users")

	code, _, _ = runCLI(t, "", "validate", "-schema", schema, "-input", writeFile(t, dir, "b.json", `{"email": "free@example.com"}`))
	assert.Equal(t, exitOK, code)
}
