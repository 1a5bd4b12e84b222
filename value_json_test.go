package grape_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/reoring/grape"
)

func TestParseJSON_PreservesOrderAndIntegers(t *testing.T) {
	src := `{"b":1,"a":[1.5,"x",true,null],"c":{"z":-3}}`
	v, err := grape.ParseJSON([]byte(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj, _ := v.AsMap()
	if keys := obj.Keys(); strings.Join(keys, ",") != "b,a,c" {
		t.Fatalf("unexpected key order %v", keys)
	}
	if b, _ := v.Field("b"); b.Kind() != grape.KindInt {
		t.Fatalf("expected int, got %s", b.Kind())
	}
	out, err := v.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != src {
		t.Fatalf("round trip mismatch:\n got %s\nwant %s", out, src)
	}
}

func TestParseJSON_Enforcement(t *testing.T) {
	if _, err := grape.ParseJSON([]byte(`{"a":1,"a":2}`), grape.OnDuplicateKey(grape.DuplicateError, nil)); !errors.Is(err, grape.ErrInvalidData) {
		t.Fatalf("expected duplicate key error, got %v", err)
	}

	var warned []string
	v, err := grape.ParseJSON([]byte(`{"a":1,"a":2}`), grape.OnDuplicateKey(grape.DuplicateWarn, func(path, _ string) {
		warned = append(warned, path)
	}))
	if err != nil || len(warned) != 1 || warned[0] != "a" {
		t.Fatalf("expected one warning, got %v / %v", warned, err)
	}
	if a, _ := v.Field("a"); !a.Equal(grape.Int(2)) {
		t.Fatalf("last value wins, got %s", a)
	}

	if _, err := grape.ParseJSON([]byte(`[[[1]]]`), grape.MaxDepth(2)); !errors.Is(err, grape.ErrInvalidData) {
		t.Fatalf("expected depth error, got %v", err)
	}
	if _, err := grape.ParseJSON([]byte(`{"a":1} {"b":2}`)); !errors.Is(err, grape.ErrInvalidData) {
		t.Fatalf("expected trailing data error, got %v", err)
	}
	if _, err := grape.ParseJSON([]byte(`{"a":`)); !errors.Is(err, grape.ErrInvalidData) {
		t.Fatalf("expected syntax error, got %v", err)
	}
}

// countingReader serves {"a":"xxxx..."} of about size bytes and records
// how much was read.
type countingReader struct {
	r    io.Reader
	read int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.read += int64(n)
	return n, err
}

func TestDecodeJSON_MaxBytesStopsReading(t *testing.T) {
	const size = 20 << 20
	body := io.MultiReader(
		strings.NewReader(`{"a":"`),
		io.LimitReader(repeatReader('x'), size),
		strings.NewReader(`"}`),
	)
	cr := &countingReader{r: body}
	_, err := grape.DecodeJSON(cr, grape.MaxBytes(1024))
	if !errors.Is(err, grape.ErrInvalidData) || !strings.Contains(err.Error(), "max bytes exceeded") {
		t.Fatalf("expected max bytes error, got %v", err)
	}
	if cr.read > 1025 {
		t.Fatalf("read %d bytes past a 1024 byte limit", cr.read)
	}

	exact := `{"a":"xx"}`
	if _, err := grape.DecodeJSON(strings.NewReader(exact), grape.MaxBytes(int64(len(exact)))); err != nil {
		t.Fatalf("a document of exactly the limit must decode: %v", err)
	}
}

type repeatReader byte

func (b repeatReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(b)
	}
	return len(p), nil
}

func TestValue_UnmarshalJSON(t *testing.T) {
	var v grape.Value
	if err := v.UnmarshalJSON([]byte(`{"k":[1,2]}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Equal(grape.MustValueOf(map[string]any{"k": []any{1, 2}})) {
		t.Fatalf("unexpected value %s", v)
	}
}

func TestParseYAML(t *testing.T) {
	src := "b: 1\na: [x, 2.5, true, null]\nbase: &anchor {k: v}\nref: *anchor\n"
	v, err := grape.ParseYAML([]byte(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj, _ := v.AsMap()
	if keys := obj.Keys(); strings.Join(keys, ",") != "b,a,base,ref" {
		t.Fatalf("unexpected key order %v", keys)
	}
	want := grape.List(grape.String("x"), grape.Float(2.5), grape.Bool(true), grape.Null())
	if a, _ := v.Field("a"); !a.Equal(want) {
		t.Fatalf("unexpected list %s", a)
	}
	if b, _ := v.Field("b"); b.Kind() != grape.KindInt {
		t.Fatalf("expected int, got %s", b.Kind())
	}
	if ref, _ := v.Field("ref"); !ref.Equal(grape.MustValueOf(map[string]any{"k": "v"})) {
		t.Fatalf("alias not resolved: %s", ref)
	}

	if _, err := grape.ParseYAML([]byte("a: [")); !errors.Is(err, grape.ErrInvalidData) {
		t.Fatalf("expected ErrInvalidData, got %v", err)
	}
}
