package grape_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/reoring/grape"
)

func userSchema() *grape.SchemaValidator {
	return grape.MustSchema(
		grape.Prop("name", grape.NewString(true).Trim().Required()),
		grape.Prop("age", grape.NewInteger(false).Min(0)),
		grape.Prop("tags", grape.Array(grape.NewString(true), grape.CollectErrors)),
	)
}

func TestResult_Accessors(t *testing.T) {
	r := validate(t, userSchema(), map[string]any{"name": " ann ", "age": -1})
	if r.Passes() || r.OK() || !r.Failed() || !r.HasErrors() {
		t.Fatal("inconsistent status accessors")
	}
	msgs := r.Messages()
	msgs["injected"] = grape.Message{}
	if _, ok := r.Message("injected"); ok {
		t.Fatal("Messages must return a copy")
	}
	if name, _ := r.Raw().Field("name"); name.String() != " ann " {
		t.Fatalf("raw must be untouched, got %q", name.String())
	}
	err := r.Err()
	if err == nil || !strings.Contains(err.Error(), "age must be at least 0 (min)") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestResult_Bind(t *testing.T) {
	type user struct {
		Name string   `json:"name"`
		Age  int      `json:"age"`
		Tags []string `json:"tags"`
	}
	r := validate(t, userSchema(), map[string]any{"name": " ann ", "age": "31", "tags": []any{"a", "b"}})
	var u user
	if err := r.Bind(&u); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if u.Name != "ann" || u.Age != 31 || len(u.Tags) != 2 {
		t.Fatalf("unexpected bound value %+v", u)
	}

	failed := validate(t, userSchema(), map[string]any{})
	if err := failed.Bind(&u); err == nil {
		t.Fatal("binding a failed result must error")
	}
}

func TestResult_MarshalJSON(t *testing.T) {
	r := validate(t, userSchema(), map[string]any{"name": "bob", "age": 42})
	out, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"valid":true,"sanitized":{"name":"bob","age":42}}` {
		t.Fatalf("unexpected json %s", out)
	}

	r = validate(t, userSchema(), map[string]any{"name": "bob", "age": -1})
	out, err = json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `"messages":{"age":{"message":"age must be at least 0","rule":"min"}}`
	if !strings.Contains(string(out), want) || !strings.Contains(string(out), `"sanitized":{}`) {
		t.Fatalf("unexpected json %s", out)
	}
}

func TestValidationError_Summary(t *testing.T) {
	ve := &grape.ValidationError{Messages: grape.Messages{
		"a": {Message: "a bad", Rule: "x"},
		"b": {Message: "b bad", Rule: "x"},
		"c": {Message: "c bad", Rule: "x"},
		"d": {Message: "d bad", Rule: "x"},
	}}
	s := ve.Error()
	if !strings.HasPrefix(s, "validation failed: a bad (x); b bad (x); c bad (x)") || !strings.Contains(s, "total 4") {
		t.Fatalf("unexpected summary %q", s)
	}
}
