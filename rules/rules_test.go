package rules_test

import (
	"context"
	"testing"

	"github.com/reoring/grape"
	"github.com/reoring/grape/rules"
)

func run(t *testing.T, s *grape.SchemaValidator, in map[string]any) *grape.Result {
	t.Helper()
	r, err := s.Validate(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return r
}

func TestSameAndDifferent(t *testing.T) {
	s := grape.MustSchema(
		grape.Prop("password", grape.NewString(true).Min(8)),
		grape.Prop("confirm", grape.NewString(true).Use(rules.Same("password"))),
		grape.Prop("login", grape.NewString(true).Use(rules.Different("/password"))),
	)

	r := run(t, s, map[string]any{"password": "s3cret-pw", "confirm": "s3cret-pw", "login": "bob"})
	if !r.Passes() {
		t.Fatalf("expected pass, got %v", r.Messages())
	}

	r = run(t, s, map[string]any{"password": "s3cret-pw", "confirm": "other", "login": "s3cret-pw"})
	if m, _ := r.Message("confirm"); m.Rule != "same" || m.Message != "confirm must match password" {
		t.Fatalf("unexpected confirm message %+v", m)
	}
	if m, _ := r.Message("login"); m.Rule != "different" {
		t.Fatalf("unexpected login message %+v", m)
	}
}

func TestIfThen(t *testing.T) {
	vat := grape.NewString(true).Use(
		rules.If("/kind", rules.Eq, "business").Then(rules.MustExpr(`len(value) == 11`, "{{ field }} must have 11 characters")),
	)
	s := grape.MustSchema(
		grape.Prop("kind", grape.NewString(true)),
		grape.Prop("vat", vat),
	)

	r := run(t, s, map[string]any{"kind": "person", "vat": "x"})
	if !r.Passes() {
		t.Fatalf("condition does not hold, expected pass: %v", r.Messages())
	}
	r = run(t, s, map[string]any{"kind": "business", "vat": "x"})
	if m, _ := r.Message("vat"); m.Rule != "expr" || m.Message != "vat must have 11 characters" {
		t.Fatalf("unexpected message %+v", m)
	}
}

func TestConditionalComposition(t *testing.T) {
	adult := rules.If("age", rules.Ge, 18)
	member := rules.If("member", rules.Eq, true)
	flag := func(ctx *grape.Context) { ctx.Report("{{ field }} flagged", "flag") }

	cases := []struct {
		name string
		cond rules.Conditional
		in   map[string]any
		want bool
	}{
		{"ge holds", adult, map[string]any{"age": 18}, true},
		{"ge fails", adult, map[string]any{"age": 17.5}, false},
		{"missing path", adult, map[string]any{}, false},
		{"type mismatch", adult, map[string]any{"age": "20"}, false},
		{"and", adult.And(member), map[string]any{"age": 30, "member": false}, false},
		{"or", adult.Or(member), map[string]any{"age": 3, "member": true}, true},
		{"all", rules.IfAll(adult, member), map[string]any{"age": 30, "member": true}, true},
		{"any", rules.IfAny(rules.If("name", rules.Lt, "m"), member), map[string]any{"name": "bob"}, true},
		{"ne", rules.If("name", rules.Ne, "bob"), map[string]any{"name": "bob"}, false},
		{"lt", rules.If("n", rules.Lt, 2), map[string]any{"n": 1}, true},
		{"le", rules.If("n", rules.Le, 1), map[string]any{"n": 1.0}, true},
		{"gt", rules.If("n", rules.Gt, 1), map[string]any{"n": 1}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := grape.MustSchema(grape.Prop("probe", grape.NewMixed().Use(tc.cond.Then(flag))))
			in := map[string]any{"probe": 1}
			for k, v := range tc.in {
				in[k] = v
			}
			r := run(t, s, in)
			if flagged := r.Failed(); flagged != tc.want {
				t.Fatalf("condition evaluated to %v, want %v", flagged, tc.want)
			}
		})
	}
}

func TestAllStopsAtFirstFailure(t *testing.T) {
	calls := 0
	s := grape.MustSchema(grape.Prop("x", grape.NewMixed().Use(rules.All(
		func(ctx *grape.Context) { ctx.Report("first", "first") },
		func(ctx *grape.Context) { calls++ },
	))))
	r := run(t, s, map[string]any{"x": 1})
	if m, _ := r.Message("x"); m.Rule != "first" || calls != 0 {
		t.Fatalf("unexpected outcome %+v / %d", m, calls)
	}
}

func TestExpr(t *testing.T) {
	s := grape.MustSchema(
		grape.Prop("min_age", grape.NewInteger(true)),
		grape.Prop("age", grape.NewInteger(true).Use(rules.MustExpr(`value >= root.min_age`, ""))),
		grape.Prop("code", grape.NewString(true).Use(rules.MustExpr(`field == "code" && value startsWith "X-"`, "bad code"))),
	)
	r := run(t, s, map[string]any{"min_age": 18, "age": 21, "code": "X-1"})
	if !r.Passes() {
		t.Fatalf("expected pass, got %v", r.Messages())
	}

	r = run(t, s, map[string]any{"min_age": 18, "age": 12, "code": "Y-1"})
	if m, _ := r.Message("age"); m.Rule != "expr" || m.Message != "age is invalid" {
		t.Fatalf("unexpected age message %+v", m)
	}
	if m, _ := r.Message("code"); m.Message != "bad code" {
		t.Fatalf("unexpected code message %+v", m)
	}

	if _, err := rules.Expr(`value >=`, ""); err == nil {
		t.Fatal("expected compile error")
	}
}
