// Package rules holds cross-field and conditional rules. Paths address the
// whole input from its root, either dot-joined ("user.email") or as a JSON
// Pointer ("/user/email").
package rules

import (
	"strings"

	"github.com/reoring/grape"
	"github.com/reoring/grape/i18n"
)

// Op defines simple comparison operators for If(...).Then(...)
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

// Conditional composes conditional execution of rules.
type Conditional struct {
	path string
	op   Op
	want grape.Value
	bad  bool          // want could not be converted; never holds
	all  []Conditional // composite AND
	any  []Conditional // composite OR
}

// If builds a conditional comparing the value at path with want. A missing
// path never satisfies the condition.
func If(path string, op Op, want any) Conditional {
	v, err := grape.ValueOf(want)
	return Conditional{path: normalizePath(path), op: op, want: v, bad: err != nil}
}

// IfAll builds a conditional that requires all conditions to hold.
func IfAll(conds ...Conditional) Conditional { return Conditional{all: conds} }

// IfAny builds a conditional that requires any condition to hold.
func IfAny(conds ...Conditional) Conditional { return Conditional{any: conds} }

// And combines the receiver with additional conditions using logical AND.
func (c Conditional) And(others ...Conditional) Conditional {
	return IfAll(append([]Conditional{c}, others...)...)
}

// Or combines the receiver with additional conditions using logical OR.
func (c Conditional) Or(others ...Conditional) Conditional {
	return IfAny(append([]Conditional{c}, others...)...)
}

// Holds evaluates the condition against the input of the pass.
func (c Conditional) Holds(ctx *grape.Context) bool {
	if len(c.all) > 0 {
		for _, it := range c.all {
			if !it.Holds(ctx) {
				return false
			}
		}
		return true
	}
	if len(c.any) > 0 {
		for _, it := range c.any {
			if it.Holds(ctx) {
				return true
			}
		}
		return false
	}
	if c.bad {
		return false
	}
	cur, ok := ctx.Lookup(c.path)
	if !ok {
		return false
	}
	return compare(cur, c.op, c.want)
}

// Then returns a rule running rules, in order and up to the first failure,
// only when the condition holds.
func (c Conditional) Then(rules ...grape.Rule) grape.Rule {
	return func(ctx *grape.Context) {
		if !c.Holds(ctx) {
			return
		}
		All(rules...)(ctx)
	}
}

// All runs rules in order and stops at the first failure.
func All(rules ...grape.Rule) grape.Rule {
	return func(ctx *grape.Context) {
		for _, r := range rules {
			if r == nil {
				continue
			}
			r(ctx)
			if !ctx.Valid() {
				return
			}
		}
	}
}

// Same requires the value to equal the one at path, as for a password
// confirmation.
func Same(path string) grape.Rule {
	p := normalizePath(path)
	return func(ctx *grape.Context) {
		other, ok := ctx.Lookup(p)
		if !ok || !ctx.Value().Equal(other) {
			ctx.Report(i18n.T("same", map[string]string{"other": p}), "same")
		}
	}
}

// Different requires the value to differ from the one at path. A missing
// path counts as different.
func Different(path string) grape.Rule {
	p := normalizePath(path)
	return func(ctx *grape.Context) {
		if other, ok := ctx.Lookup(p); ok && ctx.Value().Equal(other) {
			ctx.Report(i18n.T("different", map[string]string{"other": p}), "different")
		}
	}
}

// ------- helpers -------

// normalizePath turns a JSON Pointer into a dot-joined path.
func normalizePath(p string) string {
	if !strings.HasPrefix(p, "/") {
		return p
	}
	parts := strings.Split(strings.TrimPrefix(p, "/"), "/")
	for i, s := range parts {
		parts[i] = strings.NewReplacer("~1", "/", "~0", "~").Replace(s)
	}
	return strings.Join(parts, ".")
}

func compare(cur grape.Value, op Op, want grape.Value) bool {
	switch op {
	case Eq:
		return cur.Equal(want)
	case Ne:
		return !cur.Equal(want)
	case Lt, Le, Gt, Ge:
		return compareOrdered(cur, op, want)
	default:
		return false
	}
}

// compareOrdered orders numbers with numbers and strings with strings.
func compareOrdered(cur grape.Value, op Op, want grape.Value) bool {
	cmp, ok := order(cur, want)
	if !ok {
		return false
	}
	switch op {
	case Lt:
		return cmp < 0
	case Le:
		return cmp <= 0
	case Gt:
		return cmp > 0
	case Ge:
		return cmp >= 0
	}
	return false
}

func order(a, b grape.Value) (int, bool) {
	if x, ok := a.AsNumber(); ok {
		y, ok := b.AsNumber()
		if !ok {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	}
	if x, ok := a.AsString(); ok {
		y, ok := b.AsString()
		if !ok {
			return 0, false
		}
		return strings.Compare(x, y), true
	}
	return 0, false
}
