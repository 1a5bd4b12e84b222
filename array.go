package grape

import (
	"strconv"

	"github.com/reoring/grape/i18n"
)

// Mode selects how an ArrayValidator treats failing elements.
type Mode uint8

const (
	// FailFast stops at the first failing element and reports its messages.
	FailFast Mode = iota
	// CollectErrors checks every element and reports all failing ones.
	CollectErrors
	// DropInvalid removes failing elements without reporting them.
	DropInvalid
)

func (m Mode) String() string {
	switch m {
	case FailFast:
		return "fail_fast"
	case CollectErrors:
		return "collect"
	case DropInvalid:
		return "drop"
	default:
		return "mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// ArrayValidator validates a list, each element through an optional item
// validator, then the list itself through its own rules.
type ArrayValidator struct {
	Chain[*ArrayValidator]
	item Validator
	mode Mode
}

// Array returns a list validator. item may be nil to accept any elements.
func Array(item Validator, mode Mode) *ArrayValidator {
	a := &ArrayValidator{item: item, mode: mode}
	a.init(a)
	return a
}

// Item returns the element validator, nil when elements are not checked.
func (a *ArrayValidator) Item() Validator { return a.item }

func (a *ArrayValidator) Mode() Mode { return a.mode }

// Check validates the list in v.
func (a *ArrayValidator) Check(c *Context, v Value) error {
	if c == nil {
		return ErrMissingContext
	}
	if a.enter(c, v) {
		return nil
	}
	items, ok := v.AsList()
	if !ok {
		c.Report(i18n.T(RuleArray, nil), RuleArray)
		return nil
	}
	if a.item != nil {
		kept, err := a.checkItems(c, items)
		if err != nil {
			return err
		}
		if !c.valid {
			return nil
		}
		c.Mutate(Value{kind: KindList, list: kept})
	}
	a.apply(c)
	if c.pass.aborted() {
		return c.pass.err
	}
	if c.valid {
		c.Sanitize()
	}
	return nil
}

func (a *ArrayValidator) checkItems(c *Context, items []Value) ([]Value, error) {
	kept := make([]Value, 0, len(items))
	for i, it := range items {
		ec := c.element(i, it)
		if err := a.item.Check(ec, it); err != nil {
			return nil, err
		}
		if ec.sink.empty() {
			// a list has no holes: an element that committed nothing
			// (an accepted null) is kept as given
			if ec.out.written {
				it = ec.out.value()
			}
			kept = append(kept, it)
			continue
		}
		switch a.mode {
		case DropInvalid:
			c.Logger().Debug().Int("index", i).Msg("dropped invalid element")
		case CollectErrors:
			c.sink.merge(ec.sink)
			c.valid = false
		default:
			c.sink.merge(ec.sink)
			c.valid = false
			return kept, nil
		}
	}
	return kept, nil
}

// Min requires at least n elements.
func (a *ArrayValidator) Min(n int) *ArrayValidator {
	return a.count("array.min", "min", n, func(l int) bool { return l >= n })
}

// Max requires at most n elements.
func (a *ArrayValidator) Max(n int) *ArrayValidator {
	return a.count("array.max", "max", n, func(l int) bool { return l <= n })
}

// Length requires exactly n elements.
func (a *ArrayValidator) Length(n int) *ArrayValidator {
	return a.count("array.length", "length", n, func(l int) bool { return l == n })
}

// Empty requires an empty list.
func (a *ArrayValidator) Empty() *ArrayValidator {
	return a.add(func(c *Context) {
		if c.Value().Len() != 0 {
			c.Report(i18n.T("array.empty", nil), "empty")
		}
	})
}

// NotEmpty requires at least one element.
func (a *ArrayValidator) NotEmpty() *ArrayValidator {
	return a.add(func(c *Context) {
		if c.Value().Len() == 0 {
			c.Report(i18n.T("array.not_empty", nil), "not_empty")
		}
	})
}

// Distinct requires pairwise different elements. With keys, map elements are
// compared on those keys only.
func (a *ArrayValidator) Distinct(keys ...string) *ArrayValidator {
	return a.add(func(c *Context) {
		items, _ := c.Value().AsList()
		seen := make([]Value, 0, len(items))
		for _, it := range items {
			p := project(it, keys)
			for _, s := range seen {
				if s.Equal(p) {
					c.Report(i18n.T("array.distinct", nil), "distinct")
					return
				}
			}
			seen = append(seen, p)
		}
	})
}

func (a *ArrayValidator) count(code, name string, n int, ok func(int) bool) *ArrayValidator {
	data := map[string]string{name: strconv.Itoa(n)}
	return a.add(func(c *Context) {
		if !ok(c.Value().Len()) {
			c.Report(i18n.T(code, data), name)
		}
	})
}

func project(v Value, keys []string) Value {
	obj, ok := v.AsMap()
	if !ok || len(keys) == 0 {
		return v
	}
	out := NewObject()
	for _, k := range keys {
		fv, ok := obj.Get(k)
		if !ok || fv.IsNull() {
			// absent and null compare as the empty string
			fv = String("")
		}
		out.Set(k, fv)
	}
	return Map(out)
}
