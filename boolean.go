package grape

import "github.com/reoring/grape/i18n"

// BooleanValidator validates booleans.
type BooleanValidator struct {
	Chain[*BooleanValidator]
	strict bool
}

// NewBoolean returns a boolean validator. A non-strict validator converts
// the values listed in the pass BoolSet (see WithBools).
func NewBoolean(strict bool) *BooleanValidator {
	b := &BooleanValidator{strict: strict}
	b.init(b)
	b.add(func(c *Context) {
		v := c.Value()
		if v.Kind() == KindBool {
			return
		}
		if !strict {
			if val, ok := c.Bools().Convert(v); ok {
				c.Mutate(Bool(val))
				return
			}
		}
		c.Report(i18n.T("bool", nil), "bool")
	})
	return b
}

// True requires true.
func (b *BooleanValidator) True() *BooleanValidator { return b.want(true, "bool.true", "true") }

// False requires false.
func (b *BooleanValidator) False() *BooleanValidator { return b.want(false, "bool.false", "false") }

func (b *BooleanValidator) want(want bool, code, rule string) *BooleanValidator {
	return b.add(func(c *Context) {
		if got, _ := c.Value().AsBool(); got != want {
			c.Report(i18n.T(code, nil), rule)
		}
	})
}

// AcceptedValidator requires an affirmative answer such as a ticked terms
// checkbox. It is always required and never nullable.
type AcceptedValidator struct {
	Chain[*AcceptedValidator]
}

var acceptedValues = []Value{Bool(true), Int(1), String("true"), String("1"), String("on"), String("yes")}

// NewAccepted returns an accepted validator.
func NewAccepted() *AcceptedValidator {
	a := &AcceptedValidator{}
	a.init(a)
	a.required = true
	a.add(func(c *Context) {
		if !contains(acceptedValues, c.Value()) {
			c.Report(i18n.T("accepted", nil), "accepted")
		}
	})
	return a
}

// Required is a no-op: an accepted field is always required.
func (a *AcceptedValidator) Required() *AcceptedValidator { return a }

// Nullable is a no-op: null is never accepted.
func (a *AcceptedValidator) Nullable() *AcceptedValidator { return a }

// NullValidator accepts only null.
type NullValidator struct {
	Chain[*NullValidator]
}

// NewNull returns a validator that reports any non-null value.
func NewNull() *NullValidator {
	n := &NullValidator{}
	n.init(n)
	n.nullable = true
	n.add(func(c *Context) {
		if !c.Value().IsNull() {
			c.Report(i18n.T("null", nil), "null")
		}
	})
	return n
}

// MixedValidator accepts any value and commits it unchanged. Custom rules
// may still be attached through Use.
type MixedValidator struct {
	Chain[*MixedValidator]
}

// NewMixed returns a validator accepting anything but null, unless made
// Nullable.
func NewMixed() *MixedValidator {
	m := &MixedValidator{}
	m.init(m)
	return m
}
