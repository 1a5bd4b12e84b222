package grape

import (
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/reoring/grape/i18n"
)

// Numeric carries the rules shared by Number, Integer and Float validators.
// Comparisons are done in float64.
type Numeric[S any] struct {
	Chain[S]
}

// Abs replaces the value by its absolute value, keeping its kind.
func (n *Numeric[S]) Abs() S {
	return n.add(func(c *Context) {
		switch v := c.Value(); v.Kind() {
		case KindInt:
			if v.i < 0 {
				c.Mutate(Int(-v.i))
			}
		case KindFloat:
			c.Mutate(Float(math.Abs(v.f)))
		}
	})
}

func (n *Numeric[S]) Min(min float64) S {
	return n.check("number.min", "min", map[string]string{"min": formatNumber(min)}, func(x float64) bool { return x >= min })
}

func (n *Numeric[S]) Max(max float64) S {
	return n.check("number.max", "max", map[string]string{"max": formatNumber(max)}, func(x float64) bool { return x <= max })
}

// Range requires min <= value <= max.
func (n *Numeric[S]) Range(min, max float64) S {
	data := map[string]string{"min": formatNumber(min), "max": formatNumber(max)}
	return n.check("number.range", "range", data, func(x float64) bool { return x >= min && x <= max })
}

func (n *Numeric[S]) Zero() S {
	return n.check("number.zero", "zero", nil, func(x float64) bool { return x == 0 })
}

func (n *Numeric[S]) NonZero() S {
	return n.check("number.non_zero", "non_zero", nil, func(x float64) bool { return x != 0 })
}

// Positive accepts zero and above.
func (n *Numeric[S]) Positive() S {
	return n.check("number.positive", "positive", nil, func(x float64) bool { return x >= 0 })
}

// Negative accepts values strictly below zero.
func (n *Numeric[S]) Negative() S {
	return n.check("number.negative", "negative", nil, func(x float64) bool { return x < 0 })
}

// Odd requires an odd integral value.
func (n *Numeric[S]) Odd() S {
	return n.check("number.odd", "odd", nil, func(x float64) bool { return x == math.Trunc(x) && math.Mod(x, 2) != 0 })
}

// Even requires an even integral value.
func (n *Numeric[S]) Even() S {
	return n.check("number.even", "even", nil, func(x float64) bool { return math.Mod(x, 2) == 0 })
}

func (n *Numeric[S]) check(code, rule string, data map[string]string, ok func(float64) bool) S {
	return n.add(func(c *Context) {
		x, _ := c.Value().AsNumber()
		if !ok(x) {
			c.Report(i18n.T(code, data), rule)
		}
	})
}

// NumberValidator accepts ints and floats as they are.
type NumberValidator struct {
	Numeric[*NumberValidator]
}

// NewNumber returns a validator for any int or float.
func NewNumber() *NumberValidator {
	n := &NumberValidator{}
	n.init(n)
	n.add(func(c *Context) {
		if !c.Value().IsNumber() {
			c.Report(i18n.T("number", nil), "number")
		}
	})
	return n
}

// IntegerValidator validates integers.
type IntegerValidator struct {
	Numeric[*IntegerValidator]
	strict bool
}

// NewInteger returns an integer validator. A non-strict validator accepts
// floats and numeric strings without a fractional part and converts them,
// so "42" becomes 42.
func NewInteger(strict bool) *IntegerValidator {
	iv := &IntegerValidator{strict: strict}
	iv.init(iv)
	iv.add(func(c *Context) {
		v := c.Value()
		if v.Kind() == KindInt {
			return
		}
		if !strict {
			if num, ok := numericOf(v); ok {
				if f, isFloat := num.AsFloat(); !isFloat || (f == math.Trunc(f) && math.Abs(f) < math.MaxInt64) {
					if i, err := cast.ToInt64E(num.Interface()); err == nil {
						c.Mutate(Int(i))
						return
					}
				}
			}
		}
		c.Report(i18n.T("integer", nil), "integer")
	})
	return iv
}

// FloatValidator validates floats.
type FloatValidator struct {
	Numeric[*FloatValidator]
	strict bool
}

// NewFloat returns a float validator. A non-strict validator accepts ints
// and numeric strings and converts them to float.
func NewFloat(strict bool) *FloatValidator {
	fv := &FloatValidator{strict: strict}
	fv.init(fv)
	fv.add(func(c *Context) {
		v := c.Value()
		if v.Kind() == KindFloat {
			return
		}
		if !strict {
			if num, ok := numericOf(v); ok {
				if f, err := cast.ToFloat64E(num.Interface()); err == nil {
					c.Mutate(Float(f))
					return
				}
			}
		}
		c.Report(i18n.T("float", nil), "float")
	})
	return fv
}

// Round rounds half away from zero to precision decimals.
func (f *FloatValidator) Round(precision int) *FloatValidator {
	p := math.Pow10(precision)
	return f.mapFloat(func(x float64) float64 { return math.Round(x*p) / p })
}

func (f *FloatValidator) Floor() *FloatValidator { return f.mapFloat(math.Floor) }
func (f *FloatValidator) Ceil() *FloatValidator  { return f.mapFloat(math.Ceil) }

func (f *FloatValidator) NaN() *FloatValidator {
	return f.check("float.nan", "nan", nil, math.IsNaN)
}

func (f *FloatValidator) NotNaN() *FloatValidator {
	return f.check("float.not_nan", "not_nan", nil, func(x float64) bool { return !math.IsNaN(x) })
}

func (f *FloatValidator) WithoutDecimals() *FloatValidator {
	return f.check("float.without_decimals", "without_decimals", nil, func(x float64) bool { return x == math.Trunc(x) })
}

func (f *FloatValidator) mapFloat(fn func(float64) float64) *FloatValidator {
	return f.add(func(c *Context) {
		if x, ok := c.Value().AsFloat(); ok {
			c.Mutate(Float(fn(x)))
		}
	})
}

// numericOf returns v as a number Value when it is one or when it is a
// string holding a decimal number. Booleans are not numeric.
func numericOf(v Value) (Value, bool) {
	if v.IsNumber() {
		return v, true
	}
	s, ok := v.AsString()
	if !ok {
		return Value{}, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return Value{}, false
	}
	num, err := numberValue(s)
	if err != nil {
		return Value{}, false
	}
	if f, isFloat := num.AsFloat(); isFloat && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return Value{}, false
	}
	return num, true
}

func formatNumber(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
