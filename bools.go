package grape

import "strings"

// BoolSet lists the scalar values a non-strict Boolean validator converts to
// true or false. Strings are compared case-insensitively after trimming.
type BoolSet struct {
	truthy []Value
	falsy  []Value
}

// DefaultBools returns a fresh set holding the built-in truthy and falsy
// values.
func DefaultBools() *BoolSet {
	return &BoolSet{
		truthy: []Value{Bool(true), String("true"), String("1"), Int(1), String("on"), String("yes"), String("y"), String("enable")},
		falsy:  []Value{Bool(false), String("false"), String("0"), Int(0), String("off"), String("no"), String("n"), String("disable")},
	}
}

// Truthy returns a copy of the truthy list.
func (b *BoolSet) Truthy() []Value { return append([]Value(nil), b.truthy...) }

// Falsy returns a copy of the falsy list.
func (b *BoolSet) Falsy() []Value { return append([]Value(nil), b.falsy...) }

// ExtendTruthy adds values to the truthy list.
func (b *BoolSet) ExtendTruthy(vs ...Value) *BoolSet {
	b.truthy = appendMissing(b.truthy, vs)
	return b
}

// ExtendFalsy adds values to the falsy list.
func (b *BoolSet) ExtendFalsy(vs ...Value) *BoolSet {
	b.falsy = appendMissing(b.falsy, vs)
	return b
}

// DropTruthy removes values from the truthy list.
func (b *BoolSet) DropTruthy(vs ...Value) *BoolSet {
	b.truthy = without(b.truthy, vs)
	return b
}

// DropFalsy removes values from the falsy list.
func (b *BoolSet) DropFalsy(vs ...Value) *BoolSet {
	b.falsy = without(b.falsy, vs)
	return b
}

// SetTruthy replaces the truthy list.
func (b *BoolSet) SetTruthy(vs ...Value) *BoolSet {
	b.truthy = appendMissing(nil, vs)
	return b
}

// SetFalsy replaces the falsy list.
func (b *BoolSet) SetFalsy(vs ...Value) *BoolSet {
	b.falsy = appendMissing(nil, vs)
	return b
}

// Convert maps v to a boolean. ok is false when v is in neither list.
func (b *BoolSet) Convert(v Value) (val, ok bool) {
	if contains(b.truthy, v) {
		return true, true
	}
	if contains(b.falsy, v) {
		return false, true
	}
	return false, false
}

func contains(list []Value, v Value) bool {
	for _, it := range list {
		if boolEqual(it, v) {
			return true
		}
	}
	return false
}

func appendMissing(list, vs []Value) []Value {
	for _, v := range vs {
		if !contains(list, v) {
			list = append(list, v)
		}
	}
	return list
}

func without(list, vs []Value) []Value {
	out := list[:0:0]
	for _, it := range list {
		if !contains(vs, it) {
			out = append(out, it)
		}
	}
	return out
}

// boolEqual compares without crossing kinds, so "1" and 1 are distinct
// entries, and folds case for strings.
func boolEqual(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	if a.kind == KindString {
		return strings.EqualFold(strings.TrimSpace(a.s), strings.TrimSpace(b.s))
	}
	return a.Equal(b)
}
