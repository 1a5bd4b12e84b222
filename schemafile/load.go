// Package schemafile builds schemas from YAML or JSON documents:
//
//	properties:
//	  email: {type: string, required: true, rules: [trim, lowercase, email]}
//	  tags:
//	    type: array
//	    mode: collect
//	    items: {type: string, rules: [{min: 2}]}
//	    rules: [distinct]
//
// A rule is a name (`trim`) or a single-key mapping holding its argument
// (`{min: 2}`). Rules run in the listed order. Names a type does not know
// are resolved through the Registry.
package schemafile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/reoring/grape"
)

type field struct {
	Type       string      `yaml:"type"`
	Strict     *bool       `yaml:"strict"`
	Required   bool        `yaml:"required"`
	Nullable   bool        `yaml:"nullable"`
	Name       string      `yaml:"name"`
	Mode       string      `yaml:"mode"`
	Rules      []yaml.Node `yaml:"rules"`
	Items      *field      `yaml:"items"`
	Properties yaml.Node   `yaml:"properties"`
}

func (f *field) strict() bool { return f.Strict == nil || *f.Strict }

// Load builds the root schema described by data. A nil reg uses
// NewRegistry(). Every configuration mistake is a *grape.SchemaError and
// matches grape.ErrInvalidSchema.
func Load(data []byte, reg *Registry) (*grape.SchemaValidator, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fail("", "empty document")
	}
	var root field
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", grape.ErrInvalidSchema, err)
	}
	if root.Type == "" {
		root.Type = "object"
	}
	if root.Type != "object" && root.Type != "schema" {
		return nil, fail("", "the document root must be an object, got %q", root.Type)
	}
	if reg == nil {
		reg = NewRegistry()
	}
	b := &builder{reg: reg}
	v, err := b.build("", &root)
	if err != nil {
		return nil, err
	}
	return v.(*grape.SchemaValidator), nil
}

// LoadFile reads and loads the document at path.
func LoadFile(path string, reg *Registry) (*grape.SchemaValidator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schemafile: %w", err)
	}
	return Load(data, reg)
}

func fail(path, format string, args ...any) error {
	return &grape.SchemaError{Field: path, Reason: fmt.Sprintf(format, args...)}
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

type builder struct {
	reg *Registry
}

func (b *builder) build(path string, f *field) (grape.Validator, error) {
	switch f.Type {
	case "string":
		v := grape.NewString(f.strict())
		return finish(v, f), applyRules(b, v, path, f, stringRules(v))
	case "number":
		v := grape.NewNumber()
		return finish(v, f), applyRules(b, v, path, f, numericRules(v))
	case "integer", "int":
		v := grape.NewInteger(f.strict())
		return finish(v, f), applyRules(b, v, path, f, numericRules(v))
	case "float":
		v := grape.NewFloat(f.strict())
		return finish(v, f), applyRules(b, v, path, f, floatRules(v))
	case "boolean", "bool":
		v := grape.NewBoolean(f.strict())
		return finish(v, f), applyRules(b, v, path, f, boolRules(v))
	case "accepted":
		v := grape.NewAccepted()
		return finish(v, f), applyRules(b, v, path, f, nil)
	case "null":
		v := grape.NewNull()
		return finish(v, f), applyRules(b, v, path, f, nil)
	case "mixed", "any":
		v := grape.NewMixed()
		return finish(v, f), applyRules(b, v, path, f, nil)
	case "array":
		return b.array(path, f)
	case "object", "schema":
		return b.object(path, f)
	case "":
		return nil, fail(path, "missing type")
	default:
		return nil, fail(path, "unknown type %q", f.Type)
	}
}

func (b *builder) object(path string, f *field) (grape.Validator, error) {
	var props []grape.Property
	switch f.Properties.Kind {
	case 0:
	case yaml.MappingNode:
		content := f.Properties.Content
		for i := 0; i+1 < len(content); i += 2 {
			name := content[i].Value
			var child field
			if err := content[i+1].Decode(&child); err != nil {
				return nil, fail(join(path, name), "%v", err)
			}
			v, err := b.build(join(path, name), &child)
			if err != nil {
				return nil, err
			}
			props = append(props, grape.Prop(name, v))
		}
	default:
		return nil, fail(path, "properties must be a mapping")
	}
	s, err := grape.NewSchema(props...)
	if err != nil {
		var se *grape.SchemaError
		if errors.As(err, &se) {
			return nil, fail(path, "%s", se.Reason)
		}
		return nil, err
	}
	return finish(s, f), applyRules(b, s, path, f, func(name string, a Args) (bool, error) {
		if name != "with_key" {
			return false, nil
		}
		key, err := a.String()
		if err != nil {
			return true, err
		}
		s.WithKey(key)
		return true, nil
	})
}

func (b *builder) array(path string, f *field) (grape.Validator, error) {
	var item grape.Validator
	if f.Items != nil {
		v, err := b.build(join(path, "items"), f.Items)
		if err != nil {
			return nil, err
		}
		item = v
	}
	var mode grape.Mode
	switch f.Mode {
	case "", "fail_fast":
		mode = grape.FailFast
	case "collect":
		mode = grape.CollectErrors
	case "drop":
		mode = grape.DropInvalid
	default:
		return nil, fail(path, "unknown mode %q", f.Mode)
	}
	v := grape.Array(item, mode)
	return finish(v, f), applyRules(b, v, path, f, arrayRules(v))
}

type chainer[S any] interface {
	Required() S
	Nullable() S
	Name(label string) S
	Use(rules ...grape.Rule) S
}

func finish[S chainer[S]](v S, f *field) S {
	if f.Required {
		v.Required()
	}
	if f.Nullable {
		v.Nullable()
	}
	if f.Name != "" {
		v.Name(f.Name)
	}
	return v
}

// builtin applies a rule the validator type knows. handled is false for
// names it does not know.
type builtin func(name string, a Args) (handled bool, err error)

func applyRules[S chainer[S]](b *builder, v S, path string, f *field, own builtin) error {
	for i := range f.Rules {
		name, args, err := ruleEntry(&f.Rules[i])
		if err != nil {
			return fail(path, "rule %d: %v", i, err)
		}
		if own != nil {
			handled, err := own(name, args)
			if err != nil {
				return fail(path, "rule %q: %v", name, err)
			}
			if handled {
				continue
			}
		}
		factory, ok := b.reg.lookup(name)
		if !ok {
			return fail(path, "unknown rule %q for type %s", name, f.Type)
		}
		r, err := factory(args)
		if err != nil {
			return fail(path, "rule %q: %v", name, err)
		}
		v.Use(r)
	}
	return nil
}

func ruleEntry(n *yaml.Node) (string, Args, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Value == "" {
			return "", Args{}, errors.New("empty rule name")
		}
		return n.Value, Args{}, nil
	case yaml.MappingNode:
		if len(n.Content) != 2 {
			return "", Args{}, errors.New("a rule mapping must have exactly one key")
		}
		return n.Content[0].Value, Args{node: n.Content[1]}, nil
	}
	return "", Args{}, errors.New("a rule must be a name or a single-key mapping")
}

func stringRules(s *grape.StringValidator) builtin {
	return func(name string, a Args) (bool, error) {
		switch name {
		case "trim":
			s.Trim()
		case "lowercase":
			s.Lowercase()
		case "uppercase":
			s.Uppercase()
		case "min", "max", "length":
			n, err := a.Int()
			if err != nil {
				return true, err
			}
			switch name {
			case "min":
				s.Min(n)
			case "max":
				s.Max(n)
			default:
				s.Length(n)
			}
		case "prefix", "suffix", "contains":
			val, cs, err := affix(a)
			if err != nil {
				return true, err
			}
			switch name {
			case "prefix":
				s.Prefix(val, cs)
			case "suffix":
				s.Suffix(val, cs)
			default:
				s.Contains(val, cs)
			}
		case "alphabetic", "numeric", "alphanumeric":
			o, err := charsetArgs(a)
			if err != nil {
				return true, err
			}
			switch name {
			case "alphabetic":
				s.Alphabetic(o)
			case "numeric":
				s.Numeric(o)
			default:
				s.Alphanumeric(o)
			}
		case "no_whitespace":
			s.NoWhitespace()
		case "email":
			s.Email()
		case "phone":
			s.Phone()
		case "json":
			s.JSON()
		case "url":
			s.URL()
		case "uuid":
			s.UUID()
		case "not_empty":
			s.NotEmpty()
		case "empty":
			ignore, err := a.Bool(false)
			if err != nil {
				return true, err
			}
			s.Empty(ignore)
		case "credit_card":
			providers, err := a.Strings()
			if err != nil {
				return true, err
			}
			s.CreditCard(providers...)
		case "ip":
			version := ""
			if a.Present() {
				v, err := a.String()
				if err != nil {
					return true, err
				}
				version = v
			}
			if version != "" && version != "ipv4" && version != "ipv6" {
				return true, fmt.Errorf("unknown ip version %q", version)
			}
			s.IP(version)
		case "pattern":
			p, err := a.String()
			if err != nil {
				return true, err
			}
			re, err := regexp.Compile(p)
			if err != nil {
				return true, err
			}
			s.Pattern(re)
		case "one_of":
			values, err := a.Strings()
			if err != nil {
				return true, err
			}
			if len(values) == 0 {
				return true, errors.New("one_of needs at least one value")
			}
			s.OneOf(values...)
		default:
			return false, nil
		}
		return true, nil
	}
}

func affix(a Args) (string, bool, error) {
	if a.Present() && a.node.Kind == yaml.ScalarNode {
		s, err := a.String()
		return s, true, err
	}
	var opt struct {
		Value         string `yaml:"value"`
		CaseSensitive *bool  `yaml:"case_sensitive"`
	}
	if err := a.Decode(&opt); err != nil {
		return "", false, err
	}
	return opt.Value, opt.CaseSensitive == nil || *opt.CaseSensitive, nil
}

func charsetArgs(a Args) (grape.CharsetOptions, error) {
	var opt struct {
		Whitespace  bool `yaml:"whitespace"`
		Dashes      bool `yaml:"dashes"`
		Underscores bool `yaml:"underscores"`
	}
	if a.Present() {
		if err := a.Decode(&opt); err != nil {
			return grape.CharsetOptions{}, err
		}
	}
	return grape.CharsetOptions{
		AllowWhitespace:  opt.Whitespace,
		AllowDashes:      opt.Dashes,
		AllowUnderscores: opt.Underscores,
	}, nil
}

type numeric[S any] interface {
	Abs() S
	Min(min float64) S
	Max(max float64) S
	Range(min, max float64) S
	Zero() S
	NonZero() S
	Positive() S
	Negative() S
	Odd() S
	Even() S
}

func numericRules[S numeric[S]](v S) builtin {
	return func(name string, a Args) (bool, error) {
		switch name {
		case "abs":
			v.Abs()
		case "min", "max":
			n, err := a.Float()
			if err != nil {
				return true, err
			}
			if name == "min" {
				v.Min(n)
			} else {
				v.Max(n)
			}
		case "range":
			lo, hi, err := bounds(a)
			if err != nil {
				return true, err
			}
			v.Range(lo, hi)
		case "zero":
			v.Zero()
		case "non_zero":
			v.NonZero()
		case "positive":
			v.Positive()
		case "negative":
			v.Negative()
		case "odd":
			v.Odd()
		case "even":
			v.Even()
		default:
			return false, nil
		}
		return true, nil
	}
}

func bounds(a Args) (float64, float64, error) {
	if a.Present() && a.node.Kind == yaml.SequenceNode {
		var pair []float64
		if err := a.Decode(&pair); err != nil {
			return 0, 0, err
		}
		if len(pair) != 2 {
			return 0, 0, errors.New("range needs [min, max]")
		}
		return pair[0], pair[1], nil
	}
	var r struct {
		Min *float64 `yaml:"min"`
		Max *float64 `yaml:"max"`
	}
	if err := a.Decode(&r); err != nil {
		return 0, 0, err
	}
	if r.Min == nil || r.Max == nil {
		return 0, 0, errors.New("range needs min and max")
	}
	return *r.Min, *r.Max, nil
}

func floatRules(f *grape.FloatValidator) builtin {
	common := numericRules(f)
	return func(name string, a Args) (bool, error) {
		switch name {
		case "round":
			p := 0
			if a.Present() {
				n, err := a.Int()
				if err != nil {
					return true, err
				}
				p = n
			}
			f.Round(p)
		case "floor":
			f.Floor()
		case "ceil":
			f.Ceil()
		case "nan":
			f.NaN()
		case "not_nan":
			f.NotNaN()
		case "without_decimals":
			f.WithoutDecimals()
		default:
			return common(name, a)
		}
		return true, nil
	}
}

func boolRules(v *grape.BooleanValidator) builtin {
	return func(name string, a Args) (bool, error) {
		switch name {
		case "true":
			v.True()
		case "false":
			v.False()
		default:
			return false, nil
		}
		return true, nil
	}
}

func arrayRules(v *grape.ArrayValidator) builtin {
	return func(name string, a Args) (bool, error) {
		switch name {
		case "min", "max", "length":
			n, err := a.Int()
			if err != nil {
				return true, err
			}
			if n < 0 {
				return true, errors.New("count must not be negative: " + strconv.Itoa(n))
			}
			switch name {
			case "min":
				v.Min(n)
			case "max":
				v.Max(n)
			default:
				v.Length(n)
			}
		case "empty":
			v.Empty()
		case "not_empty":
			v.NotEmpty()
		case "distinct":
			keys, err := a.Strings()
			if err != nil {
				return true, err
			}
			v.Distinct(keys...)
		default:
			return false, nil
		}
		return true, nil
	}
}
