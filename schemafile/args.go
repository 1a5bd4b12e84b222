package schemafile

import (
	"errors"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

var errNoArgs = errors.New("missing argument")

// Args holds the argument of a rule entry, as in `{min: 2}`. A rule given
// by name only (`trim`) has no argument.
type Args struct {
	node *yaml.Node
}

// Present reports whether the rule was given an argument.
func (a Args) Present() bool { return a.node != nil }

// Decode decodes the argument into out with yaml.v3 rules.
func (a Args) Decode(out any) error {
	if a.node == nil {
		return errNoArgs
	}
	return a.node.Decode(out)
}

func (a Args) scalar() (any, error) {
	var v any
	if err := a.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// Int reads an integer argument.
func (a Args) Int() (int, error) {
	v, err := a.scalar()
	if err != nil {
		return 0, err
	}
	return cast.ToIntE(v)
}

// Float reads a number argument.
func (a Args) Float() (float64, error) {
	v, err := a.scalar()
	if err != nil {
		return 0, err
	}
	return cast.ToFloat64E(v)
}

// String reads a string argument.
func (a Args) String() (string, error) {
	v, err := a.scalar()
	if err != nil {
		return "", err
	}
	return cast.ToStringE(v)
}

// Bool reads a boolean argument; a missing argument is def.
func (a Args) Bool(def bool) (bool, error) {
	if a.node == nil {
		return def, nil
	}
	v, err := a.scalar()
	if err != nil {
		return false, err
	}
	return cast.ToBoolE(v)
}

// Strings reads a list of strings. A single scalar is a list of one; a
// missing argument is an empty list.
func (a Args) Strings() ([]string, error) {
	if a.node == nil {
		return nil, nil
	}
	if a.node.Kind == yaml.ScalarNode {
		s, err := a.String()
		if err != nil {
			return nil, err
		}
		return []string{s}, nil
	}
	v, err := a.scalar()
	if err != nil {
		return nil, err
	}
	return cast.ToStringSliceE(v)
}
