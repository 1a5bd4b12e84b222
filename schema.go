package grape

import (
	"context"
	"strconv"
	"time"

	"github.com/reoring/grape/i18n"
)

// Property is one declared field of a schema.
type Property struct {
	Name      string
	Validator Validator
}

// Prop declares a property.
func Prop(name string, v Validator) Property { return Property{Name: name, Validator: v} }

// SchemaValidator validates a map against declared properties, visited in
// declaration order. Undeclared keys are ignored and left out of the
// sanitized output.
type SchemaValidator struct {
	Chain[*SchemaValidator]
	props []Property
}

// NewSchema builds a schema. Properties must have a non-empty unique name and
// a validator, and their names must not form a positional list ("0".."n-1").
func NewSchema(props ...Property) (*SchemaValidator, error) {
	if err := checkProperties(props); err != nil {
		return nil, err
	}
	s := &SchemaValidator{props: append([]Property(nil), props...)}
	s.init(s)
	s.add(func(c *Context) {
		if c.Value().Kind() != KindMap {
			c.Report(i18n.T(RuleSchema, nil), RuleSchema)
		}
	})
	return s, nil
}

// MustSchema is NewSchema that panics on a configuration error.
func MustSchema(props ...Property) *SchemaValidator {
	s, err := NewSchema(props...)
	if err != nil {
		panic(err)
	}
	return s
}

func checkProperties(props []Property) error {
	seen := make(map[string]struct{}, len(props))
	positional := len(props) > 0
	for i, p := range props {
		if p.Name == "" {
			return &SchemaError{Reason: "property " + strconv.Itoa(i) + " has an empty name"}
		}
		if p.Validator == nil {
			return &SchemaError{Field: p.Name, Reason: "nil validator"}
		}
		if _, dup := seen[p.Name]; dup {
			return &SchemaError{Field: p.Name, Reason: "duplicate property"}
		}
		seen[p.Name] = struct{}{}
		if p.Name != strconv.Itoa(i) {
			positional = false
		}
	}
	if positional {
		return &SchemaError{Reason: "properties must be named keys, not a list"}
	}
	return nil
}

// Properties returns the declared properties in order.
func (s *SchemaValidator) Properties() []Property { return append([]Property(nil), s.props...) }

// WithKey requires key to be present in the map whether or not it is
// declared as a property.
func (s *SchemaValidator) WithKey(key string) *SchemaValidator {
	return s.add(func(c *Context) {
		if obj, ok := c.Value().AsMap(); ok && !obj.Has(key) {
			c.Report(i18n.T(RuleWithKey, map[string]string{"key": key}), RuleWithKey)
		}
	})
}

// Check validates v as a nested schema.
func (s *SchemaValidator) Check(c *Context, v Value) error {
	if c == nil {
		return ErrMissingContext
	}
	if s.enter(c, v) {
		return nil
	}
	s.apply(c)
	if c.pass.aborted() {
		return c.pass.err
	}
	if !c.valid {
		return nil
	}
	if len(s.props) == 0 {
		c.Sanitize()
		return nil
	}
	// The map itself is committed empty first so that a schema whose
	// properties are all absent still appears in the output.
	c.out.set(c.path[c.base:], Map(nil))
	for _, p := range s.props {
		key := Key(p.Name)
		child := c.Nested(key)
		if _, present := c.value.Lookup(key); !present {
			if p.Validator.IsRequired() {
				child.bind(p.Validator.Label())
				child.Report(i18n.T(RuleRequired, nil), RuleRequired)
			}
			continue
		}
		if err := p.Validator.Check(child, child.value); err != nil {
			return err
		}
	}
	return nil
}

// Validate runs a pass over input, which may be a Value or plain Go data.
// The returned error is non-nil only when the input cannot be converted or a
// rule aborted the pass; validation failures live in the Result.
func (s *SchemaValidator) Validate(ctx context.Context, input any, opts ...Option) (*Result, error) {
	raw, err := ValueOf(input)
	if err != nil {
		return nil, err
	}
	o := newOptions(opts)
	p := newPass(ctx, o)
	start := time.Now()
	c := newRootContext(raw, p)
	o.logger.Debug().Int("properties", len(s.props)).Msg("validation started")
	if err := s.Check(c, raw); err != nil {
		o.logger.Debug().Err(err).Msg("validation aborted")
		return nil, err
	}
	r := newResult(raw, c.out.value(), c.sink.messages)
	elapsed := time.Since(start)
	o.logger.Debug().
		Bool("valid", r.Passes()).
		Int("messages", len(r.messages)).
		Dur("duration", elapsed).
		Msg("validation finished")
	if o.observer != nil {
		o.observer.ObservePass(r, elapsed)
	}
	return r, nil
}

// Sanitize validates input and returns the sanitized value, or a
// *ValidationError holding the messages when the input is invalid.
func (s *SchemaValidator) Sanitize(ctx context.Context, input any, opts ...Option) (Value, error) {
	r, err := s.Validate(ctx, input, opts...)
	if err != nil {
		return Value{}, err
	}
	if err := r.Err(); err != nil {
		return Value{}, err
	}
	return r.Sanitized(), nil
}
