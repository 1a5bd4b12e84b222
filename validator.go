package grape

import "github.com/reoring/grape/i18n"

// Rule inspects a context: it reads Value, may Mutate it, and Reports a
// failure. Rules of one validator run in registration order.
type Rule func(c *Context)

// Validator checks one field position inside a pass.
type Validator interface {
	// Check validates v in c. It returns ErrMissingContext when c is nil and
	// the abort error when a rule aborted the pass; rule failures are only
	// recorded in c.
	Check(c *Context, v Value) error
	// IsRequired is consulted by the parent schema when the key is missing.
	IsRequired() bool
	IsNullable() bool
	// Label is the display name used in messages, "" for the field key.
	Label() string
}

// Chain is the rule chain embedded by every validator. S is the concrete
// validator type so that modifiers keep fluent chaining typed.
type Chain[S any] struct {
	self     S
	rules    []Rule
	nullable bool
	required bool
	label    string
}

func (ch *Chain[S]) init(self S) { ch.self = self }

// Nullable accepts null; a null value skips every rule.
func (ch *Chain[S]) Nullable() S {
	ch.nullable = true
	return ch.self
}

// Required makes the enclosing schema report a missing key.
func (ch *Chain[S]) Required() S {
	ch.required = true
	return ch.self
}

// Name sets the display name substituted for the field token.
func (ch *Chain[S]) Name(label string) S {
	ch.label = label
	return ch.self
}

// Use appends custom rules.
func (ch *Chain[S]) Use(rules ...Rule) S {
	for _, r := range rules {
		if r != nil {
			ch.rules = append(ch.rules, r)
		}
	}
	return ch.self
}

// Custom appends a predicate rule reporting message under rule when pred
// returns false.
func (ch *Chain[S]) Custom(rule string, pred func(Value) bool, message string) S {
	return ch.add(func(c *Context) {
		if !pred(c.Value()) {
			c.Report(message, rule)
		}
	})
}

func (ch *Chain[S]) IsRequired() bool { return ch.required }
func (ch *Chain[S]) IsNullable() bool { return ch.nullable }
func (ch *Chain[S]) Label() string    { return ch.label }

// Check runs the chain: null handling, rules until the first failure, then
// commit of the value when the context is still valid.
func (ch *Chain[S]) Check(c *Context, v Value) error {
	if c == nil {
		return ErrMissingContext
	}
	if done := ch.enter(c, v); done {
		return nil
	}
	ch.apply(c)
	if c.pass.aborted() {
		return c.pass.err
	}
	if c.valid {
		c.Sanitize()
	}
	return nil
}

func (ch *Chain[S]) add(r Rule) S {
	ch.rules = append(ch.rules, r)
	return ch.self
}

// enter binds the context to the validator and handles null. It reports
// true when nothing is left to check. An accepted null is not committed.
func (ch *Chain[S]) enter(c *Context, v Value) bool {
	c.bind(ch.label)
	c.value = v
	if !v.IsNull() {
		return false
	}
	if !ch.nullable {
		c.Report(i18n.T(RuleNotNullable, nil), RuleNotNullable)
	}
	return true
}

func (ch *Chain[S]) apply(c *Context) {
	for _, r := range ch.rules {
		if c.stopped() {
			return
		}
		r(c)
	}
}
