package grape

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/mitchellh/mapstructure"
)

// Result is the immutable outcome of a validation pass.
type Result struct {
	valid     bool
	raw       Value
	sanitized Value
	messages  Messages
}

func newResult(raw, sanitized Value, msgs Messages) *Result {
	r := &Result{raw: raw, messages: msgs.clone(), valid: len(msgs) == 0}
	if r.valid {
		r.sanitized = sanitized
	} else {
		r.sanitized = Map(nil)
	}
	return r
}

// Passes reports whether no message was recorded.
func (r *Result) Passes() bool { return r.valid }

// Failed is !Passes.
func (r *Result) Failed() bool { return !r.valid }

// OK is an alias of Passes.
func (r *Result) OK() bool { return r.valid }

// HasErrors reports whether at least one message was recorded.
func (r *Result) HasErrors() bool { return len(r.messages) > 0 }

// Raw returns the input as it was given.
func (r *Result) Raw() Value { return r.raw.Clone() }

// Sanitized returns the sanitized tree, an empty map when the pass failed.
func (r *Result) Sanitized() Value { return r.sanitized.Clone() }

// Messages returns a copy of the recorded messages keyed by path.
func (r *Result) Messages() Messages { return r.messages.clone() }

// Message returns the message recorded at path.
func (r *Result) Message(path string) (Message, bool) {
	m, ok := r.messages[path]
	return m, ok
}

// Err returns a *ValidationError when the pass failed, nil otherwise.
func (r *Result) Err() error {
	if r.valid {
		return nil
	}
	return &ValidationError{Messages: r.messages.clone()}
}

// Bind decodes the sanitized tree into out, a pointer to a struct or map.
// Struct fields are matched through their json tags.
func (r *Result) Bind(out any) error {
	if err := r.Err(); err != nil {
		return err
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("grape: bind: %w", err)
	}
	if err := dec.Decode(r.sanitized.Interface()); err != nil {
		return fmt.Errorf("grape: bind: %w", err)
	}
	return nil
}

type resultJSON struct {
	Valid     bool     `json:"valid"`
	Sanitized Value    `json:"sanitized"`
	Messages  Messages `json:"messages,omitempty"`
}

// MarshalJSON renders {"valid":..,"sanitized":..,"messages":..}.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{Valid: r.valid, Sanitized: r.sanitized, Messages: r.messages})
}
