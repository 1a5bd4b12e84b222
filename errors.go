package grape

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Rule names recorded next to each message. Leaf rules from the catalog use
// their own names (min, max, email, ...).
const (
	RuleNotNullable = "not_nullable"
	RuleRequired    = "required"
	RuleSchema      = "schema"
	RuleArray       = "array"
	RuleWithKey     = "with_key"
)

var (
	// ErrMissingContext is returned when a validator is checked outside of a
	// schema pass.
	ErrMissingContext = errors.New("grape: validation must be wrapped into a schema; validators cannot run on their own")
	// ErrInvalidSchema is the sentinel wrapped by every *SchemaError.
	ErrInvalidSchema = errors.New("grape: invalid schema")
	// ErrInvalidData is returned when the input cannot be represented as a Value.
	ErrInvalidData = errors.New("grape: invalid data")
)

// SchemaError reports a schema configuration mistake detected at build time.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return "grape: invalid schema: " + e.Reason
	}
	return fmt.Sprintf("grape: invalid schema at %q: %s", e.Field, e.Reason)
}

func (e *SchemaError) Unwrap() error { return ErrInvalidSchema }

// Message is one recorded validation failure.
type Message struct {
	Message string `json:"message"`
	Rule    string `json:"rule"`
}

// Messages maps dot-joined field paths to their failure.
type Messages map[string]Message

// Paths returns the failing paths in sorted order.
func (m Messages) Paths() []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (m Messages) clone() Messages {
	out := make(Messages, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ValidationError carries the messages of a failed pass.
type ValidationError struct {
	Messages Messages
}

// Error summarizes the first few messages.
func (e *ValidationError) Error() string {
	if len(e.Messages) == 0 {
		return "validation failed"
	}
	const maxShown = 3
	paths := e.Messages.Paths()
	b := &strings.Builder{}
	b.WriteString("validation failed: ")
	lim := len(paths)
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		m := e.Messages[paths[i]]
		fmt.Fprintf(b, "%s (%s)", m.Message, m.Rule)
	}
	if len(paths) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(paths))
	}
	return b.String()
}

// AsValidationError extracts a *ValidationError using errors.As.
func AsValidationError(err error) (*ValidationError, bool) {
	if err == nil {
		return nil, false
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// sink accumulates the messages of one pass. The first message recorded for a
// path is kept.
type sink struct {
	messages Messages
}

func newSink() *sink { return &sink{messages: Messages{}} }

func (s *sink) report(path, rule, message string) bool {
	if _, dup := s.messages[path]; dup {
		return false
	}
	s.messages[path] = Message{Message: message, Rule: rule}
	return true
}

func (s *sink) merge(o *sink) {
	for k, v := range o.messages {
		if _, dup := s.messages[k]; !dup {
			s.messages[k] = v
		}
	}
}

func (s *sink) empty() bool { return len(s.messages) == 0 }
