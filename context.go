package grape

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// FieldToken is replaced in reported messages by the name of the field.
const FieldToken = "{{ field }}"

// Context is the traversal node of a validation pass. One Context exists per
// field position; it is created by its parent and discarded with the pass.
//
// value is local to the context and may be replaced by rules. The sanitized
// tree, the message sink and the pass environment are shared with the whole
// pass (array elements get their own tree and sink, merged by the array).
type Context struct {
	value  Value
	root   Value
	out    *tree
	base   int
	path   Path
	parent *Context
	label  string
	valid  bool
	sink   *sink
	pass   *pass
}

func newRootContext(v Value, p *pass) *Context {
	return &Context{value: v, root: v, out: newTree(), valid: true, sink: newSink(), pass: p}
}

// Value returns the current, possibly mutated, value.
func (c *Context) Value() Value { return c.value }

// Root returns the whole input of the pass.
func (c *Context) Root() Value { return c.root }

// Parent returns the enclosing context, nil at the root.
func (c *Context) Parent() *Context { return c.parent }

// Path returns a copy of the path from the root.
func (c *Context) Path() Path { return append(Path(nil), c.path...) }

// Name returns the leaf key of the field, "" at the root.
func (c *Context) Name() string {
	if k, ok := c.path.Leaf(); ok {
		return k.String()
	}
	return ""
}

// Valid reports whether no rule failed on this context. Failures of other
// fields, children included, do not affect it.
func (c *Context) Valid() bool { return c.valid }

// Context returns the context.Context of the pass, for rules that block.
func (c *Context) Context() context.Context { return c.pass.ctx }

// Resource returns the handle given through WithResource, or nil.
func (c *Context) Resource() any { return c.pass.resource }

// Bools returns the truthy/falsy lists of the pass.
func (c *Context) Bools() *BoolSet { return c.pass.bools }

// Logger returns the pass logger annotated with the field path.
func (c *Context) Logger() *zerolog.Logger {
	l := c.pass.logger.With().Str("path", c.path.String()).Logger()
	return &l
}

// Lookup reads another field of the input by dot-joined path from the root.
func (c *Context) Lookup(path string) (Value, bool) {
	return ParsePath(path).At(c.root)
}

// Mutate replaces the value of this context only. The parent sees it once
// the context is committed.
func (c *Context) Mutate(v Value) { c.value = v }

// Report marks the context invalid and records message under its path.
// The FieldToken in message is replaced by the field's display name.
func (c *Context) Report(message, rule string) {
	c.valid = false
	msg := strings.ReplaceAll(message, FieldToken, c.displayName())
	path := c.path.String()
	if c.sink.report(path, rule, msg) {
		c.pass.logger.Debug().Str("path", path).Str("rule", rule).Msg(msg)
	}
}

// Abort stops the whole pass; the root Validate returns err. Reserve it for
// conditions that no input could fix, such as a missing resource.
func (c *Context) Abort(err error) {
	c.pass.abort(c.path, err)
}

// Sanitize commits the current value into the sanitized tree.
func (c *Context) Sanitize() {
	c.out.set(c.path[c.base:], c.value.Clone())
}

// Nested returns the child context for key. A missing key yields a null
// value so that presence rules apply uniformly.
func (c *Context) Nested(key PathKey) *Context {
	v, ok := c.value.Lookup(key)
	if !ok {
		v = Null()
	}
	return &Context{
		value:  v,
		root:   c.root,
		out:    c.out,
		base:   c.base,
		path:   c.path.Child(key),
		parent: c,
		valid:  true,
		sink:   c.sink,
		pass:   c.pass,
	}
}

// element returns a context for the i-th item of a list, writing into its
// own tree and sink so the array can decide what to keep.
func (c *Context) element(i int, v Value) *Context {
	path := c.path.Child(Index(i))
	return &Context{
		value:  v,
		root:   c.root,
		out:    newTree(),
		base:   len(path),
		path:   path,
		parent: c,
		valid:  true,
		sink:   newSink(),
		pass:   c.pass,
	}
}

func (c *Context) bind(label string) {
	if label != "" {
		c.label = label
	}
}

func (c *Context) stopped() bool { return !c.valid || c.pass.aborted() }

func (c *Context) displayName() string {
	if c.label != "" {
		return c.label
	}
	if n := c.Name(); n != "" {
		return n
	}
	return "value"
}
