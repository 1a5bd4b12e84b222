package grape

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reoring/grape/internal/engine"
)

// DuplicateKeyPolicy controls how ParseJSON treats a key repeated in one
// object.
type DuplicateKeyPolicy int

const (
	// DuplicateLast keeps the last value silently.
	DuplicateLast DuplicateKeyPolicy = iota
	// DuplicateWarn keeps the last value and calls the warn hook.
	DuplicateWarn
	// DuplicateError rejects the document.
	DuplicateError
)

type decodeOptions struct {
	maxDepth int
	maxBytes int64
	dup      DuplicateKeyPolicy
	warn     func(path, message string)
}

// DecodeOption configures ParseJSON.
type DecodeOption func(*decodeOptions)

// MaxDepth limits container nesting; 0 means unlimited.
func MaxDepth(n int) DecodeOption { return func(o *decodeOptions) { o.maxDepth = n } }

// MaxBytes limits the input size; 0 means unlimited.
func MaxBytes(n int64) DecodeOption { return func(o *decodeOptions) { o.maxBytes = n } }

// OnDuplicateKey sets the duplicate key policy. warn may be nil.
func OnDuplicateKey(p DuplicateKeyPolicy, warn func(path, message string)) DecodeOption {
	return func(o *decodeOptions) {
		o.dup = p
		o.warn = warn
	}
}

// ParseJSON decodes one JSON document into a Value. Object keys keep their
// input order and integral numbers become KindInt.
func ParseJSON(data []byte, opts ...DecodeOption) (Value, error) {
	return DecodeJSON(bytes.NewReader(data), opts...)
}

// DecodeJSON is ParseJSON over a reader.
func DecodeJSON(r io.Reader, opts ...DecodeOption) (Value, error) {
	o := decodeOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	eo := engine.EnforceOptions{MaxDepth: o.maxDepth, MaxBytes: o.maxBytes}
	switch o.dup {
	case DuplicateWarn:
		eo.OnDuplicate = engine.DupWarn
		if o.warn != nil {
			eo.OnWarn = func(is engine.Issue) { o.warn(is.Path, is.Message) }
		}
	case DuplicateError:
		eo.OnDuplicate = engine.DupError
	}
	var capped *capReader
	if o.maxBytes > 0 {
		capped = &capReader{r: r, left: o.maxBytes + 1}
		r = capped
	}
	src := engine.WrapWithEnforcement(engine.NewJSONReader(r), eo)
	n, err := engine.Decode(src)
	if capped != nil && capped.hit {
		return Value{}, fmt.Errorf("%w: max bytes exceeded", ErrInvalidData)
	}
	if err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	if _, err := src.NextToken(); !errors.Is(err, io.EOF) {
		return Value{}, fmt.Errorf("%w: trailing data after document", ErrInvalidData)
	}
	return fromNode(n)
}

var errInputTooLarge = errors.New("input too large")

// capReader hands out at most left bytes, then fails. One byte past the
// limit is allowed through so that a document of exactly the limit still
// decodes.
type capReader struct {
	r    io.Reader
	left int64
	hit  bool
}

func (c *capReader) Read(p []byte) (int, error) {
	if c.left <= 0 {
		c.hit = true
		return 0, errInputTooLarge
	}
	if int64(len(p)) > c.left {
		p = p[:c.left]
	}
	n, err := c.r.Read(p)
	c.left -= int64(n)
	return n, err
}

func fromNode(n engine.Node) (Value, error) {
	switch n.Kind {
	case engine.NodeBool:
		return Bool(n.Bool), nil
	case engine.NodeNumber:
		return numberValue(n.Text)
	case engine.NodeString:
		return String(n.Text), nil
	case engine.NodeArray:
		out := make([]Value, len(n.Items))
		for i, it := range n.Items {
			v, err := fromNode(it)
			if err != nil {
				return Value{}, err
			}
			out[i] = v
		}
		return Value{kind: KindList, list: out}, nil
	case engine.NodeObject:
		o := NewObject()
		for i, k := range n.Keys {
			v, err := fromNode(n.Fields[i])
			if err != nil {
				return Value{}, err
			}
			o.Set(k, v)
		}
		return Map(o), nil
	}
	return Null(), nil
}

// MarshalJSON encodes v, keeping map keys in insertion order. NaN and
// infinities have no JSON form and encode as null.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindInt:
		buf.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			buf.WriteString("null")
			return nil
		}
		b, err := json.Marshal(v.f)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindString:
		b, err := json.Marshal(v.s)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindList:
		buf.WriteByte('[')
		for i, it := range v.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := it.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMap:
		buf.WriteByte('{')
		for i, k := range v.obj.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := v.obj.vals[k].writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// UnmarshalJSON decodes with ParseJSON defaults.
func (v *Value) UnmarshalJSON(data []byte) error {
	out, err := ParseJSON(data)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

// ParseYAML decodes one YAML document into a Value. Mapping keys keep their
// order; aliases are resolved.
func ParseYAML(data []byte) (Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	if doc.Kind == 0 {
		return Null(), nil
	}
	return FromYAMLNode(&doc)
}

// FromYAMLNode converts a decoded yaml.v3 node.
func FromYAMLNode(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return FromYAMLNode(n.Content[0])
	case yaml.AliasNode:
		return FromYAMLNode(n.Alias)
	case yaml.SequenceNode:
		out := make([]Value, len(n.Content))
		for i, c := range n.Content {
			v, err := FromYAMLNode(c)
			if err != nil {
				return Value{}, err
			}
			out[i] = v
		}
		return Value{kind: KindList, list: out}, nil
	case yaml.MappingNode:
		o := NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := FromYAMLNode(n.Content[i+1])
			if err != nil {
				return Value{}, err
			}
			o.Set(n.Content[i].Value, v)
		}
		return Map(o), nil
	case yaml.ScalarNode:
		return yamlScalar(n)
	}
	return Value{}, fmt.Errorf("%w: unsupported yaml node at line %d", ErrInvalidData, n.Line)
}

func yamlScalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrInvalidData, err)
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrInvalidData, err)
		}
		return Int(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrInvalidData, err)
		}
		return Float(f), nil
	}
	return String(n.Value), nil
}
