package grape

import (
	"strconv"
	"strings"
)

// PathKey is one step of a field path: a map key or a list index.
type PathKey struct {
	name    string
	index   int
	isIndex bool
}

// Key returns a map-key step.
func Key(name string) PathKey { return PathKey{name: name} }

// Index returns a list-index step.
func Index(i int) PathKey { return PathKey{index: i, isIndex: true} }

func (k PathKey) IsIndex() bool { return k.isIndex }

func (k PathKey) String() string {
	if k.isIndex {
		return strconv.Itoa(k.index)
	}
	return k.name
}

// Path is the ordered list of keys from the root to a value.
type Path []PathKey

// String joins the steps with dots; the root path renders as "".
func (p Path) String() string {
	switch len(p) {
	case 0:
		return ""
	case 1:
		return p[0].String()
	}
	b := &strings.Builder{}
	for i, k := range p {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(k.String())
	}
	return b.String()
}

// Leaf returns the last step, or the zero key at the root.
func (p Path) Leaf() (PathKey, bool) {
	if len(p) == 0 {
		return PathKey{}, false
	}
	return p[len(p)-1], true
}

// Child returns a new path extended by k; p is left untouched.
func (p Path) Child(k PathKey) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = k
	return out
}

// ParsePath splits a dot-joined path. Numeric steps become indexes.
func ParsePath(s string) Path {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ".")
	out := make(Path, 0, len(parts))
	for _, part := range parts {
		if i, err := strconv.Atoi(part); err == nil && i >= 0 {
			out = append(out, Index(i))
			continue
		}
		out = append(out, Key(part))
	}
	return out
}

// At walks v along p.
func (p Path) At(v Value) (Value, bool) {
	cur := v
	for _, k := range p {
		next, ok := cur.Lookup(k)
		if !ok {
			return Value{}, false
		}
		cur = next
	}
	return cur, true
}
