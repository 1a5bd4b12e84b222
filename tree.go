package grape

// tree is the sanitized output of a pass. It starts as an empty map and is
// written leaf by leaf as contexts commit their value.
type tree struct {
	root    Value
	written bool
}

func newTree() *tree { return &tree{root: Map(nil)} }

// set writes v at rel, creating intermediate maps and replacing any
// non-map value standing in the way.
func (t *tree) set(rel Path, v Value) {
	t.written = true
	if len(rel) == 0 {
		t.root = v
		return
	}
	if t.root.kind != KindMap {
		t.root = Map(nil)
	}
	obj := t.root.obj
	for _, k := range rel[:len(rel)-1] {
		name := k.String()
		next, ok := obj.Get(name)
		if !ok || next.kind != KindMap {
			next = Map(nil)
			obj.Set(name, next)
		}
		obj = next.obj
	}
	obj.Set(rel[len(rel)-1].String(), v)
}

func (t *tree) value() Value { return t.root }
