package engine

import (
	"strconv"
)

// Enforcement wrapper for TokenSource to apply duplicate key handling,
// max depth checks, and max bytes truncation in a streaming fashion.

// DuplicateStrictness controls duplicate key handling.
type DuplicateStrictness int

const (
	DupIgnore DuplicateStrictness = iota
	DupWarn
	DupError
)

// EnforceOptions controls runtime enforcement behavior.
type EnforceOptions struct {
	OnDuplicate DuplicateStrictness
	MaxDepth    int
	MaxBytes    int64
	// OnWarn receives duplicate keys in DupWarn mode.
	OnWarn func(Issue)
}

// Issue describes an enforcement violation at a dot-joined path.
type Issue struct {
	Code    string
	Path    string
	Message string
}

// IssueError is the error returned for a fatal Issue.
type IssueError struct{ Issue }

func (e IssueError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Message + " at " + strconv.Quote(e.Path)
}

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	keys         map[string]struct{}
	expectingKey bool
	path         string
	nextIndex    int
	pendingKey   string
}

// WrapWithEnforcement returns a TokenSource that enforces duplicate key policy,
// maximum nesting depth, and maximum consumed bytes.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) TokenSource {
	return &enforcingTokenSource{inner: inner, opt: opt}
}

type enforcingTokenSource struct {
	inner TokenSource
	opt   EnforceOptions
	stack []frame
}

func (e *enforcingTokenSource) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}
	path := e.pathFor(tok)

	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		f := frame{kind: kindArray, path: path}
		if tok.Kind == KindBeginObject {
			f = frame{kind: kindObject, keys: map[string]struct{}{}, expectingKey: true, path: path}
		}
		e.stack = append(e.stack, f)
		if e.opt.MaxDepth > 0 && len(e.stack) > e.opt.MaxDepth {
			return Token{}, IssueError{Issue{Code: "max_depth", Path: path, Message: "max depth exceeded"}}
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
		e.valueDone()
	case KindKey:
		if err := e.key(tok.String, path); err != nil {
			return Token{}, err
		}
	default:
		e.valueDone()
	}

	if e.opt.MaxBytes > 0 {
		if off := e.Location(); off > e.opt.MaxBytes {
			return Token{}, IssueError{Issue{Code: "max_bytes", Path: path, Message: "max bytes exceeded"}}
		}
	}
	return tok, nil
}

func (e *enforcingTokenSource) key(name, path string) error {
	n := len(e.stack)
	if n == 0 {
		return nil
	}
	top := &e.stack[n-1]
	if top.kind != kindObject || !top.expectingKey {
		return nil
	}
	if _, dup := top.keys[name]; dup && e.opt.OnDuplicate != DupIgnore {
		is := Issue{Code: "duplicate_key", Path: path, Message: "key '" + name + "' duplicated"}
		if e.opt.OnDuplicate == DupError {
			return IssueError{is}
		}
		if e.opt.OnWarn != nil {
			e.opt.OnWarn(is)
		}
	}
	top.keys[name] = struct{}{}
	top.expectingKey = false
	top.pendingKey = name
	return nil
}

// valueDone flips the enclosing object back to expecting a key.
func (e *enforcingTokenSource) valueDone() {
	if n := len(e.stack); n > 0 {
		top := &e.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
			top.pendingKey = ""
		}
	}
}

func (e *enforcingTokenSource) pathFor(tok Token) string {
	n := len(e.stack)
	if n == 0 {
		return ""
	}
	top := &e.stack[n-1]
	switch tok.Kind {
	case KindKey:
		return joinPath(top.path, tok.String)
	case KindEndObject, KindEndArray:
		return top.path
	}
	if top.kind == kindArray {
		p := joinPath(top.path, strconv.Itoa(top.nextIndex))
		top.nextIndex++
		return p
	}
	if !top.expectingKey {
		return joinPath(top.path, top.pendingKey)
	}
	return top.path
}

func joinPath(base, step string) string {
	if base == "" {
		return step
	}
	return base + "." + step
}

func (e *enforcingTokenSource) Location() int64 { return e.inner.Location() }
