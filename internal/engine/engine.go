// Package engine decodes JSON token streams into ordered trees.
package engine

import (
	"io"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// NodeKind identifies the shape of a decoded Node.
type NodeKind int

const (
	NodeNull NodeKind = iota
	NodeBool
	NodeNumber
	NodeString
	NodeArray
	NodeObject
)

// Node is a decoded JSON value. Object members keep their input order;
// numbers keep their literal text.
type Node struct {
	Kind   NodeKind
	Bool   bool
	Text   string // string content or number literal
	Keys   []string
	Fields []Node // parallel to Keys
	Items  []Node
}

// Decode reads exactly one value from src. A duplicated key keeps its first
// position and its last value.
func Decode(src TokenSource) (Node, error) {
	tok, err := src.NextToken()
	if err != nil {
		return Node{}, err
	}
	return decodeValue(src, tok)
}

func decodeValue(src TokenSource, tok Token) (Node, error) {
	switch tok.Kind {
	case KindBeginObject:
		return decodeObject(src)
	case KindBeginArray:
		return decodeArray(src)
	case KindString:
		return Node{Kind: NodeString, Text: tok.String}, nil
	case KindNumber:
		return Node{Kind: NodeNumber, Text: tok.Number}, nil
	case KindBool:
		return Node{Kind: NodeBool, Bool: tok.Bool}, nil
	case KindNull:
		return Node{Kind: NodeNull}, nil
	default:
		return Node{}, io.ErrUnexpectedEOF
	}
}

func decodeObject(src TokenSource) (Node, error) {
	n := Node{Kind: NodeObject}
	index := map[string]int{}
	for {
		tok, err := src.NextToken()
		if err != nil {
			return Node{}, err
		}
		if tok.Kind == KindEndObject {
			return n, nil
		}
		if tok.Kind != KindKey {
			return Node{}, io.ErrUnexpectedEOF
		}
		vt, err := src.NextToken()
		if err != nil {
			return Node{}, err
		}
		v, err := decodeValue(src, vt)
		if err != nil {
			return Node{}, err
		}
		if i, dup := index[tok.String]; dup {
			n.Fields[i] = v
			continue
		}
		index[tok.String] = len(n.Keys)
		n.Keys = append(n.Keys, tok.String)
		n.Fields = append(n.Fields, v)
	}
}

func decodeArray(src TokenSource) (Node, error) {
	n := Node{Kind: NodeArray, Items: []Node{}}
	for {
		tok, err := src.NextToken()
		if err != nil {
			return Node{}, err
		}
		if tok.Kind == KindEndArray {
			return n, nil
		}
		v, err := decodeValue(src, tok)
		if err != nil {
			return Node{}, err
		}
		n.Items = append(n.Items, v)
	}
}
