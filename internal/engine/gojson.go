package engine

import (
	"bytes"
	"io"
	"strconv"

	j "github.com/goccy/go-json"
)

type jsonFrame struct {
	kind         containerKind
	expectingKey bool
}

// jsonSource is a TokenSource backed by the go-json Decoder. Location is
// the number of bytes handed to the decoder so far, which runs ahead of the
// token by at most one buffer.
type jsonSource struct {
	dec   *j.Decoder
	cr    *countingReader
	stack []jsonFrame
}

// NewJSONReader wraps r into a TokenSource.
func NewJSONReader(r io.Reader) TokenSource {
	cr := &countingReader{r: r}
	dec := j.NewDecoder(cr)
	dec.UseNumber()
	return &jsonSource{dec: dec, cr: cr}
}

// NewJSONBytes wraps b into a TokenSource.
func NewJSONBytes(b []byte) TokenSource { return NewJSONReader(bytes.NewReader(b)) }

func (s *jsonSource) NextToken() (Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return Token{}, err
	}
	off := s.cr.n
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, jsonFrame{kind: kindObject, expectingKey: true})
			return Token{Kind: KindBeginObject, Offset: off}, nil
		case '[':
			s.stack = append(s.stack, jsonFrame{kind: kindArray})
			return Token{Kind: KindBeginArray, Offset: off}, nil
		case '}':
			s.pop()
			return Token{Kind: KindEndObject, Offset: off}, nil
		case ']':
			s.pop()
			return Token{Kind: KindEndArray, Offset: off}, nil
		}
	case string:
		if n := len(s.stack); n > 0 {
			top := &s.stack[n-1]
			if top.kind == kindObject && top.expectingKey {
				top.expectingKey = false
				return Token{Kind: KindKey, String: v, Offset: off}, nil
			}
		}
		s.scalar()
		return Token{Kind: KindString, String: v, Offset: off}, nil
	case bool:
		s.scalar()
		return Token{Kind: KindBool, Bool: v, Offset: off}, nil
	case j.Number:
		s.scalar()
		return Token{Kind: KindNumber, Number: string(v), Offset: off}, nil
	case float64:
		s.scalar()
		return Token{Kind: KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64), Offset: off}, nil
	}
	s.scalar()
	return Token{Kind: KindNull, Offset: off}, nil
}

func (s *jsonSource) pop() {
	if n := len(s.stack); n > 0 {
		s.stack = s.stack[:n-1]
	}
	s.scalar()
}

// scalar marks the value of the current object member as consumed.
func (s *jsonSource) scalar() {
	if n := len(s.stack); n > 0 {
		top := &s.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
		}
	}
}

func (s *jsonSource) Location() int64 { return s.cr.n }

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
