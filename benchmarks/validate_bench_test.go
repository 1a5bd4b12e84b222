package benchmarks_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/reoring/grape"
)

// ---- Helpers ----

func itemSchema() *grape.SchemaValidator {
	return grape.MustSchema(
		grape.Prop("id", grape.NewString(true).Required().Prefix("obj_", true)),
		grape.Prop("name", grape.NewString(true).Trim().Min(1)),
		grape.Prop("age", grape.NewInteger(false).Min(0)),
		grape.Prop("active", grape.NewBoolean(false)),
		grape.Prop("meta", grape.MustSchema(grape.Prop("score", grape.NewNumber()))),
	)
}

func listSchema(mode grape.Mode) *grape.SchemaValidator {
	return grape.MustSchema(grape.Prop("items", grape.Array(itemSchema(), mode).Required()))
}

// generateItems returns {"items": [...]} holding n objects; every tenth one
// has a negative age.
func generateItems(n, extraFields int) []byte {
	var buf bytes.Buffer
	buf.Grow(n * (64 + extraFields*16))
	buf.WriteString(`{"items":[`)
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		age := i
		if i%10 == 9 {
			age = -i
		}
		fmt.Fprintf(&buf, `{"id":"obj_%d","name":"n%d","age":%d,"active":%t,"meta":{"score":%d}`, i, i, age, i%2 == 0, i)
		for k := 0; k < extraFields; k++ {
			fmt.Fprintf(&buf, `,"k%d":"v%d"`, k, k)
		}
		buf.WriteByte('}')
	}
	buf.WriteString(`]}`)
	return buf.Bytes()
}

// ---- Benchmarks ----

func BenchmarkValidate_SmallObject(b *testing.B) {
	s := grape.MustSchema(
		grape.Prop("id", grape.NewString(true).Required()),
		grape.Prop("name", grape.NewString(true).Trim()),
	)
	in := grape.MustValueOf(map[string]any{"id": "u_1", "name": " alice "})
	ctx := context.Background()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := s.Validate(ctx, in); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkValidate_Modes(b *testing.B) {
	in, err := grape.ParseJSON(generateItems(1000, 4))
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	for _, mode := range []grape.Mode{grape.FailFast, grape.CollectErrors, grape.DropInvalid} {
		s := listSchema(mode)
		b.Run(mode.String(), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := s.Validate(ctx, in); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkParseJSON(b *testing.B) {
	for _, n := range []int{100, 10000} {
		data := generateItems(n, 8)
		b.Run(fmt.Sprintf("items=%d", n), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := grape.ParseJSON(data, grape.OnDuplicateKey(grape.DuplicateError, nil)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkParseAndSanitize(b *testing.B) {
	data := generateItems(1000, 0)
	s := listSchema(grape.DropInvalid)
	ctx := context.Background()
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		in, err := grape.ParseJSON(data)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := s.Sanitize(ctx, in); err != nil {
			b.Fatal(err)
		}
	}
}
