// Package middleware validates JSON request bodies in front of net/http
// handlers.
//
// On success the *grape.Result is attached to the request context and the
// next handler runs; failures are answered with the recorded messages.
package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/reoring/grape"
)

type ctxKeyResult struct{}

// ContextWithResult attaches r to ctx.
func ContextWithResult(ctx context.Context, r *grape.Result) context.Context {
	return context.WithValue(ctx, ctxKeyResult{}, r)
}

// ResultFromContext retrieves the Result stored by ValidateJSON.
func ResultFromContext(ctx context.Context) (*grape.Result, bool) {
	r, ok := ctx.Value(ctxKeyResult{}).(*grape.Result)
	return r, ok
}

// Config tunes ValidateJSON. The zero value uses DefaultDecodeOptions.
type Config struct {
	// Decode configures body decoding.
	Decode []grape.DecodeOption
	// Options are passed to every validation pass.
	Options []grape.Option
	// MaxBodyBytes caps the body size; 0 means 1 MiB.
	MaxBodyBytes int64
}

// DefaultDecodeOptions rejects duplicate keys, the usual stance at an HTTP
// boundary.
func DefaultDecodeOptions() []grape.DecodeOption {
	return []grape.DecodeOption{grape.OnDuplicateKey(grape.DuplicateError, nil)}
}

const defaultMaxBody = 1 << 20

// ValidateJSON decodes the request body and validates it with s. A body
// that is not JSON gets 400, a failed validation 422 and an aborted pass
// 500.
func ValidateJSON(s *grape.SchemaValidator, cfg Config) func(http.Handler) http.Handler {
	decode := cfg.Decode
	if decode == nil {
		decode = DefaultDecodeOptions()
	}
	limit := cfg.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBody
	}
	decode = append(append([]grape.DecodeOption(nil), decode...), grape.MaxBytes(limit))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			in, err := grape.DecodeJSON(req.Body, decode...)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			res, err := s.Validate(req.Context(), in, cfg.Options...)
			if err != nil {
				status := http.StatusInternalServerError
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					status = http.StatusServiceUnavailable
				}
				writeJSON(w, status, map[string]any{"error": err.Error()})
				return
			}
			if res.Failed() {
				writeJSON(w, http.StatusUnprocessableEntity, ErrorPayload(res.Messages()))
				return
			}
			next.ServeHTTP(w, req.WithContext(ContextWithResult(req.Context(), res)))
		})
	}
}

// ErrorPayload shapes messages for JSON responses.
func ErrorPayload(msgs grape.Messages) map[string]any {
	return map[string]any{"errors": msgs}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
