package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/grape"
)

func TestObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := NewObserver(reg)
	require.NoError(t, err)

	s := grape.MustSchema(
		grape.Prop("name", grape.NewString(true).Required().Min(2)),
		grape.Prop("age", grape.NewInteger(true).Min(0)),
	)
	inputs := []map[string]any{
		{"name": "bob", "age": 3},
		{"name": "b", "age": 3},
		{"age": -1},
		{"name": "alice", "age": -4},
	}
	for _, in := range inputs {
		_, err := s.Validate(context.Background(), in, grape.WithObserver(obs))
		require.NoError(t, err)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(obs.passes.WithLabelValues("passed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(obs.passes.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.failures.WithLabelValues("required")))
	assert.Equal(t, 3.0, testutil.ToFloat64(obs.failures.WithLabelValues("min")))

	n, err := testutil.GatherAndCount(reg, "grape_validation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNewObserver_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	MustObserver(reg)
	_, err := NewObserver(reg)
	assert.Error(t, err)
	assert.Panics(t, func() { MustObserver(reg) })
}
