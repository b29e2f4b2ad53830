package observability

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/arbor/pkg/types"
)

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, StatusSuccess},
		{fmt.Errorf("source %q: %w", "X", types.ErrNotFound), StatusNotFound},
		{types.ErrAlreadyExists, StatusAlreadyExists},
		{fmt.Errorf("wrap: %w", types.ErrInvalidMove), StatusInvalidMove},
		{types.ErrCorruptStore, StatusCorruptStore},
		{fmt.Errorf("%w: disk full", types.ErrPersistence), StatusPersistence},
		{errors.New("boom"), StatusError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorStatus(tt.err), "err=%v", tt.err)
	}
}

func TestObserveOperation(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveOperation("move", time.Now(), nil)
	m.ObserveOperation("move", time.Now(), types.ErrInvalidMove)
	m.ObserveOperation("move", time.Now(), types.ErrInvalidMove)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("move", StatusSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("move", StatusInvalidMove)))
}

func TestGaugesAndCounters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.SetNodes(8)
	m.RecordWrite(nil)
	m.RecordWrite(errors.New("disk full"))
	m.HTTPRequest("GET", "/v1/nodes/:id", "200")

	assert.Equal(t, 8.0, testutil.ToFloat64(m.Nodes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordWritesTotal.WithLabelValues(StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordWritesTotal.WithLabelValues(StatusError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/v1/nodes/:id", "200")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOperation("add", time.Now(), nil)
		m.SetNodes(3)
		m.RecordWrite(nil)
		m.HTTPRequest("GET", "/", "200")
	})
}
