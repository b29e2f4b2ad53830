// Package observability provides Prometheus metrics and OpenTelemetry tracing
// setup for the arbor tree service.
//
// Metrics cover tree operations (count and latency by outcome), the live node
// count, durable record writes, and HTTP requests. All Metrics methods are
// nil-safe so components can run without instrumentation in tests.
package observability

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mesh-intelligence/arbor/pkg/types"
)

// Namespace for all metrics.
const metricsNamespace = "arbor"

const (
	treeSubsystem  = "tree"
	storeSubsystem = "store"
	httpSubsystem  = "http"
)

// Outcome labels.
const (
	StatusSuccess       = "success"
	StatusNotFound      = "not_found"
	StatusAlreadyExists = "already_exists"
	StatusInvalidMove   = "invalid_move"
	StatusCorruptStore  = "corrupt_store"
	StatusPersistence   = "persistence"
	StatusError         = "error"
)

// Metrics holds all Prometheus collectors used by the service.
type Metrics struct {
	// OperationsTotal counts tree operations.
	// Labels: operation (add, move, dump, details, reset, restore), status
	OperationsTotal *prometheus.CounterVec

	// OperationDurationSeconds measures tree operation latency including
	// persistence writes.
	// Labels: operation
	OperationDurationSeconds *prometheus.HistogramVec

	// Nodes is the number of live nodes in the tree.
	Nodes prometheus.Gauge

	// RecordWritesTotal counts durable record writes.
	// Labels: status (success, error)
	RecordWritesTotal *prometheus.CounterVec

	// HTTPRequestsTotal counts HTTP requests.
	// Labels: method, route, code
	HTTPRequestsTotal *prometheus.CounterVec
}

// NewMetrics creates all collectors and registers them with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
// Registering twice on the same registerer panics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: treeSubsystem,
				Name:      "operations_total",
				Help:      "Total tree operations by operation and status",
			},
			[]string{"operation", "status"},
		),
		OperationDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: treeSubsystem,
				Name:      "operation_duration_seconds",
				Help:      "Tree operation duration in seconds, persistence included",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"operation"},
		),
		Nodes: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: treeSubsystem,
				Name:      "nodes",
				Help:      "Number of live nodes in the tree",
			},
		),
		RecordWritesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: storeSubsystem,
				Name:      "record_writes_total",
				Help:      "Total durable node record writes by status",
			},
			[]string{"status"},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: httpSubsystem,
				Name:      "requests_total",
				Help:      "Total HTTP requests by method, route and status code",
			},
			[]string{"method", "route", "code"},
		),
	}
}

// ErrorStatus maps an operation error onto its outcome label.
func ErrorStatus(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, types.ErrNotFound):
		return StatusNotFound
	case errors.Is(err, types.ErrAlreadyExists):
		return StatusAlreadyExists
	case errors.Is(err, types.ErrInvalidMove):
		return StatusInvalidMove
	case errors.Is(err, types.ErrCorruptStore):
		return StatusCorruptStore
	case errors.Is(err, types.ErrPersistence):
		return StatusPersistence
	default:
		return StatusError
	}
}

// ObserveOperation records one tree operation that started at start.
func (m *Metrics) ObserveOperation(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.OperationsTotal.WithLabelValues(operation, ErrorStatus(err)).Inc()
	m.OperationDurationSeconds.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// SetNodes sets the live node gauge.
func (m *Metrics) SetNodes(n int) {
	if m == nil {
		return
	}
	m.Nodes.Set(float64(n))
}

// RecordWrite counts one durable write.
func (m *Metrics) RecordWrite(err error) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.RecordWritesTotal.WithLabelValues(status).Inc()
}

// HTTPRequest counts one served request.
func (m *Metrics) HTTPRequest(method, route, code string) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, code).Inc()
}
