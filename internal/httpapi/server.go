// Package httpapi exposes the tree manager over HTTP with gin.
//
// Every response body, errors included, is the JSON envelope
//
//	{"status_code": 200, "message": "OK", "response": ...}
//
// except the help page at / and the Prometheus exposition at /metrics.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/mesh-intelligence/arbor/internal/observability"
	"github.com/mesh-intelligence/arbor/internal/tree"
)

// DefaultServiceName names the server in traces.
const DefaultServiceName = "arbor"

// Server routes HTTP requests to a tree.Manager.
type Server struct {
	manager     *tree.Manager
	engine      *gin.Engine
	logger      *slog.Logger
	metrics     *observability.Metrics
	gatherer    prometheus.Gatherer
	corsOrigins []string
	serviceName string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics counts requests in metrics and serves gatherer at /metrics.
// A nil gatherer leaves /metrics unregistered.
func WithMetrics(metrics *observability.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = metrics
		s.gatherer = gatherer
	}
}

// WithCORSOrigins sets the origins allowed by CORS. "*" allows any origin,
// and is the default.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) { s.corsOrigins = origins }
}

// WithServiceName sets the service name reported by the tracing middleware.
func WithServiceName(name string) Option {
	return func(s *Server) { s.serviceName = name }
}

// New builds the gin engine and registers every route.
func New(manager *tree.Manager, opts ...Option) *Server {
	s := &Server{
		manager:     manager,
		logger:      slog.Default(),
		corsOrigins: []string{"*"},
		serviceName: DefaultServiceName,
	}
	for _, opt := range opts {
		opt(s)
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.Use(
		s.recovery(),
		requestID(),
		otelgin.Middleware(s.serviceName),
		cors(s.corsOrigins),
		s.requestLogger(),
	)
	s.engine = engine
	s.routes()
	return s
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	s.engine.GET("/", s.help)
	s.engine.GET("/health", s.health)
	if s.gatherer != nil {
		s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	v1 := s.engine.Group("/v1")
	v1.POST("/reset", s.reset)
	v1.GET("/nodes/:id", s.details)
	v1.GET("/nodes/:id/subtree", s.subtree)
	v1.POST("/nodes/:id/children/:child", s.addChild)
	v1.PUT("/nodes/:id/move/:dest", s.move)
	v1.GET("/debug/layers", s.layers)

	s.engine.NoRoute(func(c *gin.Context) {
		reply(c, http.StatusNotFound, "no such route: "+c.Request.URL.Path, nil)
	})
	s.engine.NoMethod(func(c *gin.Context) {
		reply(c, http.StatusMethodNotAllowed, c.Request.Method+" is not allowed on "+c.Request.URL.Path, nil)
	})
}
