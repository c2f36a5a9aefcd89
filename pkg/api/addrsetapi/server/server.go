// Package server implements the HTTP surface of the address-set
// compilation service: gin routes backed by an in-memory registry of
// compiled, frozen SetHeads, one per name, swapped atomically on
// recompilation (spec.md §5 concurrency model).
package server

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/els0r/telemetry/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/nrescobar/sentryrules/pkg/addrset"
	"github.com/nrescobar/sentryrules/pkg/addrset/resolver"
	"github.com/nrescobar/sentryrules/pkg/api"
	"github.com/nrescobar/sentryrules/pkg/version"
)

const serviceName = "sentryrules"

// Option configures a Server at construction time.
type Option func(*Server)

// Server serves the addrset compilation/lookup API.
type Server struct {
	addr           string
	unixSocketFile string

	mu   sync.RWMutex
	sets map[string]*addrset.SetHead

	compileLimiter *rate.Limiter
	remote         *resolver.Remote

	srv    *http.Server
	router *gin.Engine
}

// WithUnixSocket overrides how the listen address is interpreted; mirrors
// the teacher's api.ExtractUnixSocket handling in its own subservers.
func WithUnixSocket(path string) Option {
	return func(s *Server) { s.unixSocketFile = path }
}

// WithCompileRateLimit bounds POST /api/v1/addrsets to r requests per second
// with a burst of b, since compiling arbitrary caller-supplied expression
// text is the one route doing non-trivial work on untrusted input.
func WithCompileRateLimit(r rate.Limit, b int) Option {
	return func(s *Server) { s.compileLimiter = rate.NewLimiter(r, b) }
}

// WithResolver gives the server a rule-distribution service to fall back on
// when a POST /api/v1/addrsets request references a "$name" group not present
// in its own inline "vars" map, mirroring the CLI's resolver.base_url fallback
// (cmd/sentryrules's resolveVars). A zero baseURL leaves remote resolution
// disabled.
func WithResolver(baseURL string, timeout time.Duration) Option {
	return func(s *Server) {
		if baseURL != "" {
			s.remote = resolver.NewRemote(baseURL, timeout)
		}
	}
}

// New builds a Server listening on addr.
func New(addr string, opts ...Option) *Server {
	s := &Server{
		addr: addr,
		sets: make(map[string]*addrset.SetHead),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	s.router = router
	s.unixSocketFile = api.ExtractUnixSocket(addr)

	for _, opt := range opts {
		opt(s)
	}

	s.registerMiddlewares()
	s.registerRoutes()
	return s
}

func (s *Server) registerMiddlewares() {
	s.router.Use(
		cors.Default(),
		api.TraceIDMiddleware(),
		api.RequestLoggingMiddleware(),
	)
}

const nameKey = "name"

func (s *Server) registerRoutes() {
	s.router.GET(api.HealthRoute, func(c *gin.Context) { c.Status(http.StatusOK) })
	s.router.GET(api.ReadyRoute, func(c *gin.Context) { c.Status(http.StatusOK) })
	s.router.GET(api.InfoRoute, func(c *gin.Context) {
		s.writeJSON(c, http.StatusOK, gin.H{"service": serviceName, "version": version.Short()})
	})

	setRoutes := s.router.Group("/api/v1/addrsets")
	if s.compileLimiter != nil {
		setRoutes.POST("", api.RateLimitMiddleware(s.compileLimiter), s.postCompile)
	} else {
		setRoutes.POST("", s.postCompile)
	}
	setRoutes.GET("/:"+nameKey, s.getInspect)
	setRoutes.GET("/:"+nameKey+"/lookup", s.getLookup)
}

// WithProfiling registers pprof's debug routes on the server, mirroring the
// teacher's opt-in profiling middleware.
func WithProfiling() Option {
	return func(s *Server) { api.RegisterProfiling(s.router) }
}

// WithTracing enables otel trace propagation for incoming requests, mirroring
// the teacher's own tracing-gated middleware registration.
func WithTracing() Option {
	return func(s *Server) { s.router.Use(otelgin.Middleware(serviceName)) }
}

// WithMetrics registers prometheus request-duration/count middleware under
// the server's registered service name.
func WithMetrics() Option {
	return func(s *Server) {
		metrics.NewPrometheus(serviceName, "api").
			WithRequestDurationBuckets(prometheus.DefBuckets).
			Register(s.router)
	}
}

const headerTimeout = 30 * time.Second

// Serve starts the HTTP server, listening on a unix socket if the address
// was expressed as one.
func (s *Server) Serve() error {
	s.srv = &http.Server{
		Handler:           s.router.Handler(),
		ReadHeaderTimeout: headerTimeout,
	}

	if s.unixSocketFile != "" {
		listener, err := net.Listen("unix", s.unixSocketFile)
		if err != nil {
			return err
		}
		return s.srv.Serve(listener)
	}

	s.srv.Addr = s.addr
	return s.srv.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
