// Package opsserver is the optional operational HTTP surface: health,
// readiness, Prometheus metrics, and read-only gate status. It never
// dispatches tools.
package opsserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/plcops/twincat-mcp/internal/gate"
	"github.com/plcops/twincat-mcp/internal/observability"
)

type Server struct {
	addr    string
	gate    *gate.Gate
	router  *gin.Engine
	httpSrv *http.Server
	started time.Time
	version string
}

func New(addr string, corsOrigins []string, g *gate.Gate, version string) *Server {
	observability.RegisterMetrics()
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(corsOrigins),
		AllowMethods: []string{"GET"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		addr:    addr,
		gate:    g,
		router:  r,
		started: time.Now(),
		version: version,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.started).String(),
			"service": "twincat-mcp",
			"version": s.version,
		})
	})

	s.router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":  true,
			"uptime": time.Since(s.started).String(),
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/armed", func(c *gin.Context) {
		st := s.gate.Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"armed":             st.Armed,
			"reason":            st.Reason,
			"remaining_seconds": int(st.Remaining.Seconds()),
		})
	})
}

// Start serves in the background until Shutdown.
func (s *Server) Start() {
	s.httpSrv = &http.Server{Addr: s.addr, Handler: s.router}
	go func() {
		log.Info().Str("addr", s.addr).Msg("ops listener started")
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("ops listener failed")
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// Handler exposes the route tree, for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
