package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/corvid-labs/jsbridge/internal/config"
	"github.com/corvid-labs/jsbridge/internal/engine"
	"github.com/corvid-labs/jsbridge/internal/logging"
	"github.com/corvid-labs/jsbridge/internal/monitoring"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	cfg      *config.Config
	log      *logging.Logger
	router   *gin.Engine
	httpSrv  *http.Server
	platform *engine.Platform
	registry *Registry
	pool     *engine.Pool
	metrics  *monitoring.Metrics
}

// New creates a server instance. Platform flags are applied before any
// context exists; the pool pre-creates contexts afterwards.
func New(cfg *config.Config, log *logging.Logger) (*Server, error) {
	platform, err := engine.NewPlatform()
	if err != nil {
		return nil, err
	}

	if cfg.Engine.UseStrict {
		if err := platform.SetFlag(engine.FlagUseStrict); err != nil {
			return nil, err
		}
	}

	metrics := monitoring.New()

	pool, err := engine.NewPool(platform, engine.Options{
		EvalTimeout:      cfg.Engine.EvalTimeout,
		MaxCallStackSize: cfg.Engine.MaxCallStackSize,
		Logger:           log.Named("engine"),
		Metrics:          metrics,
	}, cfg.Engine.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create context pool: %w", err)
	}

	s := &Server{
		cfg:      cfg,
		log:      log,
		platform: platform,
		registry: NewRegistry(),
		pool:     pool,
		metrics:  metrics,
	}
	s.router = s.buildRouter()
	return s, nil
}

func (s *Server) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(AccessLog(s.log.Named("http")))
	router.Use(monitoring.Middleware(s.metrics))
	router.Use(cors.Default())

	h := NewHandlers(s.platform, s.registry, s.pool, s.cfg, s.log, s.metrics)

	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/eval", h.Eval)

	contexts := router.Group("/contexts")
	{
		contexts.POST("", h.CreateContext)
		contexts.POST("/:id/eval", h.ContextEval)
		contexts.POST("/:id/call", h.ContextCall)
		contexts.POST("/:id/stop", h.StopContext)
		contexts.GET("/:id/heap", h.HeapStats)
		contexts.DELETE("/:id", h.DeleteContext)
	}

	return router
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the HTTP server and blocks until it exits.
func (s *Server) Run() error {
	addr := fmt.Sprintf("%s:%s", s.cfg.Server.Host, s.cfg.Server.Port)
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info("server listening", zap.String("addr", addr))
	return s.httpSrv.ListenAndServe()
}

// Shutdown stops the HTTP server and releases all contexts.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpSrv != nil {
		err = s.httpSrv.Shutdown(ctx)
	}

	s.registry.CloseAll()
	if cerr := s.pool.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
