package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/corvid-labs/jsbridge/internal/config"
	"github.com/corvid-labs/jsbridge/internal/engine"
	"github.com/corvid-labs/jsbridge/internal/logging"
	"github.com/corvid-labs/jsbridge/internal/monitoring"
	"github.com/corvid-labs/jsbridge/internal/shared/id"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	platform *engine.Platform
	registry *Registry
	pool     *engine.Pool
	cfg      *config.Config
	log      *logging.Logger
	metrics  *monitoring.Metrics
}

// NewHandlers creates a new handler set.
func NewHandlers(
	platform *engine.Platform,
	registry *Registry,
	pool *engine.Pool,
	cfg *config.Config,
	log *logging.Logger,
	metrics *monitoring.Metrics,
) *Handlers {
	return &Handlers{
		platform: platform,
		registry: registry,
		pool:     pool,
		cfg:      cfg,
		log:      log,
		metrics:  metrics,
	}
}

// Root handles the service banner.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "jsbridge",
		"version": "0.3.0",
	})
}

// Health handles detailed health check.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"contexts": h.registry.Count(),
		"pool":     h.pool.Stats(),
		"uptime":   h.metrics.Uptime().String(),
	})
}

type evalRequest struct {
	Source    string `json:"source" binding:"required"`
	Filename  string `json:"filename"`
	TimeoutMS int    `json:"timeout_ms"`
}

// Eval runs a script on a pooled, stateless context.
func (h *Handlers) Eval(c *gin.Context) {
	var req evalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "InvalidArgument"})
		return
	}

	ctx, err := h.pool.Acquire(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	defer h.pool.Release(ctx)

	if req.TimeoutMS > 0 {
		timer := time.AfterFunc(time.Duration(req.TimeoutMS)*time.Millisecond, ctx.Stop)
		defer timer.Stop()
	}

	result, err := h.evalOn(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func (h *Handlers) evalOn(ctx *engine.Context, req evalRequest) (interface{}, error) {
	if req.Filename != "" {
		return ctx.Eval(req.Source, req.Filename)
	}
	return ctx.Eval(req.Source)
}

type createContextRequest struct {
	SnapshotSource string `json:"snapshot_source"`
	Warmup         bool   `json:"warmup"`
}

// CreateContext allocates a long-lived context, optionally seeded with a
// snapshot.
func (h *Handlers) CreateContext(c *gin.Context) {
	var req createContextRequest
	// An empty body is fine; anything unparsable is not.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "InvalidArgument"})
			return
		}
	}

	opts := engine.Options{
		MaxCallStackSize: h.cfg.Engine.MaxCallStackSize,
		Logger:           h.log,
		Metrics:          h.metrics,
	}

	if req.SnapshotSource != "" {
		snapshot, err := engine.NewSnapshot(req.SnapshotSource)
		if err != nil {
			respondError(c, err)
			return
		}
		if req.Warmup {
			if err := snapshot.Warmup(); err != nil {
				respondError(c, err)
				return
			}
		}
		opts.Snapshot = snapshot
	}

	ctx, err := engine.New(h.platform, opts)
	if err != nil {
		respondError(c, err)
		return
	}

	cid := h.registry.Add(ctx)
	c.JSON(http.StatusCreated, gin.H{"context_id": cid})
}

// ContextEval runs a script on a registered context.
func (h *Handlers) ContextEval(c *gin.Context) {
	ctx, ok := h.lookup(c)
	if !ok {
		return
	}

	var req evalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "InvalidArgument"})
		return
	}

	if req.TimeoutMS > 0 {
		timer := time.AfterFunc(time.Duration(req.TimeoutMS)*time.Millisecond, ctx.Stop)
		defer timer.Stop()
	}

	result, err := h.evalOn(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

type callRequest struct {
	Function string        `json:"function" binding:"required"`
	Args     []interface{} `json:"args"`
}

// ContextCall invokes a guest function on a registered context.
func (h *Handlers) ContextCall(c *gin.Context) {
	ctx, ok := h.lookup(c)
	if !ok {
		return
	}

	var req callRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "InvalidArgument"})
		return
	}

	result, err := ctx.Call(req.Function, req.Args...)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// StopContext terminates whatever the context is executing.
func (h *Handlers) StopContext(c *gin.Context) {
	ctx, ok := h.lookup(c)
	if !ok {
		return
	}

	ctx.Stop()
	c.JSON(http.StatusOK, gin.H{"stopped": ctx.Stopped()})
}

// HeapStats reports the context's heap record. All-zero values mean the
// substrate has no memory introspection.
func (h *Handlers) HeapStats(c *gin.Context) {
	ctx, ok := h.lookup(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, ctx.HeapStats())
}

// DeleteContext disposes and deregisters a context.
func (h *Handlers) DeleteContext(c *gin.Context) {
	cid := id.ContextID(c.Param("id"))
	if !h.registry.Remove(cid) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown context", "kind": "InvalidArgument"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) lookup(c *gin.Context) (*engine.Context, bool) {
	cid := id.ContextID(c.Param("id"))
	ctx, ok := h.registry.Get(cid)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown context", "kind": "InvalidArgument"})
		return nil, false
	}
	return ctx, true
}

// respondError maps bridge error kinds onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	kind, ok := engine.KindOf(err)
	if !ok {
		status := http.StatusInternalServerError
		if errors.Is(err, engine.ErrPoolClosed) || errors.Is(err, engine.ErrAcquireTimeout) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	var status int
	switch kind {
	case engine.InvalidArgument:
		status = http.StatusBadRequest
	case engine.ContextStopped, engine.PlatformAlreadyInitialized:
		status = http.StatusConflict
	case engine.ScriptTerminated:
		status = http.StatusRequestTimeout
	case engine.ParseError, engine.RuntimeError:
		status = http.StatusUnprocessableEntity
	default:
		status = http.StatusInternalServerError
	}

	body := gin.H{"error": err.Error(), "kind": kind.String()}
	var bridgeErr *engine.Error
	if errors.As(err, &bridgeErr) && len(bridgeErr.Backtrace) > 0 {
		body["backtrace"] = bridgeErr.Backtrace
	}
	c.JSON(status, body)
}
