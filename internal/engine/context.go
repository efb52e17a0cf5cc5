package engine

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/corvid-labs/jsbridge/internal/codec"
	"github.com/corvid-labs/jsbridge/internal/logging"
	"github.com/corvid-labs/jsbridge/internal/monitoring"
)

// stopSignal is the interrupt payload used by Stop and timeouts.
const stopSignal = "execution terminated"

// Options configures context construction.
type Options struct {
	// Isolate is an existing substrate handle to share. A snapshot held by
	// the isolate is inherited unless Snapshot is also set.
	Isolate *Isolate
	// Snapshot to replay on first use. Takes precedence over the isolate's;
	// when both are given the isolate's stored snapshot is updated.
	Snapshot *Snapshot
	// EvalTimeout bounds each evaluate/call; zero means unbounded. A
	// timeout stops the context permanently, like an explicit Stop.
	EvalTimeout time.Duration
	// MaxCallStackSize caps guest call depth; zero keeps the engine default.
	MaxCallStackSize int

	Logger  *logging.Logger
	Metrics *monitoring.Metrics
}

// Context owns one guest execution environment and its lifecycle state.
// A context runs at most one evaluate/call at a time; Stop may be called
// from any goroutine while another is executing.
type Context struct {
	platform *Platform
	isolate  *Isolate
	snapshot *Snapshot
	log      *logging.Logger
	metrics  *monitoring.Metrics

	evalTimeout time.Duration

	vm atomic.Pointer[goja.Runtime]
	mu sync.Mutex // serializes evaluate/call and dispose

	entered        atomic.Bool
	stopped        atomic.Bool
	hasEnteredOnce bool // guarded by mu
}

// New allocates a guest execution environment against the given platform.
func New(platform *Platform, opts Options) (*Context, error) {
	if platform == nil {
		return nil, newError(InvalidArgument, "platform is required")
	}

	// Effective snapshot precedence: explicit argument, then the isolate's.
	// Supplying both updates the isolate's stored snapshot as a side effect.
	snapshot := opts.Snapshot
	if opts.Isolate != nil {
		if snapshot != nil {
			opts.Isolate.rebind(snapshot)
		} else {
			snapshot = opts.Isolate.Snapshot()
		}
	}

	vm, err := allocateRuntime()
	if err != nil {
		return nil, err
	}
	if opts.MaxCallStackSize > 0 {
		vm.SetMaxCallStackSize(opts.MaxCallStackSize)
	}

	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}

	c := &Context{
		platform:    platform,
		isolate:     opts.Isolate,
		snapshot:    snapshot,
		log:         log,
		metrics:     opts.Metrics,
		evalTimeout: opts.EvalTimeout,
	}
	c.vm.Store(vm)

	platform.markInitialized()
	if c.metrics != nil {
		c.metrics.ContextCreated()
	}
	c.log.Debug("context created",
		zap.Bool("snapshot", snapshot != nil),
		zap.Bool("isolate", opts.Isolate != nil))
	return c, nil
}

func allocateRuntime() (vm *goja.Runtime, err error) {
	defer func() {
		if r := recover(); r != nil {
			vm = nil
			err = newError(MissingLanguageSupport,
				"the embedded JavaScript runtime failed to start: %v", r)
		}
	}()

	vm = goja.New()
	if vm == nil {
		return nil, newError(UnsupportedPlatform,
			"this platform cannot allocate isolated JavaScript execution contexts")
	}
	return vm, nil
}

// Eval executes source text in the guest scope and returns the converted
// result. An optional filename labels the source in backtraces.
func (c *Context) Eval(source string, filename ...string) (result interface{}, err error) {
	if c.metrics != nil {
		start := time.Now()
		defer func() { c.metrics.RecordOp("eval", outcomeOf(err), time.Since(start)) }()
	}

	unlock := c.lockExecution()
	defer unlock()
	defer c.entered.Store(false)

	// The deadline covers the whole entry protocol, snapshot replay
	// included.
	disarm := c.armTimeout()
	defer disarm()

	if err := c.enter(); err != nil {
		return nil, err
	}

	name := defaultScriptName
	if len(filename) > 0 {
		if len(filename) > 1 {
			return nil, newError(InvalidArgument, "at most one filename may be supplied")
		}
		if filename[0] == "" {
			return nil, newError(InvalidArgument, "filename must be a non-empty string when supplied")
		}
		name = filename[0]
	}

	prog, err := goja.Compile(name, source, c.platform.StrictMode())
	if err != nil {
		return nil, translateGuestError(err)
	}

	vm := c.vm.Load()
	val, err := vm.RunProgram(prog)
	if err != nil {
		return nil, c.fail("eval", err)
	}
	return c.decode(vm, val)
}

// Call resolves functionPath in the guest global scope, converts the
// arguments, invokes it, and returns the converted result.
func (c *Context) Call(functionPath string, args ...interface{}) (result interface{}, err error) {
	if c.metrics != nil {
		start := time.Now()
		defer func() { c.metrics.RecordOp("call", outcomeOf(err), time.Since(start)) }()
	}

	unlock := c.lockExecution()
	defer unlock()
	defer c.entered.Store(false)

	disarm := c.armTimeout()
	defer disarm()

	if err := c.enter(); err != nil {
		return nil, err
	}

	if strings.TrimSpace(functionPath) == "" {
		return nil, newError(InvalidArgument, "function path must be a non-empty string")
	}

	vm := c.vm.Load()
	fn, this, err := resolveFunction(vm, functionPath)
	if err != nil {
		return nil, err
	}

	enc := codec.NewEncoder(vm)
	guestArgs, err := enc.EncodeAll(args)
	if err != nil {
		if errors.Is(err, codec.ErrDepthExceeded) {
			return nil, newError(RuntimeError, "%s", err.Error())
		}
		// Host-side conversion failures propagate unmodified.
		return nil, err
	}
	if n := enc.Fallbacks(); n > 0 {
		c.log.Warn("host arguments degraded to sentinel",
			zap.String("function", functionPath), zap.Int("count", n))
		if c.metrics != nil {
			c.metrics.RecordConversionFallbacks(n)
		}
	}

	val, err := fn(this, guestArgs...)
	if err != nil {
		return nil, c.fail("call", err)
	}
	return c.decode(vm, val)
}

// Stop forcibly interrupts an in-flight evaluate/call from any goroutine.
// Effective only while the context is executing; outside the execution
// window it is a harmless no-op. Once stopped the context is permanently
// unusable.
func (c *Context) Stop() {
	vm := c.vm.Load()
	if vm == nil || !c.platform.Capabilities().Interruption {
		return
	}
	if !c.entered.Load() {
		return
	}

	c.stopped.Store(true)
	vm.Interrupt(stopSignal)
	if c.isolate != nil {
		c.isolate.notifyStop()
	}
	if c.metrics != nil {
		c.metrics.RecordTermination()
	}
	c.log.Info("context stopped")
}

// Dispose releases the guest execution environment. Not idempotent:
// callers must guarantee a single release point on all exit paths.
func (c *Context) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.vm.Store(nil)
	if c.metrics != nil {
		c.metrics.ContextDisposed()
	}
	c.log.Debug("context disposed")
}

// Stopped reports whether the context has been permanently stopped.
func (c *Context) Stopped() bool {
	return c.stopped.Load()
}

// Disposed reports whether the guest environment has been released.
func (c *Context) Disposed() bool {
	return c.vm.Load() == nil
}

// HeapStats is the fixed-shape heap introspection record. On substrates
// without memory introspection every field reports zero; callers must
// treat zero as "unavailable", not as a true zero-size heap.
type HeapStats struct {
	TotalPhysicalSize       int64 `json:"total_physical_size"`
	TotalHeapSizeExecutable int64 `json:"total_heap_size_executable"`
	TotalHeapSize           int64 `json:"total_heap_size"`
	UsedHeapSize            int64 `json:"used_heap_size"`
	HeapSizeLimit           int64 `json:"heap_size_limit"`
}

// HeapStats reports guest heap usage. The current substrate has no heap
// introspection, so every field is zero.
func (c *Context) HeapStats() HeapStats {
	return HeapStats{}
}

// lockExecution serializes evaluate/call, additionally holding the
// isolate's guard when this context shares one.
func (c *Context) lockExecution() func() {
	c.mu.Lock()
	if c.isolate == nil {
		return c.mu.Unlock
	}
	c.isolate.mu.Lock()
	return func() {
		c.isolate.mu.Unlock()
		c.mu.Unlock()
	}
}

// enter performs the first-use bookkeeping shared by Eval and Call: the
// snapshot replay and the stopped gate. Callers hold the execution lock.
func (c *Context) enter() error {
	c.entered.Store(true)
	first := !c.hasEnteredOnce
	c.hasEnteredOnce = true

	// Stopped contexts never reach the runtime again; first-entry steps
	// are recorded above but nothing executes.
	if c.stopped.Load() {
		return newError(ContextStopped,
			"context was stopped; create a new context to continue")
	}

	vm := c.vm.Load()
	if vm == nil {
		return newError(RuntimeError, "context has been disposed")
	}
	if !first {
		return nil
	}

	// Strictness is per compilation unit in this engine, so the platform
	// flag is enforced through the compile step of every eval payload, not
	// by a prologue here. Snapshot replay stays non-strict regardless of
	// the flag: snapshot sources predate the context and opt in themselves
	// with their own directive if they want strict semantics.
	if c.snapshot != nil {
		// A termination raised during replay surfaces as ScriptTerminated,
		// not swallowed.
		if err := c.snapshot.replay(vm); err != nil {
			return c.fail("snapshot replay", err)
		}
	}
	return nil
}

// armTimeout schedules a Stop when the context has an eval deadline.
func (c *Context) armTimeout() func() {
	if c.evalTimeout <= 0 {
		return func() {}
	}
	t := time.AfterFunc(c.evalTimeout, c.Stop)
	return func() { t.Stop() }
}

// fail translates a guest failure and records terminations.
func (c *Context) fail(op string, err error) error {
	terr := translateGuestError(err)
	if IsKind(terr, ScriptTerminated) {
		c.log.Info("guest execution terminated", zap.String("op", op))
	}
	return terr
}

func (c *Context) decode(vm *goja.Runtime, val goja.Value) (interface{}, error) {
	hv, err := codec.Decode(vm, val)
	if err != nil {
		// A cyclic or pathologically deep guest result exhausts the
		// conversion budget; recoverable, the context stays usable.
		if errors.Is(err, codec.ErrDepthExceeded) {
			return nil, newError(RuntimeError, "%s", err.Error())
		}
		return nil, c.fail("decode", err)
	}
	return hv, nil
}

// resolveFunction walks a dotted path from the guest global scope and
// returns the callable plus its receiver.
func resolveFunction(vm *goja.Runtime, path string) (goja.Callable, goja.Value, error) {
	var this goja.Value = goja.Undefined()
	var current goja.Value = vm.GlobalObject()

	for _, part := range strings.Split(path, ".") {
		obj, ok := current.(*goja.Object)
		if !ok {
			obj = current.ToObject(vm)
		}
		next := obj.Get(part)
		if next == nil || goja.IsUndefined(next) || goja.IsNull(next) {
			return nil, nil, newError(RuntimeError, "%s is not defined", path)
		}
		this = current
		current = next
	}

	fn, ok := goja.AssertFunction(current)
	if !ok {
		return nil, nil, newError(RuntimeError, "%s is not a function", path)
	}
	return fn, this, nil
}

func outcomeOf(err error) string {
	if err == nil {
		return "ok"
	}
	if kind, ok := KindOf(err); ok {
		return kind.String()
	}
	return "error"
}
