package engine

import (
	"sync"

	"github.com/dop251/goja"
)

// FlagUseStrict is the only recognized platform flag. Setting it compiles
// every eval payload in strict mode on contexts created afterwards.
const FlagUseStrict = "--use_strict"

// Capabilities describes what the underlying execution substrate can do.
// The pure-Go engine has no heap introspection and no binary snapshots;
// callers select degraded behaviors once, at startup, based on this record.
type Capabilities struct {
	PrecompiledSnapshots bool
	HeapIntrospection    bool
	Interruption         bool
}

var substrateCapabilities = Capabilities{
	PrecompiledSnapshots: true,
	HeapIntrospection:    false,
	Interruption:         true,
}

// Platform holds the process-wide bridge state: whether any context has
// been created yet, and whether strict mode is enabled.
// Construct exactly one at startup and pass it to every context factory.
type Platform struct {
	mu          sync.Mutex
	initialized bool
	strictMode  bool
}

// NewPlatform probes the execution substrate and returns the platform
// handle. Fails with UnsupportedPlatform or MissingLanguageSupport if the
// host cannot run isolated JavaScript contexts.
func NewPlatform() (*Platform, error) {
	if err := probeSubstrate(); err != nil {
		return nil, err
	}
	return &Platform{}, nil
}

// probeSubstrate verifies a guest runtime can be allocated and evaluated.
func probeSubstrate() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newError(MissingLanguageSupport,
				"the embedded JavaScript runtime failed to start: %v", r)
		}
	}()

	vm := goja.New()
	if vm == nil {
		return newError(UnsupportedPlatform,
			"this platform cannot allocate isolated JavaScript execution contexts")
	}
	if _, err := vm.RunString("void 0"); err != nil {
		return newError(MissingLanguageSupport,
			"the embedded JavaScript runtime is unavailable: %v", err)
	}
	return nil
}

// SetFlag applies a platform-wide configuration flag. Only FlagUseStrict
// is recognized; unknown flags are ignored. Fails with
// PlatformAlreadyInitialized once any context has been created.
func (p *Platform) SetFlag(flag string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return newError(PlatformAlreadyInitialized,
			"platform flags must be set before the first context is created")
	}
	if flag == FlagUseStrict {
		p.strictMode = true
	}
	return nil
}

// StrictMode reports whether strict-mode compilation is enabled.
func (p *Platform) StrictMode() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.strictMode
}

// Initialized reports whether any context has been created against this
// platform.
func (p *Platform) Initialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized
}

// Capabilities returns the substrate capability record.
func (p *Platform) Capabilities() Capabilities {
	return substrateCapabilities
}

func (p *Platform) markInitialized() {
	p.mu.Lock()
	p.initialized = true
	p.mu.Unlock()
}
