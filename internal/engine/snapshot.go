package engine

import (
	"sync"
	"unicode/utf8"

	"github.com/dop251/goja"
)

// snapshotScriptName labels snapshot source inside the guest.
const snapshotScriptName = "<snapshot>"

// replayer is the capability seam between real precompiled snapshots and
// lazy source replay. Both leave the same global bindings visible after a
// context's first use; only the preparation timing differs.
type replayer interface {
	replay(vm *goja.Runtime) error
	warmed() bool
}

// lazyReplay evaluates the raw source on first context use. Replay is
// always non-strict; a snapshot opts in with its own directive.
type lazyReplay struct {
	source string
}

func (r lazyReplay) replay(vm *goja.Runtime) error {
	_, err := vm.RunScript(snapshotScriptName, r.source)
	return err
}

func (r lazyReplay) warmed() bool { return false }

// compiledReplay runs a program precompiled during warmup.
type compiledReplay struct {
	prog *goja.Program
}

func (r compiledReplay) replay(vm *goja.Runtime) error {
	_, err := vm.RunProgram(r.prog)
	return err
}

func (r compiledReplay) warmed() bool { return true }

// Snapshot is an immutable unit of startup script source, replayed at most
// once per context before its first real evaluation. Snapshots are shared
// by reference across any number of contexts and isolates.
type Snapshot struct {
	source string

	mu  sync.Mutex
	rep replayer
}

// NewSnapshot creates a snapshot from source text. Fails with
// InvalidArgument if the source is not valid text.
func NewSnapshot(source string) (*Snapshot, error) {
	if !utf8.ValidString(source) {
		return nil, newError(InvalidArgument, "snapshot source must be valid text")
	}
	return &Snapshot{source: source, rep: lazyReplay{source: source}}, nil
}

// Warmup validates the snapshot source is loadable by precompiling it, so
// replay on first context use runs the compiled form. On substrates
// without precompilation support this is a structural no-op and replay
// stays lazy; either way the snapshot's global bindings are visible after
// a context's first use.
func (s *Snapshot) Warmup() error {
	if !substrateCapabilities.PrecompiledSnapshots {
		return nil
	}

	prog, err := goja.Compile(snapshotScriptName, s.source, false)
	if err != nil {
		return translateGuestError(err)
	}

	s.mu.Lock()
	s.rep = compiledReplay{prog: prog}
	s.mu.Unlock()
	return nil
}

// Warmed reports whether the snapshot has been precompiled.
func (s *Snapshot) Warmed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rep.warmed()
}

// Source returns the snapshot's source text.
func (s *Snapshot) Source() string {
	return s.source
}

func (s *Snapshot) replay(vm *goja.Runtime) error {
	s.mu.Lock()
	rep := s.rep
	s.mu.Unlock()
	return rep.replay(vm)
}
