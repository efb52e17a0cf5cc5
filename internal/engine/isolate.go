package engine

import (
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// Isolate is a handle to a shareable execution substrate. Zero or more
// contexts may reference the same isolate; its lifetime is that of the
// longest holder. An isolate optionally carries a snapshot which contexts
// created against it inherit.
type Isolate struct {
	mu       sync.Mutex
	snapshot *Snapshot
	stopped  atomic.Bool
}

// NewIsolate creates an isolate, optionally seeded with a snapshot.
func NewIsolate(snapshot *Snapshot) *Isolate {
	return &Isolate{snapshot: snapshot}
}

// Bind attaches a snapshot to the isolate. The binding is set at most
// once; rebinding an isolate that already holds a snapshot fails.
func (i *Isolate) Bind(snapshot *Snapshot) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.snapshot != nil {
		return newError(InvalidArgument, "isolate already holds a snapshot")
	}
	i.snapshot = snapshot
	return nil
}

// Snapshot returns the isolate's current snapshot, or nil.
func (i *Isolate) Snapshot() *Snapshot {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.snapshot
}

// rebind replaces the stored snapshot. Used during context construction
// when both an isolate and an explicit snapshot are supplied.
func (i *Isolate) rebind(snapshot *Snapshot) {
	i.mu.Lock()
	i.snapshot = snapshot
	i.mu.Unlock()
}

// LowMemoryNotification hints that memory should be reclaimed. Best
// effort: the substrate has no manual heap control, so this hands freed
// pages back to the OS and nothing more.
func (i *Isolate) LowMemoryNotification() {
	debug.FreeOSMemory()
}

// IdleNotification hints that the given budget may be spent on cleanup.
// The substrate has no idle-GC concept, so this always reports done.
func (i *Isolate) IdleNotification(budget time.Duration) bool {
	return true
}

// Stopped reports whether a context sharing this isolate was stopped.
func (i *Isolate) Stopped() bool {
	return i.stopped.Load()
}

// notifyStop records a stop raised by one of the contexts sharing the
// isolate. Non-blocking: it must be callable from inside Stop while the
// executing goroutine holds the isolate's execution lock.
func (i *Isolate) notifyStop() {
	i.stopped.Store(true)
}
