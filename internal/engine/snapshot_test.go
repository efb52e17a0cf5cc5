package engine

import (
	"testing"
	"time"
)

// countingSnapshot increments a global on each replay, making replay
// frequency observable from the guest.
const countingSnapshot = "globalThis.count = (globalThis.count || 0) + 1"

func TestSnapshotReplayedOnce(t *testing.T) {
	snap, err := NewSnapshot(countingSnapshot)
	if err != nil {
		t.Fatalf("NewSnapshot error = %v", err)
	}

	ctx := newTestContext(t, Options{Snapshot: snap})
	defer ctx.Dispose()

	for i := 0; i < 3; i++ {
		got, err := ctx.Eval("count")
		if err != nil {
			t.Fatalf("Eval(count) error = %v", err)
		}
		if got != int64(1) {
			t.Fatalf("eval %d: count = %#v, want 1 (replay must happen exactly once)", i, got)
		}
	}
}

func TestSnapshotWarmup(t *testing.T) {
	snap, err := NewSnapshot("var greeting = 'hello'")
	if err != nil {
		t.Fatalf("NewSnapshot error = %v", err)
	}
	if snap.Warmed() {
		t.Error("fresh snapshot should not report warmed")
	}

	if err := snap.Warmup(); err != nil {
		t.Fatalf("Warmup error = %v", err)
	}
	if !snap.Warmed() {
		t.Error("snapshot should report warmed after Warmup")
	}

	// Warmed and lazy snapshots leave identical bindings behind.
	ctx := newTestContext(t, Options{Snapshot: snap})
	defer ctx.Dispose()

	got, err := ctx.Eval("greeting")
	if err != nil {
		t.Fatalf("Eval(greeting) error = %v", err)
	}
	if got != "hello" {
		t.Errorf("greeting = %#v, want %q", got, "hello")
	}
}

func TestSnapshotWarmupParseError(t *testing.T) {
	snap, err := NewSnapshot("function(")
	if err != nil {
		t.Fatalf("NewSnapshot error = %v", err)
	}
	if err := snap.Warmup(); !IsKind(err, ParseError) {
		t.Errorf("Warmup error = %v, want ParseError", err)
	}
}

func TestSnapshotInvalidSource(t *testing.T) {
	if _, err := NewSnapshot("\xff\xfe"); !IsKind(err, InvalidArgument) {
		t.Errorf("NewSnapshot error = %v, want InvalidArgument", err)
	}
}

func TestSnapshotInheritedFromIsolate(t *testing.T) {
	snap, err := NewSnapshot("var origin = 'isolate'")
	if err != nil {
		t.Fatalf("NewSnapshot error = %v", err)
	}

	ctx := newTestContext(t, Options{Isolate: NewIsolate(snap)})
	defer ctx.Dispose()

	got, err := ctx.Eval("origin")
	if err != nil {
		t.Fatalf("Eval(origin) error = %v", err)
	}
	if got != "isolate" {
		t.Errorf("origin = %#v, want %q", got, "isolate")
	}
}

func TestSnapshotExplicitOverridesIsolate(t *testing.T) {
	isoSnap, err := NewSnapshot("var origin = 'isolate'")
	if err != nil {
		t.Fatalf("NewSnapshot error = %v", err)
	}
	explicit, err := NewSnapshot("var origin = 'explicit'")
	if err != nil {
		t.Fatalf("NewSnapshot error = %v", err)
	}

	iso := NewIsolate(isoSnap)
	ctx := newTestContext(t, Options{Isolate: iso, Snapshot: explicit})
	defer ctx.Dispose()

	got, err := ctx.Eval("origin")
	if err != nil {
		t.Fatalf("Eval(origin) error = %v", err)
	}
	if got != "explicit" {
		t.Errorf("origin = %#v, want %q", got, "explicit")
	}

	// Supplying both rebinds the isolate's stored snapshot.
	if iso.Snapshot() != explicit {
		t.Error("isolate should now hold the explicit snapshot")
	}
}

func TestSnapshotReplayNotStrict(t *testing.T) {
	p := newTestPlatform(t)
	if err := p.SetFlag(FlagUseStrict); err != nil {
		t.Fatalf("SetFlag error = %v", err)
	}

	// Replay is never strict: sloppy snapshot source loads even when eval
	// payloads are compiled strict.
	snap, err := NewSnapshot("leaked = 1")
	if err != nil {
		t.Fatalf("NewSnapshot error = %v", err)
	}

	ctx, err := New(p, Options{Snapshot: snap})
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	defer ctx.Dispose()

	got, err := ctx.Eval("leaked")
	if err != nil {
		t.Fatalf("Eval(leaked) error = %v", err)
	}
	if got != int64(1) {
		t.Errorf("leaked = %#v, want 1", got)
	}
}

func TestSnapshotReplayTermination(t *testing.T) {
	snap, err := NewSnapshot("while(true) {}")
	if err != nil {
		t.Fatalf("NewSnapshot error = %v", err)
	}

	ctx := newTestContext(t, Options{Snapshot: snap, EvalTimeout: 100 * time.Millisecond})
	defer ctx.Dispose()

	if _, err := ctx.Eval("1"); !IsKind(err, ScriptTerminated) {
		t.Errorf("Eval error = %v, want ScriptTerminated (raised during replay)", err)
	}
}
