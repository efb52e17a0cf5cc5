/*
Package engine embeds a JavaScript runtime and exposes a controlled bridge
between host and guest.

# Overview

Each Context owns one isolated guest execution environment with:

  - evaluate and call primitives returning converted host values
  - at-most-once snapshot replay before the first real evaluation
  - cross-goroutine forced termination via the runtime's interrupt
  - a typed error taxonomy replacing raw guest exceptions

# Lifecycle

A Platform is constructed once at startup; it probes the substrate and
holds the process-wide flags (strict-mode compilation, initialized marker).
Contexts are created against it, optionally sharing an Isolate and/or a
Snapshot, and are released through a single Dispose call. A stopped
context is permanently unusable; create a new one to continue.

# Termination

Stop may be called from any goroutine while another is blocked inside
Eval or Call. The contract is best-effort: the stop is effective only if
it lands inside the execution window, and exact timing is not guaranteed.
Timeouts use the same mechanism and poison the context the same way.

# Usage Example

	platform, err := engine.NewPlatform()
	ctx, err := engine.New(platform, engine.Options{})
	defer ctx.Dispose()

	v, err := ctx.Eval("1+1")          // int64(2)
	v, err = ctx.Call("Math.max", 3, 7) // int64(7)

# Substrate

The guest engine is goja, a pure-Go runtime. It has no heap introspection
(HeapStats reports zeros, meaning unavailable) and no binary snapshots
(warmup precompiles; replay happens lazily on first use otherwise).
*/
package engine
