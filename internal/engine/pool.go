package engine

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrPoolClosed     = errors.New("context pool is closed")
	ErrAcquireTimeout = errors.New("context acquisition timeout")
)

// acquireTimeout bounds how long Acquire waits for a free context.
const acquireTimeout = 5 * time.Second

// Pool manages a fixed set of reusable contexts for stateless evaluation.
// A context that was stopped or disposed is replaced on release: stopped
// contexts are one-shot and never return to rotation.
type Pool struct {
	platform *Platform
	opts     Options
	contexts chan *Context
	size     int
	mu       sync.RWMutex
	closed   bool
}

// NewPool creates a context pool of the given size.
func NewPool(platform *Platform, opts Options, size int) (*Pool, error) {
	if size <= 0 {
		size = 4
	}

	pool := &Pool{
		platform: platform,
		opts:     opts,
		contexts: make(chan *Context, size),
		size:     size,
	}

	for i := 0; i < size; i++ {
		c, err := New(platform, opts)
		if err != nil {
			pool.Close()
			return nil, err
		}
		pool.contexts <- c
	}

	return pool, nil
}

// Acquire gets a context from the pool, waiting up to the acquire timeout.
func (p *Pool) Acquire(ctx context.Context) (*Context, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, ErrPoolClosed
	}

	select {
	case c := <-p.contexts:
		return c, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(acquireTimeout):
		return nil, ErrAcquireTimeout
	}
}

// Release returns a context to the pool. Stopped or disposed contexts are
// replaced with fresh ones.
func (p *Pool) Release(c *Context) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		if !c.Disposed() {
			c.Dispose()
		}
		return nil
	}

	if c.Stopped() || c.Disposed() {
		if !c.Disposed() {
			c.Dispose()
		}
		fresh, err := New(p.platform, p.opts)
		if err != nil {
			return err
		}
		p.contexts <- fresh
		return nil
	}

	select {
	case p.contexts <- c:
		return nil
	default:
		// Pool full; drop the surplus context.
		c.Dispose()
		return nil
	}
}

// Eval runs source on a pooled context.
func (p *Pool) Eval(ctx context.Context, source string, filename ...string) (interface{}, error) {
	c, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.Release(c)

	return c.Eval(source, filename...)
}

// Close closes the pool and disposes all pooled contexts.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true
	close(p.contexts)

	for c := range p.contexts {
		if !c.Disposed() {
			c.Dispose()
		}
	}
	return nil
}

// Stats returns pool occupancy counters.
func (p *Pool) Stats() map[string]interface{} {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return map[string]interface{}{
		"size":      p.size,
		"available": len(p.contexts),
		"in_use":    p.size - len(p.contexts),
		"closed":    p.closed,
	}
}
