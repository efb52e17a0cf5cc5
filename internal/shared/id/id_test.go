package id

import (
	"crypto/rand"
	"strings"
	"sync"
	"testing"
)

func TestGenerate(t *testing.T) {
	gen := NewGenerator(rand.Reader)

	id1 := gen.Generate()
	id2 := gen.Generate()

	if id1.String() == id2.String() {
		t.Error("Generated IDs should be unique")
	}
}

func TestGenerateWithPrefix(t *testing.T) {
	gen := NewGenerator(rand.Reader)

	for _, prefix := range []string{ContextPrefix, SnapshotPrefix, RequestPrefix} {
		id := gen.GenerateWithPrefix(prefix)

		if !strings.HasPrefix(id, prefix+"_") {
			t.Errorf("ID should start with %q, got: %s", prefix+"_", id)
		}

		parts := strings.Split(id, "_")
		if len(parts) != 2 || len(parts[1]) != 26 {
			t.Errorf("Prefixed ID should have format 'prefix_<26-char ulid>', got: %s", id)
		}
	}
}

func TestTypedConstructors(t *testing.T) {
	if !strings.HasPrefix(string(NewContextID()), "ctx_") {
		t.Error("context ID should carry ctx_ prefix")
	}
	if !strings.HasPrefix(string(NewSnapshotID()), "snap_") {
		t.Error("snapshot ID should carry snap_ prefix")
	}
	if !strings.HasPrefix(string(NewRequestID()), "req_") {
		t.Error("request ID should carry req_ prefix")
	}
}

func TestConcurrentGeneration(t *testing.T) {
	gen := NewGenerator(rand.Reader)

	const n = 100
	var wg sync.WaitGroup
	seen := make(chan string, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- gen.Generate().String()
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[string]struct{}, n)
	for s := range seen {
		unique[s] = struct{}{}
	}
	if len(unique) != n {
		t.Errorf("expected %d unique IDs, got %d", n, len(unique))
	}
}
