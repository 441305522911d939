package lock

import (
	"context"
	"sync"
)

// MemoryRunGuard serializes actions inside one process.
type MemoryRunGuard struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewMemoryRunGuard() *MemoryRunGuard {
	return &MemoryRunGuard{held: make(map[string]bool)}
}

func (g *MemoryRunGuard) TryAcquire(_ context.Context, name string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.held[name] {
		return false, nil
	}
	g.held[name] = true
	return true, nil
}

func (g *MemoryRunGuard) Release(_ context.Context, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.held[name] {
		return ErrNotHeld
	}
	delete(g.held, name)
	return nil
}
