// Package lock serialises dialog turns per session key.
package lock

import (
	"context"
	"sync"
)

// Gate grants exclusive access to one key at a time.
// The returned release func must be called exactly once.
type Gate interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

type keyedEntry struct {
	ch   chan struct{}
	refs int
}

// KeyedGate is an in-process Gate. Entries are reference counted and dropped when
// no turn holds or waits on them, so idle sessions cost nothing.
type KeyedGate struct {
	mu      sync.Mutex
	entries map[string]*keyedEntry
}

func NewKeyedGate() *KeyedGate {
	return &KeyedGate{entries: make(map[string]*keyedEntry)}
}

func (g *KeyedGate) Acquire(ctx context.Context, key string) (func(), error) {
	g.mu.Lock()
	e, ok := g.entries[key]
	if !ok {
		e = &keyedEntry{ch: make(chan struct{}, 1)}
		g.entries[key] = e
	}
	e.refs++
	g.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		g.unref(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			g.unref(key, e)
		})
	}, nil
}

func (g *KeyedGate) unref(key string, e *keyedEntry) {
	g.mu.Lock()
	defer g.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(g.entries, key)
	}
}

// Len reports how many keys are currently held or awaited
func (g *KeyedGate) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}
