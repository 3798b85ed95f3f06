package executor

import (
	"context"
	"strconv"
	"sync"

	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// SingletonCache holds singleton values for the lifetime of a container chain.
// Entries are keyed by binding id. Concurrent constructions of the same binding
// share one call.
type SingletonCache struct {
	mu     sync.RWMutex
	values map[uint64]any
	group  singleflight.Group
}

// NewSingletonCache creates an empty cache.
func NewSingletonCache() *SingletonCache {
	return &SingletonCache{values: make(map[uint64]any)}
}

// Get returns the cached value of a binding.
func (c *SingletonCache) Get(id uint64) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[id]
	return v, ok
}

// GetOrCreate returns the cached value of a binding, calling create once if it is missing.
// Failed creations are not cached. create receives a context marking the binding
// as under construction; a request for the same binding made with that context
// fails with ErrRecursiveResolution instead of waiting on itself. Waiting callers
// give up when ctx is done.
func (c *SingletonCache) GetOrCreate(ctx context.Context, id uint64, create func(context.Context) (any, error)) (any, error) {
	if v, ok := c.Get(id); ok {
		return v, nil
	}
	if constructing(ctx, id) {
		return nil, zerr.With(
			zerr.Wrap(domain.ErrRecursiveResolution, "singleton requested during its own construction"),
			"binding", id,
		)
	}

	ch := c.group.DoChan(strconv.FormatUint(id, 10), func() (any, error) {
		if v, ok := c.Get(id); ok {
			return v, nil
		}
		v, err := create(withConstructing(ctx, id))
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.values[id] = v
		c.mu.Unlock()
		return v, nil
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, zerr.Wrap(ctx.Err(), "gave up waiting for singleton")
	}
}

type constructingKey struct{}

// inFlight is the chain of singletons under construction for one call stack.
type inFlight struct {
	id   uint64
	next *inFlight
}

func withConstructing(ctx context.Context, id uint64) context.Context {
	next, _ := ctx.Value(constructingKey{}).(*inFlight)
	return context.WithValue(ctx, constructingKey{}, &inFlight{id: id, next: next})
}

func constructing(ctx context.Context, id uint64) bool {
	for f, _ := ctx.Value(constructingKey{}).(*inFlight); f != nil; f = f.next {
		if f.id == id {
			return true
		}
	}
	return false
}

// Purge drops the values of the given bindings.
func (c *SingletonCache) Purge(ids ...uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.values, id)
	}
}

// Len returns the number of cached values.
func (c *SingletonCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}
