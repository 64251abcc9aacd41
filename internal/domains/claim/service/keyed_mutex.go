package service

import (
	"context"
	"sync"
	"time"

	"studentdeals-backend/internal/domains/claim/model"
)

type lockState struct {
	sem  chan struct{}
	refs int
}

// keyedMutex serializes work per string key with a bounded wait. Lock
// states are reference counted and dropped once nobody holds or waits
// on a key, so the map does not grow with the keyspace.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockState
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*lockState)}
}

// Acquire blocks until the key's lock is free, the wait elapses, or ctx
// is cancelled. A wait that elapses returns model.ErrClaimTimeout.
func (k *keyedMutex) Acquire(ctx context.Context, key string, wait time.Duration) error {
	k.mu.Lock()
	state, ok := k.locks[key]
	if !ok {
		state = &lockState{sem: make(chan struct{}, 1)}
		k.locks[key] = state
	}
	state.refs++
	k.mu.Unlock()

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case state.sem <- struct{}{}:
		return nil
	case <-timer.C:
		k.drop(key)
		return model.ErrClaimTimeout
	case <-ctx.Done():
		k.drop(key)
		return ctx.Err()
	}
}

// Release frees the key's lock. The caller must hold it.
func (k *keyedMutex) Release(key string) {
	k.mu.Lock()
	state, ok := k.locks[key]
	k.mu.Unlock()
	if !ok {
		return
	}
	<-state.sem
	k.drop(key)
}

func (k *keyedMutex) drop(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	state, ok := k.locks[key]
	if !ok {
		return
	}
	state.refs--
	if state.refs <= 0 {
		delete(k.locks, key)
	}
}
