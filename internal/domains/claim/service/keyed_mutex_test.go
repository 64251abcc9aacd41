package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studentdeals-backend/internal/domains/claim/model"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := newKeyedMutex()
	ctx := context.Background()

	var mu sync.Mutex
	var active, maxActive int

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, km.Acquire(ctx, "k", time.Second))
			defer km.Release("k")

			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxActive)
}

func TestKeyedMutexDifferentKeysDoNotBlock(t *testing.T) {
	km := newKeyedMutex()
	ctx := context.Background()

	require.NoError(t, km.Acquire(ctx, "a", time.Second))
	defer km.Release("a")

	// A different key must be acquirable immediately.
	require.NoError(t, km.Acquire(ctx, "b", 10*time.Millisecond))
	km.Release("b")
}

func TestKeyedMutexBoundedWait(t *testing.T) {
	km := newKeyedMutex()
	ctx := context.Background()

	require.NoError(t, km.Acquire(ctx, "k", time.Second))
	defer km.Release("k")

	err := km.Acquire(ctx, "k", 20*time.Millisecond)
	assert.ErrorIs(t, err, model.ErrClaimTimeout)
}

func TestKeyedMutexContextCancel(t *testing.T) {
	km := newKeyedMutex()

	require.NoError(t, km.Acquire(context.Background(), "k", time.Second))
	defer km.Release("k")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	err := km.Acquire(ctx, "k", time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKeyedMutexReleasedLockIsReusable(t *testing.T) {
	km := newKeyedMutex()
	ctx := context.Background()

	require.NoError(t, km.Acquire(ctx, "k", time.Second))
	km.Release("k")
	require.NoError(t, km.Acquire(ctx, "k", time.Second))
	km.Release("k")
}
