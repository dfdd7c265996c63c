package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"wellbeing_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentLocks(t *testing.T) {
	ctx := context.Background()

	t.Run("acquire and release", func(t *testing.T) {
		locks := NewStudentLocks(time.Second)

		release, err := locks.Acquire(ctx, 575001)
		require.NoError(t, err)
		release()

		release, err = locks.Acquire(ctx, 575001)
		require.NoError(t, err)
		release()
	})

	t.Run("different students do not contend", func(t *testing.T) {
		locks := NewStudentLocks(50 * time.Millisecond)

		r1, err := locks.Acquire(ctx, 575001)
		require.NoError(t, err)
		defer r1()

		r2, err := locks.Acquire(ctx, 575002)
		require.NoError(t, err)
		defer r2()
	})

	t.Run("held lock times out with store busy", func(t *testing.T) {
		locks := NewStudentLocks(50 * time.Millisecond)

		release, err := locks.Acquire(ctx, 575001)
		require.NoError(t, err)
		defer release()

		_, err = locks.Acquire(ctx, 575001)
		require.Error(t, err)
		assert.ErrorIs(t, err, util.ErrStoreBusy)
	})

	t.Run("cancelled context stops waiting", func(t *testing.T) {
		locks := NewStudentLocks(10 * time.Second)

		release, err := locks.Acquire(ctx, 575001)
		require.NoError(t, err)
		defer release()

		cancelCtx, cancel := context.WithCancel(ctx)
		cancel()
		_, err = locks.Acquire(cancelCtx, 575001)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("idle entries are dropped", func(t *testing.T) {
		locks := NewStudentLocks(50 * time.Millisecond)

		release, err := locks.Acquire(ctx, 575001)
		require.NoError(t, err)

		locks.mu.Lock()
		held := len(locks.locks)
		locks.mu.Unlock()
		assert.Equal(t, 1, held)

		release()

		locks.mu.Lock()
		remaining := len(locks.locks)
		locks.mu.Unlock()
		assert.Zero(t, remaining)

		// A timed-out waiter must not leak its entry either.
		release, err = locks.Acquire(ctx, 575002)
		require.NoError(t, err)
		_, err = locks.Acquire(ctx, 575002)
		require.ErrorIs(t, err, util.ErrStoreBusy)
		release()

		locks.mu.Lock()
		remaining = len(locks.locks)
		locks.mu.Unlock()
		assert.Zero(t, remaining)
	})

	t.Run("waiters proceed one at a time", func(t *testing.T) {
		locks := NewStudentLocks(time.Second)

		var mu sync.Mutex
		active := 0
		maxActive := 0

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				release, err := locks.Acquire(ctx, 575001)
				if err != nil {
					return
				}
				defer release()

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
	})
}
