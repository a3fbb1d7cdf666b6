package filesystem_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/safer/internal/adapters/filesystem"
)

func TestRootLock_SerialisesHolders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", ".safer.lock")
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		holders int
		maxSeen int
		mu      sync.Mutex
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Separate lock values on one path must still exclude each other.
			unlock, err := filesystem.NewRootLock(path).Lock(ctx)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			holders++
			if holders > maxSeen {
				maxSeen = holders
			}
			mu.Unlock()

			mu.Lock()
			holders--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}

func TestRootLock_UnlockIsIdempotent(t *testing.T) {
	lock := filesystem.NewRootLock(filepath.Join(t.TempDir(), ".safer.lock"))

	unlock, err := lock.Lock(context.Background())
	require.NoError(t, err)
	unlock()
	unlock()

	unlock, err = lock.Lock(context.Background())
	require.NoError(t, err)
	unlock()
}

func TestRootLock_CancelledContext(t *testing.T) {
	lock := filesystem.NewRootLock(filepath.Join(t.TempDir(), ".safer.lock"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := lock.Lock(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
