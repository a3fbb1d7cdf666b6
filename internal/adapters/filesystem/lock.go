package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/example/safer/internal/ports/secondary"
)

// rootMutexes holds one in-process mutex per lock path so that two
// repositories opened on the same data root in one process also exclude each other.
var (
	rootMutexesMu sync.Mutex
	rootMutexes   = map[string]*sync.Mutex{}
)

func rootMutex(path string) *sync.Mutex {
	rootMutexesMu.Lock()
	defer rootMutexesMu.Unlock()
	mu, ok := rootMutexes[path]
	if !ok {
		mu = &sync.Mutex{}
		rootMutexes[path] = mu
	}
	return mu
}

// RootLock serialises mutations of one data root across goroutines and processes.
type RootLock struct {
	path string
}

// NewRootLock creates a lock backed by the file at path.
func NewRootLock(path string) *RootLock {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return &RootLock{path: abs}
}

// Lock takes the in-process mutex, then an exclusive flock on the lock file.
func (l *RootLock) Lock(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mu := rootMutex(l.path)
	mu.Lock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		mu.Unlock()
		return nil, fmt.Errorf("%w: create lock dir: %v", secondary.ErrIO, err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		mu.Unlock()
		return nil, fmt.Errorf("%w: open lock file: %v", secondary.ErrIO, err)
	}
	if err := flockExclusiveBlocking(f); err != nil {
		f.Close()
		mu.Unlock()
		return nil, fmt.Errorf("%w: lock data root: %v", secondary.ErrIO, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			_ = flockUnlock(f)
			f.Close()
			mu.Unlock()
		})
	}, nil
}

var _ secondary.Locker = (*RootLock)(nil)
