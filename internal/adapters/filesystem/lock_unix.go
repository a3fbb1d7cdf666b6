//go:build unix

package filesystem

import (
	"os"

	"golang.org/x/sys/unix"
)

// flockExclusiveBlocking acquires an exclusive blocking lock on the file.
func flockExclusiveBlocking(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX)
}

// flockUnlock releases a lock on the file.
func flockUnlock(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
