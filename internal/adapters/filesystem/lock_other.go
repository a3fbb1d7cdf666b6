//go:build !unix

package filesystem

import "os"

// flockExclusiveBlocking is a no-op where flock is unavailable; the in-process mutex still applies.
func flockExclusiveBlocking(f *os.File) error {
	return nil
}

func flockUnlock(f *os.File) error {
	return nil
}
