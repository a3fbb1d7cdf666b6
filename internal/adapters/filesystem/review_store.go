package filesystem

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/example/safer/internal/ports/secondary"
)

// ReviewStore implements secondary.ReviewStore as <dir>/<weekId>.md files.
type ReviewStore struct {
	dir string
}

// NewReviewStore creates a review store rooted at dir.
func NewReviewStore(dir string) *ReviewStore {
	return &ReviewStore{dir: dir}
}

func (s *ReviewStore) path(weekID string) string {
	return filepath.Join(s.dir, weekID+".md")
}

// Read returns the stored review of weekID.
func (s *ReviewStore) Read(ctx context.Context, weekID string) (string, bool, error) {
	data, err := os.ReadFile(s.path(weekID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: read review %s: %v", secondary.ErrIO, weekID, err)
	}
	return string(data), true, nil
}

// Write replaces the review of weekID atomically.
func (s *ReviewStore) Write(ctx context.Context, weekID, content string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create reviews dir: %v", secondary.ErrIO, err)
	}
	if err := atomicWriteFile(s.path(weekID), []byte(content)); err != nil {
		return fmt.Errorf("%w: write review %s: %v", secondary.ErrIO, weekID, err)
	}
	return nil
}

// List returns stored week ids, newest first.
func (s *ReviewStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: list reviews: %v", secondary.ErrIO, err)
	}
	var weeks []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".md" {
			continue
		}
		weeks = append(weeks, strings.TrimSuffix(entry.Name(), ".md"))
	}
	// YYYY-W## ids sort lexically in time order.
	sort.Sort(sort.Reverse(sort.StringSlice(weeks)))
	return weeks, nil
}

func atomicWriteFile(path string, data []byte) error {
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return fmt.Errorf("generating random suffix: %w", err)
	}
	tmp := path + ".tmp." + hex.EncodeToString(randBytes)
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

var _ secondary.ReviewStore = (*ReviewStore)(nil)
