package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnv overrides the default root directory.
const HomeEnv = "SAFER_HOME"

// Paths is the on-disk layout of one SAFER root. Components receive it at
// construction so tests can run against independent temporary roots.
type Paths struct {
	Root       string
	ConfigFile string
	DataDir    string
	ActiveDir  string
	ArchiveDir string
	ReviewsDir string
	ActivityDB string
	LockFile   string
}

// NewPaths derives the layout under root.
func NewPaths(root string) Paths {
	data := filepath.Join(root, "data")
	return Paths{
		Root:       root,
		ConfigFile: filepath.Join(root, "config.json"),
		DataDir:    data,
		ActiveDir:  filepath.Join(data, "active"),
		ArchiveDir: filepath.Join(data, "archive"),
		ReviewsDir: filepath.Join(data, "reviews"),
		ActivityDB: filepath.Join(root, "activity.db"),
		LockFile:   filepath.Join(data, ".safer.lock"),
	}
}

// ResolveRoot picks the root from the flag value, then SAFER_HOME, then ~/.safer.
func ResolveRoot(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(HomeEnv); env != "" {
		return filepath.Abs(env)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".safer"), nil
}
