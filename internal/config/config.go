// Package config loads and saves the SAFER configuration and resolves the data root layout.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// CurrentVersion is written into new config files.
const CurrentVersion = "1"

// Defaults.
const (
	DefaultWipLimit       = 3
	DefaultTimeBoxMinutes = 90
	DefaultCommitPrefix   = "[SAFER]"
	DefaultBranch         = "main"
)

// EnvPrefix is the prefix of environment overrides, e.g. SAFER_WIPLIMIT.
const EnvPrefix = "SAFER"

// Config represents the SAFER configuration
type Config struct {
	Version        string       `json:"version" mapstructure:"version"`
	User           User         `json:"user" mapstructure:"user"`
	WipLimit       int          `json:"wipLimit" mapstructure:"wipLimit"`
	TimeBoxMinutes int          `json:"timeBoxMinutes" mapstructure:"timeBoxMinutes"`
	Git            Git          `json:"git" mapstructure:"git"`
	Integrations   Integrations `json:"integrations" mapstructure:"integrations"`
}

// User is the identity used for commit authorship.
type User struct {
	Name  string `json:"name" mapstructure:"name"`
	Email string `json:"email" mapstructure:"email"`
}

// Git controls auto-commit and remote sync of the data directory.
type Git struct {
	AutoCommit   bool   `json:"autoCommit" mapstructure:"autoCommit"`
	CommitPrefix string `json:"commitPrefix" mapstructure:"commitPrefix"`
	SyncEnabled  bool   `json:"syncEnabled" mapstructure:"syncEnabled"`
	RemoteURL    string `json:"remoteURL" mapstructure:"remoteURL"`
	Branch       string `json:"branch" mapstructure:"branch"`
}

// Integrations holds the settings of each import source.
type Integrations struct {
	GitHub GitHub `json:"github" mapstructure:"github"`
}

// GitHub configures the GitHub import source.
type GitHub struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Owner    string `json:"owner" mapstructure:"owner"`
	Repo     string `json:"repo" mapstructure:"repo"`
	Token    string `json:"token" mapstructure:"token"`
	Assignee string `json:"assignee" mapstructure:"assignee"`
	APIURL   string `json:"apiURL" mapstructure:"apiURL"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Version:        CurrentVersion,
		WipLimit:       DefaultWipLimit,
		TimeBoxMinutes: DefaultTimeBoxMinutes,
		Git: Git{
			AutoCommit:   true,
			CommitPrefix: DefaultCommitPrefix,
			Branch:       DefaultBranch,
		},
	}
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("version", d.Version)
	v.SetDefault("user.name", "")
	v.SetDefault("user.email", "")
	v.SetDefault("wipLimit", d.WipLimit)
	v.SetDefault("timeBoxMinutes", d.TimeBoxMinutes)
	v.SetDefault("git.autoCommit", d.Git.AutoCommit)
	v.SetDefault("git.commitPrefix", d.Git.CommitPrefix)
	v.SetDefault("git.syncEnabled", d.Git.SyncEnabled)
	v.SetDefault("git.remoteURL", "")
	v.SetDefault("git.branch", d.Git.Branch)
	v.SetDefault("integrations.github.enabled", false)
	v.SetDefault("integrations.github.owner", "")
	v.SetDefault("integrations.github.repo", "")
	v.SetDefault("integrations.github.token", "")
	v.SetDefault("integrations.github.assignee", "")
	v.SetDefault("integrations.github.apiURL", "")
}

func newViper(path string, withEnv bool) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)
	if withEnv {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config: %w", err)
	}
	return v, nil
}

// Load reads config.json at path, applying defaults and SAFER_* environment
// overrides. A missing file yields the defaults. GITHUB_TOKEN is used when no
// token is configured.
func Load(path string) (*Config, error) {
	v, err := newViper(path, true)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Integrations.GitHub.Token == "" {
		cfg.Integrations.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads config.json at path without environment overrides, for
// editing and saving back.
func LoadFile(path string) (*Config, error) {
	v, err := newViper(path, false)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path as indented JSON.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.WipLimit < 1 {
		return fmt.Errorf("wipLimit must be at least 1, got %d", c.WipLimit)
	}
	if c.TimeBoxMinutes < 1 {
		return fmt.Errorf("timeBoxMinutes must be at least 1, got %d", c.TimeBoxMinutes)
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	out := *c
	if out.Integrations.GitHub.Token != "" {
		out.Integrations.GitHub.Token = "********"
	}
	return &out
}
