package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings holds persistent CLI defaults loaded from a config file.
type Settings struct {
	Workers  int    `yaml:"workers"`
	WorkDir  string `yaml:"work_dir"`
	Python   string `yaml:"python"`   // base interpreter used to create environments
	Git      string `yaml:"git"`      // git client
	EnvDir   string `yaml:"env_dir"`  // environment directory inside each repository
	Manifest string `yaml:"manifest"` // dependency manifest filename
	DataDir  string `yaml:"data_dir"`
	Marker   string `yaml:"marker"`

	EntryPoints     []string `yaml:"entry_points,omitempty"`
	DefaultPackages []string `yaml:"default_packages,omitempty"`

	// nil when absent; an explicit 0 disables the limit
	ExecTimeout    *time.Duration `yaml:"exec_timeout"`
	IdleTimeout    *time.Duration `yaml:"idle_timeout"`
	InstallTimeout *time.Duration `yaml:"install_timeout"`

	ArtifactsDir string `yaml:"artifacts_dir"`
	CompressLogs bool   `yaml:"compress_logs"`
	Report       string `yaml:"report"` // JSON run report path

	Repositories []string `yaml:"repositories,omitempty"`

	// Extra environment for installer and program; values may be "env:VAR_NAME"
	Env map[string]string `yaml:"env,omitempty"`

	GitHub *GitHubConfig `yaml:"github,omitempty"`
}

// GitHubConfig configures organization discovery.
type GitHubConfig struct {
	Org          string `yaml:"org"`
	IncludeForks bool   `yaml:"include_forks"`
	MaxRepos     int    `yaml:"max_repos"`
	Token        string `yaml:"token,omitempty"` // literal or "env:VAR_NAME"
}

// LoadSettings reads a YAML config file into Settings.
// If the file does not exist, it returns zero-value Settings and nil error.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if s.Workers < 0 {
		return nil, fmt.Errorf("parse config %s: workers must not be negative", path)
	}

	return &s, nil
}
