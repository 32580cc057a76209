package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir    string `toml:"data_dir"`
	StoreDir   string `toml:"store_dir"`
	StagingDir string `toml:"staging_dir"`
	LogDir     string `toml:"log_dir"`
}

// Network contains HTTP client settings for discovery and downloads.
type Network struct {
	UserAgent       string `toml:"user_agent"`
	RequestTimeout  int    `toml:"request_timeout"`
	DownloadTimeout int    `toml:"download_timeout"`
	MaxRetries      int    `toml:"max_retries"`
	RetryDelay      int    `toml:"retry_delay"`
}

// Tools contains external tool binaries and invocation timeouts (seconds).
type Tools struct {
	ProbeTimeout    int `toml:"probe_timeout"`
	ExtractTimeout  int `toml:"extract_timeout"`
	BuildTimeout    int `toml:"build_timeout"`
	ValidateTimeout int `toml:"validate_timeout"`
}

// GitHub contains settings for release discovery via the GitHub API.
type GitHub struct {
	TokenEnv           string `toml:"token_env"`
	RateLimitThreshold int    `toml:"rate_limit_threshold"`
}

// Validation contains sanity bounds on downloaded bundles.
type Validation struct {
	MinBundleBytes int64 `toml:"min_bundle_bytes"`
	MaxBundleBytes int64 `toml:"max_bundle_bytes"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for appbinhub.
//
// Sections by subsystem:
//   - Paths: catalog data dir, package store, staging, logs
//   - Network: HTTP timeouts, retry counts, user agent
//   - Tools: external tool timeouts
//   - GitHub: API token resolution and rate-limit floor
//   - Validation: bundle size bounds
//   - Sources: monitored GitHub repositories and direct API endpoints
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Network    Network    `toml:"network"`
	Tools      Tools      `toml:"tools"`
	GitHub     GitHub     `toml:"github"`
	Validation Validation `toml:"validation"`
	Sources    Sources    `toml:"sources"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/appbinhub/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a file was actually found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("appbinhub.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// CatalogPath returns the location of the applications.json document.
func (c *Config) CatalogPath() string {
	return filepath.Join(c.Paths.DataDir, "applications.json")
}

// LockPath returns the flock file guarding single-writer catalog access.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "appbinhub.lock")
}

// GitHubToken resolves the configured token environment variable.
func (c *Config) GitHubToken() string {
	return strings.TrimSpace(os.Getenv(c.GitHub.TokenEnv))
}

// EnsureDirectories creates required directories for a run.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.StoreDir, c.Paths.StagingDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
