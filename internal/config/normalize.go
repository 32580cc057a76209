package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeNetwork()
	c.normalizeTools()
	c.normalizeGitHub()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.StoreDir, err = expandPath(c.Paths.StoreDir); err != nil {
		return fmt.Errorf("paths.store_dir: %w", err)
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeNetwork() {
	c.Network.UserAgent = strings.TrimSpace(c.Network.UserAgent)
	if c.Network.UserAgent == "" {
		c.Network.UserAgent = defaultUserAgent
	}
	if c.Network.RequestTimeout <= 0 {
		c.Network.RequestTimeout = defaultRequestTimeout
	}
	if c.Network.DownloadTimeout <= 0 {
		c.Network.DownloadTimeout = defaultDownloadTimeout
	}
	if c.Network.MaxRetries < 0 {
		c.Network.MaxRetries = defaultMaxRetries
	}
	if c.Network.RetryDelay <= 0 {
		c.Network.RetryDelay = defaultRetryDelay
	}
}

func (c *Config) normalizeTools() {
	if c.Tools.ProbeTimeout <= 0 {
		c.Tools.ProbeTimeout = defaultProbeTimeout
	}
	if c.Tools.ExtractTimeout <= 0 {
		c.Tools.ExtractTimeout = defaultExtractTimeout
	}
	if c.Tools.BuildTimeout <= 0 {
		c.Tools.BuildTimeout = defaultBuildTimeout
	}
	if c.Tools.ValidateTimeout <= 0 {
		c.Tools.ValidateTimeout = defaultValidateTimeout
	}
}

func (c *Config) normalizeGitHub() {
	c.GitHub.TokenEnv = strings.TrimSpace(c.GitHub.TokenEnv)
	if c.GitHub.TokenEnv == "" {
		c.GitHub.TokenEnv = defaultTokenEnv
	}
	if c.GitHub.RateLimitThreshold <= 0 {
		c.GitHub.RateLimitThreshold = defaultRateLimitThreshold
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
