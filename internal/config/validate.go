package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for inconsistencies a run cannot recover
// from. It is called by Load after normalization.
func (c *Config) Validate() error {
	var problems []string

	if c.Paths.DataDir == "" {
		problems = append(problems, "paths.data_dir is required")
	}
	if c.Paths.StoreDir == "" {
		problems = append(problems, "paths.store_dir is required")
	}
	if c.Paths.StagingDir == "" {
		problems = append(problems, "paths.staging_dir is required")
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not one of console, json", c.Logging.Format))
	}

	if c.Validation.MinBundleBytes < 0 {
		problems = append(problems, "validation.min_bundle_bytes must not be negative")
	}
	if c.Validation.MaxBundleBytes > 0 && c.Validation.MaxBundleBytes < c.Validation.MinBundleBytes {
		problems = append(problems, "validation.max_bundle_bytes must exceed min_bundle_bytes")
	}

	for i, src := range c.Sources.GitHub {
		repo := strings.TrimSpace(src.Repo)
		if repo == "" {
			problems = append(problems, fmt.Sprintf("sources.github[%d]: repo is required", i))
			continue
		}
		if strings.Count(repo, "/") != 1 {
			problems = append(problems, fmt.Sprintf("sources.github[%d]: repo %q must be owner/name", i, repo))
		}
	}

	for i, src := range c.Sources.Direct {
		if strings.TrimSpace(src.Name) == "" {
			problems = append(problems, fmt.Sprintf("sources.direct[%d]: name is required", i))
		}
		if _, err := src.ResolveKind(); err != nil {
			problems = append(problems, err.Error())
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid configuration: " + strings.Join(problems, "; "))
}
