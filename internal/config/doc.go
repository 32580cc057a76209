// Package config loads, normalizes, and validates appbinhub configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and resolves the GitHub token from the
// environment. Monitored sources are declared in typed sections: a GitHub
// repository source, a direct-API source with a static architecture list, or
// a direct-API source with a URL template per architecture. Each shape is
// resolved once at load time so the pipeline never probes optional keys.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
