package config

import (
	"fmt"
	"strings"
)

// Sources declares where new AppImage releases are discovered. Each section
// is one configuration shape; the shapes are resolved at load time instead of
// probing optional keys at runtime.
type Sources struct {
	GitHub []GitHubSource `toml:"github"`
	Direct []DirectSource `toml:"direct"`
}

// GitHubSource monitors the latest release of one GitHub repository for
// AppImage assets.
type GitHubSource struct {
	Repo     string `toml:"repo"`
	Category string `toml:"category"`
}

// DirectSource monitors a JSON API endpoint that reports the latest release.
// Exactly one of the two shapes applies:
//
//   - static: Architectures lists the supported architectures and APIURL is
//     queried as-is (single-architecture apps), or APIURLTemplate expands
//     {arch} per architecture.
//   - detect: DetectArchitectures is true and every canonical architecture's
//     template expansion is probed, keeping the ones that respond.
type DirectSource struct {
	Name                string   `toml:"name"`
	Description         string   `toml:"description"`
	Website             string   `toml:"website"`
	Category            string   `toml:"category"`
	IconURL             string   `toml:"icon_url"`
	APIURL              string   `toml:"api_url"`
	APIURLTemplate      string   `toml:"api_url_template"`
	Architectures       []string `toml:"architectures"`
	DetectArchitectures bool     `toml:"detect_architectures"`
}

// Kind names the resolved configuration shape of a direct source.
type Kind int

const (
	KindStaticURL Kind = iota
	KindTemplate
	KindAutoDetect
)

// ResolveKind classifies the source into exactly one shape, rejecting
// ambiguous declarations.
func (s DirectSource) ResolveKind() (Kind, error) {
	hasURL := strings.TrimSpace(s.APIURL) != ""
	hasTemplate := strings.TrimSpace(s.APIURLTemplate) != ""
	switch {
	case hasURL && hasTemplate:
		return 0, fmt.Errorf("source %q: api_url and api_url_template are mutually exclusive", s.Name)
	case s.DetectArchitectures && !hasTemplate:
		return 0, fmt.Errorf("source %q: detect_architectures requires api_url_template", s.Name)
	case s.DetectArchitectures:
		return KindAutoDetect, nil
	case hasTemplate:
		return KindTemplate, nil
	case hasURL:
		return KindStaticURL, nil
	default:
		return 0, fmt.Errorf("source %q: api_url or api_url_template is required", s.Name)
	}
}

// ExpandTemplate substitutes the architecture token into the URL template.
func (s DirectSource) ExpandTemplate(architecture string) string {
	return strings.ReplaceAll(s.APIURLTemplate, "{arch}", architecture)
}
