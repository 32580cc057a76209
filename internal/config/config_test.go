package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"appbinhub/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "appbinhub", "data")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.CatalogPath() != filepath.Join(wantData, "applications.json") {
		t.Fatalf("unexpected catalog path: %q", cfg.CatalogPath())
	}
	if cfg.Network.MaxRetries != 3 {
		t.Fatalf("unexpected retry default: %d", cfg.Network.MaxRetries)
	}
	if cfg.Tools.BuildTimeout != 300 {
		t.Fatalf("unexpected build timeout default: %d", cfg.Tools.BuildTimeout)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected log format default: %q", cfg.Logging.Format)
	}
	if cfg.GitHub.TokenEnv != "GITHUB_TOKEN" {
		t.Fatalf("unexpected token env default: %q", cfg.GitHub.TokenEnv)
	}
}

func TestLoadParsesSourcesAndOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
data_dir = "` + dir + `/data"

[logging]
format = "json"
level = "debug"

[[sources.github]]
repo = "AppImageCommunity/pkg2appimage"
category = "utilities"

[[sources.direct]]
name = "Example"
api_url_template = "https://example.com/api/{arch}"
detect_architectures = true
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging settings: %+v", cfg.Logging)
	}
	if len(cfg.Sources.GitHub) != 1 || cfg.Sources.GitHub[0].Repo != "AppImageCommunity/pkg2appimage" {
		t.Fatalf("unexpected github sources: %+v", cfg.Sources.GitHub)
	}
	if len(cfg.Sources.Direct) != 1 {
		t.Fatalf("unexpected direct sources: %+v", cfg.Sources.Direct)
	}
	kind, err := cfg.Sources.Direct[0].ResolveKind()
	if err != nil {
		t.Fatalf("ResolveKind returned error: %v", err)
	}
	if kind != config.KindAutoDetect {
		t.Fatalf("unexpected kind: %v", kind)
	}
}

func TestLoadRejectsAmbiguousDirectSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[[sources.direct]]
name = "Broken"
api_url = "https://example.com/api"
api_url_template = "https://example.com/api/{arch}"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for ambiguous source")
	}
}

func TestLoadRejectsBadLogFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for log format")
	}
}

func TestExpandTemplate(t *testing.T) {
	src := config.DirectSource{APIURLTemplate: "https://example.com/{arch}/latest"}
	if got := src.ExpandTemplate("aarch64"); got != "https://example.com/aarch64/latest" {
		t.Fatalf("unexpected expansion: %q", got)
	}
}
