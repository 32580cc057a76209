package pkgbuild

import (
	"context"
	"log/slog"
	"time"

	"appbinhub/internal/arch"
	"appbinhub/internal/catalog"
	"appbinhub/internal/deps"
	"appbinhub/internal/logging"
	"appbinhub/internal/services"
)

// Input describes one synthesis request. TreeRoot is the extracted AppImage
// filesystem; the builders never modify it.
type Input struct {
	Name         string
	Version      string
	Description  string
	Architecture arch.Architecture
	TreeRoot     string
}

// Builder produces one package format from an extracted tree. Build returns
// the artifact path inside outputDir; errors carry the sentinel markers from
// the services package so the orchestrator can classify them per format.
type Builder interface {
	Format() catalog.Format
	Build(ctx context.Context, in Input, outputDir string) (string, error)
}

// Options carries the subprocess deadlines shared by all builders.
type Options struct {
	BuildTimeout    time.Duration
	ValidateTimeout time.Duration
}

// NewBuilders returns every builder in attempt order. The tarball builder is
// last and succeeds without any external tooling.
func NewBuilders(runner services.CommandRunner, caps deps.Capabilities, opts Options, logger *slog.Logger) []Builder {
	if runner == nil {
		runner = services.ExecRunner{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return []Builder{
		&DebBuilder{runner: runner, caps: caps, opts: opts, logger: logging.NewComponentLogger(logger, "deb-builder")},
		&RPMBuilder{runner: runner, caps: caps, opts: opts, logger: logging.NewComponentLogger(logger, "rpm-builder")},
		&TarballBuilder{logger: logging.NewComponentLogger(logger, "tarball-builder")},
	}
}
