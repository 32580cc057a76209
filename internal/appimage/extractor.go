package appimage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"appbinhub/internal/arch"
	"appbinhub/internal/deps"
	"appbinhub/internal/logging"
	"appbinhub/internal/services"
)

// extractedDirName is the directory --appimage-extract produces and the name
// the unsquashfs strategy mirrors so callers see one layout.
const extractedDirName = "squashfs-root"

// Extractor unpacks AppImage containers into a filesystem tree. The zero
// value is not usable; construct with NewExtractor.
type Extractor struct {
	runner  services.CommandRunner
	caps    deps.Capabilities
	host    arch.Architecture
	timeout time.Duration
	logger  *slog.Logger
}

// NewExtractor builds an extractor bound to the probed tool capabilities.
func NewExtractor(runner services.CommandRunner, caps deps.Capabilities, timeout time.Duration, logger *slog.Logger) *Extractor {
	if runner == nil {
		runner = services.ExecRunner{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Extractor{
		runner:  runner,
		caps:    caps,
		host:    arch.Host(),
		timeout: timeout,
		logger:  logging.NewComponentLogger(logger, "extractor"),
	}
}

type strategy struct {
	name string
	run  func(ctx context.Context, bundlePath, workDir string) error
}

// Extract unpacks bundlePath into workDir and returns the root of the
// extracted tree. Strategies are tried in order; a bundle whose architecture
// differs from the host is never executed, so only the unsquashfs strategy
// applies to it.
func (e *Extractor) Extract(ctx context.Context, bundlePath, workDir string, target arch.Architecture) (string, error) {
	strategies := e.strategiesFor(target)
	if len(strategies) == 0 {
		return "", services.Wrap(services.ErrToolUnavailable, "extract", "plan",
			fmt.Sprintf("no extraction strategy for %s bundle on %s host", target, e.host), nil)
	}

	var lastErr error
	for _, s := range strategies {
		root := filepath.Join(workDir, extractedDirName)
		if err := os.RemoveAll(root); err != nil {
			return "", services.Wrap(services.ErrExtraction, "extract", s.name, "clean work directory", err)
		}
		err := s.run(ctx, bundlePath, workDir)
		if err == nil {
			if _, statErr := os.Stat(root); statErr != nil {
				err = services.Wrap(services.ErrExtraction, "extract", s.name, "tool reported success but produced no tree", statErr)
			} else {
				e.logger.Info("bundle extracted",
					logging.String("strategy", s.name),
					logging.String("architecture", string(target)))
				return root, nil
			}
		}
		e.logger.Warn("extraction strategy failed",
			logging.String("strategy", s.name),
			logging.Error(err))
		lastErr = err
	}
	return "", lastErr
}

func (e *Extractor) strategiesFor(target arch.Architecture) []strategy {
	var out []strategy
	if target == e.host {
		out = append(out, strategy{name: "self-extract", run: e.selfExtract})
	}
	if e.caps.Has(deps.ToolUnsquashfs) {
		out = append(out, strategy{name: "unsquashfs", run: e.unsquashfs})
	}
	return out
}

func (e *Extractor) selfExtract(ctx context.Context, bundlePath, workDir string) error {
	if err := os.Chmod(bundlePath, 0o755); err != nil {
		return services.Wrap(services.ErrExtraction, "extract", "self-extract", "mark bundle executable", err)
	}
	result, err := services.RunWithTimeout(ctx, e.runner, e.timeout, workDir, bundlePath, "--appimage-extract")
	if err != nil {
		if services.IsTimeout(err) {
			return services.Wrap(services.ErrTimeout, "extract", "self-extract", "bundle did not finish extracting", err)
		}
		return services.Wrap(services.ErrExtraction, "extract", "self-extract", result.FirstOutputLine(), err)
	}
	return nil
}

func (e *Extractor) unsquashfs(ctx context.Context, bundlePath, workDir string) error {
	offset, found, err := FindSquashfsOffset(bundlePath)
	if err != nil {
		return services.Wrap(services.ErrExtraction, "extract", "offset-scan", "read bundle", err)
	}
	if !found {
		return services.Wrap(services.ErrExtraction, "extract", "offset-scan", "no squashfs signature in bundle", nil)
	}

	dest := filepath.Join(workDir, extractedDirName)
	result, err := services.RunWithTimeout(ctx, e.runner, e.timeout, workDir, "unsquashfs",
		"-o", fmt.Sprintf("%d", offset), "-d", dest, bundlePath)
	if err != nil {
		if services.IsTimeout(err) {
			return services.Wrap(services.ErrTimeout, "extract", "unsquashfs", "extraction did not finish", err)
		}
		return services.Wrap(services.ErrExtraction, "extract", "unsquashfs", result.FirstOutputLine(), err)
	}
	return nil
}
