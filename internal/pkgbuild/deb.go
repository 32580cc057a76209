package pkgbuild

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"appbinhub/internal/arch"
	"appbinhub/internal/catalog"
	"appbinhub/internal/deps"
	"appbinhub/internal/fileutil"
	"appbinhub/internal/logging"
	"appbinhub/internal/services"
)

// debArchitectures is the compatibility table for the Debian builder. An
// architecture missing from this set is skipped, not failed.
var debArchitectures = map[arch.Architecture]struct{}{
	arch.X8664:   {},
	arch.I386:    {},
	arch.ARMv7:   {},
	arch.AArch64: {},
}

// DebBuilder packages an extracted tree as a Debian package with dpkg-deb.
// The payload lands under /opt/<name> to stay clear of distribution paths.
type DebBuilder struct {
	runner services.CommandRunner
	caps   deps.Capabilities
	opts   Options
	logger *slog.Logger
}

func (b *DebBuilder) Format() catalog.Format { return catalog.FormatDeb }

func (b *DebBuilder) Build(ctx context.Context, in Input, outputDir string) (string, error) {
	if !b.caps.Has(deps.ToolDpkgDeb) {
		return "", services.Wrap(services.ErrToolUnavailable, "synthesize", "deb", "dpkg-deb not installed", nil)
	}
	if _, ok := debArchitectures[in.Architecture]; !ok {
		return "", services.Wrap(services.ErrArchitecture, "synthesize", "deb",
			fmt.Sprintf("no dpkg vocabulary for %s", in.Architecture), nil)
	}

	name := SanitizeName(in.Name)
	stageDir := filepath.Join(outputDir, "deb-stage", name)
	if err := os.RemoveAll(stageDir); err != nil {
		return "", services.Wrap(services.ErrBuild, "synthesize", "deb", "reset stage directory", err)
	}
	if err := os.MkdirAll(filepath.Join(stageDir, "DEBIAN"), 0o755); err != nil {
		return "", services.Wrap(services.ErrBuild, "synthesize", "deb", "create stage directory", err)
	}

	control := debControl(in)
	if err := os.WriteFile(filepath.Join(stageDir, "DEBIAN", "control"), []byte(control), 0o644); err != nil {
		return "", services.Wrap(services.ErrBuild, "synthesize", "deb", "write control file", err)
	}

	payload := filepath.Join(stageDir, "opt", name)
	if err := fileutil.CopyTree(in.TreeRoot, payload); err != nil {
		return "", services.Wrap(services.ErrBuild, "synthesize", "deb", "copy payload tree", err)
	}

	artifact := filepath.Join(outputDir, DebFileName(in.Name, in.Version, in.Architecture))
	result, err := services.RunWithTimeout(ctx, b.runner, b.opts.BuildTimeout, outputDir,
		"dpkg-deb", "--build", "--root-owner-group", stageDir, artifact)
	if err != nil {
		if services.IsTimeout(err) {
			return "", services.Wrap(services.ErrTimeout, "synthesize", "deb", "dpkg-deb did not finish", err)
		}
		return "", services.Wrap(services.ErrBuild, "synthesize", "deb", result.FirstOutputLine(), err)
	}
	if _, err := os.Stat(artifact); err != nil {
		return "", services.Wrap(services.ErrBuild, "synthesize", "deb", "dpkg-deb produced no artifact", err)
	}

	if err := b.validate(ctx, artifact); err != nil {
		return "", err
	}
	if b.logger != nil {
		b.logger.Info("deb package built", logging.String("artifact", filepath.Base(artifact)))
	}
	return artifact, nil
}

// validate inspects the produced package with dpkg-deb --info. The tool is
// already known present since the build just used it.
func (b *DebBuilder) validate(ctx context.Context, artifact string) error {
	result, err := services.RunWithTimeout(ctx, b.runner, b.opts.ValidateTimeout, "",
		"dpkg-deb", "--info", artifact)
	if err != nil {
		return services.Wrap(services.ErrValidation, "synthesize", "deb", result.FirstOutputLine(), err)
	}
	return nil
}

func debControl(in Input) string {
	description := in.Description
	if description == "" {
		description = in.Name
	}
	return fmt.Sprintf(`Package: %s
Version: %s
Architecture: %s
Maintainer: AppBinHub <packages@appbinhub.invalid>
Section: misc
Priority: optional
Description: %s
 Repackaged from the upstream AppImage release.
`, SanitizeName(in.Name), SanitizeVersion(in.Version), in.Architecture.DebianName(), description)
}
