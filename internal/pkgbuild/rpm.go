package pkgbuild

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sassoftware/go-rpmutils"

	"appbinhub/internal/arch"
	"appbinhub/internal/catalog"
	"appbinhub/internal/deps"
	"appbinhub/internal/logging"
	"appbinhub/internal/services"
)

// rpmArchitectures is the compatibility table for the RPM builder.
var rpmArchitectures = map[arch.Architecture]struct{}{
	arch.X8664:   {},
	arch.I386:    {},
	arch.ARMv7:   {},
	arch.AArch64: {},
}

// RPMBuilder packages an extracted tree as an RPM. It generates a spec file
// on the fly and passes --target explicitly so cross-architecture bundles do
// not inherit the host architecture.
type RPMBuilder struct {
	runner services.CommandRunner
	caps   deps.Capabilities
	opts   Options
	logger *slog.Logger

	// validate defaults to the in-process rpmutils header parse; tests
	// substitute it because a scripted runner cannot emit a real rpm.
	validate func(artifact string) error
}

func (b *RPMBuilder) Format() catalog.Format { return catalog.FormatRPM }

func (b *RPMBuilder) Build(ctx context.Context, in Input, outputDir string) (string, error) {
	if !b.caps.Has(deps.ToolRpmbuild) {
		return "", services.Wrap(services.ErrToolUnavailable, "synthesize", "rpm", "rpmbuild not installed", nil)
	}
	if _, ok := rpmArchitectures[in.Architecture]; !ok {
		return "", services.Wrap(services.ErrArchitecture, "synthesize", "rpm",
			fmt.Sprintf("no rpm vocabulary for %s", in.Architecture), nil)
	}

	topDir := filepath.Join(outputDir, "rpmbuild")
	if err := os.RemoveAll(topDir); err != nil {
		return "", services.Wrap(services.ErrBuild, "synthesize", "rpm", "reset build tree", err)
	}
	specsDir := filepath.Join(topDir, "SPECS")
	if err := os.MkdirAll(specsDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrBuild, "synthesize", "rpm", "create build tree", err)
	}

	specPath := filepath.Join(specsDir, SanitizeName(in.Name)+".spec")
	if err := os.WriteFile(specPath, []byte(rpmSpec(in)), 0o644); err != nil {
		return "", services.Wrap(services.ErrBuild, "synthesize", "rpm", "write spec file", err)
	}

	result, err := services.RunWithTimeout(ctx, b.runner, b.opts.BuildTimeout, outputDir,
		"rpmbuild", "-bb",
		"--target", in.Architecture.RPMName(),
		"--define", fmt.Sprintf("_topdir %s", topDir),
		"--define", "_binary_payload w6.gzdio",
		specPath)
	if err != nil {
		if services.IsTimeout(err) {
			return "", services.Wrap(services.ErrTimeout, "synthesize", "rpm", "rpmbuild did not finish", err)
		}
		return "", services.Wrap(services.ErrBuild, "synthesize", "rpm", result.FirstOutputLine(), err)
	}

	artifact, err := findRPM(filepath.Join(topDir, "RPMS"))
	if err != nil {
		return "", services.Wrap(services.ErrBuild, "synthesize", "rpm", "locate built package", err)
	}

	validate := b.validate
	if validate == nil {
		validate = validateRPM
	}
	if err := validate(artifact); err != nil {
		return "", err
	}
	if b.logger != nil {
		b.logger.Info("rpm package built", logging.String("artifact", filepath.Base(artifact)))
	}
	return artifact, nil
}

// findRPM walks the RPMS tree for the built package. rpmbuild nests output
// under an architecture-named subdirectory.
func findRPM(rpmsDir string) (string, error) {
	var found string
	err := filepath.WalkDir(rpmsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".rpm") {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", fmt.Errorf("no .rpm under %s", rpmsDir)
	}
	return found, nil
}

// validateRPM parses the RPM lead and header in-process.
func validateRPM(artifact string) error {
	f, err := os.Open(artifact)
	if err != nil {
		return services.Wrap(services.ErrValidation, "synthesize", "rpm", "open artifact", err)
	}
	defer f.Close()

	if _, err := rpmutils.ReadRpm(f); err != nil {
		return services.Wrap(services.ErrValidation, "synthesize", "rpm", "malformed rpm header", err)
	}
	return nil
}

func rpmSpec(in Input) string {
	name := SanitizeName(in.Name)
	description := in.Description
	if description == "" {
		description = in.Name
	}
	return fmt.Sprintf(`Name: %s
Version: %s
Release: 1
Summary: %s
License: See upstream project
AutoReqProv: no

%%description
%s

%%install
mkdir -p %%{buildroot}/opt/%s
cp -a %s/. %%{buildroot}/opt/%s/

%%files
/opt/%s
`, name, RPMVersion(in.Version), description, description, name, in.TreeRoot, name, name)
}
