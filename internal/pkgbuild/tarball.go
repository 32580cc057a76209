package pkgbuild

import (
	"archive/tar"
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"appbinhub/internal/catalog"
	"appbinhub/internal/logging"
	"appbinhub/internal/services"
)

// TarballBuilder produces the universal gzip tarball. It has no external
// tool requirement and no architecture restriction, making it the format
// that always exists when conversion succeeds at all.
type TarballBuilder struct {
	logger *slog.Logger
}

func (b *TarballBuilder) Format() catalog.Format { return catalog.FormatTarball }

func (b *TarballBuilder) Build(ctx context.Context, in Input, outputDir string) (string, error) {
	artifact := filepath.Join(outputDir, TarballFileName(in.Name, in.Version, in.Architecture))

	if err := writeTarball(ctx, in.TreeRoot, artifact); err != nil {
		_ = os.Remove(artifact)
		if services.IsTimeout(err) {
			return "", services.Wrap(services.ErrTimeout, "synthesize", "tarball", "archiving interrupted", err)
		}
		return "", services.Wrap(services.ErrBuild, "synthesize", "tarball", "write archive", err)
	}

	if err := validateTarball(artifact); err != nil {
		_ = os.Remove(artifact)
		return "", err
	}
	if b.logger != nil {
		b.logger.Info("tarball built", logging.String("artifact", filepath.Base(artifact)))
	}
	return artifact, nil
}

func writeTarball(ctx context.Context, treeRoot, artifact string) error {
	out, err := os.Create(artifact)
	if err != nil {
		return err
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	err = filepath.WalkDir(treeRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		rel, err := filepath.Rel(treeRoot, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		link := ""
		if info.Mode()&os.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return err
			}
		}
		header, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		if d.IsDir() {
			header.Name += "/"
		}
		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		return err
	}
	if err := tw.Close(); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}
	return out.Close()
}

// validateTarball re-reads the produced archive end to end.
func validateTarball(artifact string) error {
	f, err := os.Open(artifact)
	if err != nil {
		return services.Wrap(services.ErrValidation, "synthesize", "tarball", "open artifact", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return services.Wrap(services.ErrValidation, "synthesize", "tarball", "malformed gzip stream", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		if _, err := tr.Next(); err != nil {
			if err == io.EOF {
				return nil
			}
			return services.Wrap(services.ErrValidation, "synthesize", "tarball", "malformed tar stream", err)
		}
	}
}
