// Package store persists built package artifacts into the web-servable
// catalog tree and reports the metadata the catalog records for each one.
package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"appbinhub/internal/arch"
	"appbinhub/internal/catalog"
	"appbinhub/internal/fileutil"
	"appbinhub/internal/logging"
)

// Store writes artifacts under a published root, with a mirror copy in the
// staging root for run traceability.
type Store struct {
	root        string
	stagingRoot string
	logger      *slog.Logger
	now         func() time.Time
}

// New builds a store rooted at root. stagingRoot may be empty to disable
// mirroring.
func New(root, stagingRoot string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{
		root:        root,
		stagingRoot: stagingRoot,
		logger:      logging.NewComponentLogger(logger, "store"),
		now:         time.Now,
	}
}

// Store copies the artifact into {root}/{appID}/{version}/ and returns the
// catalog metadata for it. Storing the same artifact twice overwrites the
// previous copy at the same path, so reruns never accumulate stale files.
func (s *Store) Store(artifactPath, appID, version string, architecture arch.Architecture, format catalog.Format) (catalog.PackageArtifact, error) {
	fileName := filepath.Base(artifactPath)
	destDir := filepath.Join(s.root, appID, version)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return catalog.PackageArtifact{}, fmt.Errorf("create store directory: %w", err)
	}

	dest := filepath.Join(destDir, fileName)
	if err := fileutil.CopyFileVerified(artifactPath, dest); err != nil {
		return catalog.PackageArtifact{}, fmt.Errorf("store %s artifact: %w", format, err)
	}

	info, err := os.Stat(dest)
	if err != nil {
		return catalog.PackageArtifact{}, fmt.Errorf("stat stored artifact: %w", err)
	}
	digest, err := fileutil.SHA256File(dest)
	if err != nil {
		return catalog.PackageArtifact{}, fmt.Errorf("checksum stored artifact: %w", err)
	}

	if s.stagingRoot != "" {
		mirror := filepath.Join(s.stagingRoot, appID, version, fileName)
		if err := fileutil.CopyFileMode(dest, mirror, 0o644); err != nil {
			// The published copy is authoritative; a mirror failure is
			// worth a warning, not a failed conversion.
			s.logger.Warn("staging mirror failed",
				logging.String("artifact", fileName),
				logging.Error(err))
		}
	}

	s.logger.Info("artifact stored",
		logging.String(logging.FieldAppID, appID),
		logging.String("format", string(format)),
		logging.String("artifact", fileName),
		logging.Int64("bytes", info.Size()))

	return catalog.PackageArtifact{
		URL:          fmt.Sprintf("./converted_packages/%s/%s/%s", appID, version, fileName),
		Size:         fileutil.FormatSize(info.Size()),
		Checksum:     "sha256:" + digest,
		Architecture: architecture,
		Status:       catalog.ArtifactAvailable,
		CreatedAt:    s.now().UTC(),
	}, nil
}
