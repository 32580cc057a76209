// Package convert drives the per-application conversion pipeline: download
// the bundle, extract it, synthesize each package format, and store what was
// built. One application's failure never aborts the batch; outcomes are
// written back into the catalog records and tallied for the run summary.
package convert

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"appbinhub/internal/appimage"
	"appbinhub/internal/arch"
	"appbinhub/internal/catalog"
	"appbinhub/internal/discovery"
	"appbinhub/internal/fileutil"
	"appbinhub/internal/logging"
	"appbinhub/internal/pkgbuild"
	"appbinhub/internal/services"
)

// downloader fetches a bundle into a directory and returns the local path.
type downloader interface {
	Download(ctx context.Context, url, destDir string) (string, error)
}

// extractor unpacks a bundle into a working directory.
type extractor interface {
	Extract(ctx context.Context, bundlePath, workDir string, target arch.Architecture) (string, error)
}

// artifactStore persists a built artifact and reports its catalog metadata.
type artifactStore interface {
	Store(artifactPath, appID, version string, architecture arch.Architecture, format catalog.Format) (catalog.PackageArtifact, error)
}

// Tally is the run summary.
type Tally struct {
	Succeeded int
	Failed    int
}

// Manager runs the conversion state machine over pending catalog records.
type Manager struct {
	fetcher    downloader
	extractor  extractor
	builders   []pkgbuild.Builder
	store      artifactStore
	stagingDir string
	logger     *slog.Logger
	now        func() time.Time
}

// New wires a manager from its collaborators. stagingDir is the parent for
// per-application workspaces.
func New(fetcher downloader, ex extractor, builders []pkgbuild.Builder, st artifactStore, stagingDir string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		fetcher:    fetcher,
		extractor:  ex,
		builders:   builders,
		store:      st,
		stagingDir: stagingDir,
		logger:     logging.NewComponentLogger(logger, "converter"),
		now:        time.Now,
	}
}

// ConvertPending processes every pending record in the catalog sequentially.
// Each record ends the run as completed or failed; the batch always runs to
// the end.
func (m *Manager) ConvertPending(ctx context.Context, cat *catalog.Catalog) Tally {
	var tally Tally
	for _, idx := range cat.Pending() {
		record := &cat.Applications[idx]
		logger := m.logger.With(logging.String(logging.FieldAppID, record.ID))

		if err := m.convertOne(ctx, record); err != nil {
			record.ConversionStatus = catalog.StatusFailed
			tally.Failed++
			logger.Error("conversion failed", logging.Error(err))
		} else if record.HasAvailableArtifact() {
			record.ConversionStatus = catalog.StatusCompleted
			tally.Succeeded++
			logger.Info("conversion completed")
		} else {
			record.ConversionStatus = catalog.StatusFailed
			tally.Failed++
			logger.Error("conversion produced no artifacts")
		}
		record.LastUpdated = m.now().UTC()
	}

	m.logger.Info("run finished",
		logging.Int("succeeded", tally.Succeeded),
		logging.Int("failed", tally.Failed))
	return tally
}

// convertOne runs the download-extract-synthesize-store pipeline for a single
// record. A returned error means the pipeline stopped before any format could
// be attempted; per-format failures are recorded on the artifacts instead.
func (m *Manager) convertOne(ctx context.Context, record *catalog.ApplicationRecord) error {
	workspace := filepath.Join(m.stagingDir, "work-"+uuid.NewString())
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return services.Wrap(services.ErrBuild, "convert", "workspace", "create working directory", err)
	}
	defer func() {
		if err := os.RemoveAll(workspace); err != nil {
			m.logger.Warn("workspace cleanup failed",
				logging.String("path", workspace),
				logging.Error(err))
		}
	}()

	target := record.Architecture
	if target == "" {
		target = arch.DetectFromURL(record.AppImage.URL)
		record.Architecture = target
	}

	bundlePath, err := m.fetcher.Download(ctx, record.AppImage.URL, workspace)
	if err != nil {
		return err
	}

	digest, err := fileutil.SHA256File(bundlePath)
	if err != nil {
		return services.Wrap(services.ErrDownload, "convert", "checksum", "hash downloaded bundle", err)
	}
	record.AppImage.Checksum = "sha256:" + digest

	treeRoot, err := m.extractor.Extract(ctx, bundlePath, workspace, target)
	if err != nil {
		return err
	}

	m.refreshMetadata(record, treeRoot)

	in := pkgbuild.Input{
		Name:         record.Name,
		Version:      record.Version,
		Description:  record.Description,
		Architecture: target,
		TreeRoot:     treeRoot,
	}
	version := pkgbuild.SanitizeVersion(record.Version)

	for _, builder := range m.builders {
		format := builder.Format()
		artifactPath, buildErr := builder.Build(ctx, in, workspace)
		if buildErr != nil {
			record.SetArtifact(format, catalog.PackageArtifact{
				Status:       services.ArtifactStatus(buildErr),
				Architecture: target,
			})
			m.logger.Warn("format skipped or failed",
				logging.String(logging.FieldAppID, record.ID),
				logging.String("format", string(format)),
				logging.Error(buildErr))
			continue
		}

		meta, storeErr := m.store.Store(artifactPath, record.ID, version, target, format)
		if storeErr != nil {
			record.SetArtifact(format, catalog.PackageArtifact{
				Status:       catalog.ArtifactFailed,
				Architecture: target,
			})
			m.logger.Warn("artifact store failed",
				logging.String(logging.FieldAppID, record.ID),
				logging.String("format", string(format)),
				logging.Error(storeErr))
			continue
		}
		record.SetArtifact(format, meta)
	}
	return nil
}

// refreshMetadata reads the desktop entry out of the extracted tree. Missing
// or malformed metadata is not a conversion failure; the record keeps what
// discovery observed.
func (m *Manager) refreshMetadata(record *catalog.ApplicationRecord, treeRoot string) {
	entry, err := appimage.ReadMetadata(treeRoot)
	if err != nil {
		record.Metadata.ExtractionSkipped = true
		return
	}

	record.Metadata.Executable = entry.Exec
	record.Metadata.MimeTypes = entry.MimeTypes
	record.Metadata.ExtractionSkipped = false
	if entry.IconPath != "" {
		record.Metadata.Icon = filepath.Base(entry.IconPath)
	}
	if record.Description == "" {
		record.Description = entry.Comment
	}
	if len(entry.Categories) > 0 {
		record.Categories = discovery.MapDesktopCategories(entry.Categories)
	}
}
