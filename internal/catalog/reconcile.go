package catalog

import (
	"log/slog"
	"time"

	"appbinhub/internal/logging"
)

// MergeResult summarises one reconciliation pass.
type MergeResult struct {
	Added     int
	Reset     int
	Unchanged int
}

// Reconciler merges freshly observed application records into a loaded
// catalog without losing in-flight conversion state.
type Reconciler struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewReconciler constructs a reconciler. A nil logger is replaced with a
// no-op one.
func NewReconciler(logger *slog.Logger) *Reconciler {
	return &Reconciler{
		logger: logging.NewComponentLogger(logger, "reconciler"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Merge applies incoming records to the catalog. For each record: a new id is
// appended as pending; a known id with a changed version has its conversion
// state discarded (artifacts are stale); a known id with the same version
// keeps its status and converted packages untouched, including last_updated,
// so unchanged releases cost nothing on re-runs. Catalog-wide metadata is
// refreshed on every merge even when no record changed.
func (r *Reconciler) Merge(cat *Catalog, incoming []ApplicationRecord) MergeResult {
	var result MergeResult

	for _, record := range incoming {
		existing := cat.Find(record.ID)
		if existing == nil {
			if record.ConvertedPackages == nil {
				record.ConvertedPackages = NewRecordPackages()
			}
			if record.ConversionStatus == "" {
				record.ConversionStatus = StatusPending
			}
			if record.LastUpdated.IsZero() {
				record.LastUpdated = r.now()
			}
			cat.Applications = append(cat.Applications, record)
			result.Added++
			r.logger.Info("added application",
				logging.String(logging.FieldAppID, record.ID),
				logging.String("version", record.Version),
			)
			continue
		}

		if existing.Version != record.Version {
			oldVersion := existing.Version
			r.updateObservedFields(existing, record)
			existing.ResetConversion()
			existing.LastUpdated = r.now()
			result.Reset++
			r.logger.Info("version changed, conversion state reset",
				logging.String(logging.FieldAppID, record.ID),
				logging.String("old_version", oldVersion),
				logging.String("new_version", record.Version),
			)
			continue
		}

		// Same version: preserve conversion state and entry timestamp.
		result.Unchanged++
	}

	cat.Metadata.LastUpdated = r.now()
	cat.Metadata.TotalApplications = len(cat.Applications)
	if cat.Metadata.SchemaVersion == "" {
		cat.Metadata.SchemaVersion = SchemaVersion
	}

	return result
}

// updateObservedFields refreshes everything discovery observed about the
// release while leaving conversion bookkeeping to the caller.
func (r *Reconciler) updateObservedFields(existing *ApplicationRecord, record ApplicationRecord) {
	existing.Name = record.Name
	existing.Description = record.Description
	existing.Version = record.Version
	existing.Architecture = record.Architecture
	existing.Categories = record.Categories
	existing.AppImage = record.AppImage
	existing.Metadata = record.Metadata
	existing.Source = record.Source
}
