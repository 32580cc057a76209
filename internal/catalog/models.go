package catalog

import (
	"strings"
	"time"

	"appbinhub/internal/arch"
)

// SchemaVersion identifies the applications.json document layout.
const SchemaVersion = "1.0.0"

// ConversionStatus represents the lifecycle of an application record.
type ConversionStatus string

const (
	StatusPending         ConversionStatus = "pending"
	StatusCompleted       ConversionStatus = "completed"
	StatusFailed          ConversionStatus = "failed"
	StatusSkippedArch     ConversionStatus = "skipped_architecture"
	StatusToolUnavailable ConversionStatus = "tool_unavailable"
)

var allStatuses = []ConversionStatus{
	StatusPending,
	StatusCompleted,
	StatusFailed,
	StatusSkippedArch,
	StatusToolUnavailable,
}

var statusSet = func() map[ConversionStatus]struct{} {
	set := make(map[ConversionStatus]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// ParseStatus converts a string into a known ConversionStatus.
func ParseStatus(value string) (ConversionStatus, bool) {
	normalized := ConversionStatus(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// ArtifactStatus represents the state of one package-format artifact.
type ArtifactStatus string

const (
	ArtifactAvailable       ArtifactStatus = "available"
	ArtifactPending         ArtifactStatus = "pending"
	ArtifactFailed          ArtifactStatus = "failed"
	ArtifactSkippedArch     ArtifactStatus = "skipped_architecture"
	ArtifactToolUnavailable ArtifactStatus = "tool_unavailable"
)

// Format tags the three output package kinds. The set is closed; every
// record's converted_packages map carries exactly these keys.
type Format string

const (
	FormatDeb     Format = "deb"
	FormatRPM     Format = "rpm"
	FormatTarball Format = "tarball"
)

// Formats returns the closed, ordered set of package formats.
func Formats() []Format {
	return []Format{FormatDeb, FormatRPM, FormatTarball}
}

// PackageArtifact describes one stored package file, or carries just a
// status when the format was skipped or failed.
type PackageArtifact struct {
	URL          string            `json:"url,omitempty"`
	Size         string            `json:"size,omitempty"`
	Checksum     string            `json:"checksum,omitempty"`
	Architecture arch.Architecture `json:"architecture,omitempty"`
	Status       ArtifactStatus    `json:"status"`
	CreatedAt    time.Time         `json:"created,omitzero"`
}

// SourceBundle captures the upstream AppImage the record was built from.
type SourceBundle struct {
	URL          string            `json:"url"`
	Size         string            `json:"size,omitempty"`
	Checksum     string            `json:"checksum,omitempty"`
	Architecture arch.Architecture `json:"architecture,omitempty"`
}

// DesktopMetadata carries fields parsed from the bundle's desktop entry.
type DesktopMetadata struct {
	Icon              string   `json:"icon"`
	Executable        string   `json:"executable"`
	MimeTypes         []string `json:"mime_types"`
	ExtractionSkipped bool     `json:"extraction_skipped,omitempty"`
}

// Origin records where the application was discovered.
type Origin struct {
	Repository  string `json:"repository,omitempty"`
	Website     string `json:"website,omitempty"`
	APIURL      string `json:"api_url,omitempty"`
	ReleaseTag  string `json:"release_tag,omitempty"`
	CommitSHA   string `json:"commit_sha,omitempty"`
	ReleaseDate string `json:"release_date,omitempty"`
}

// ApplicationRecord is one row per (application, architecture) pair.
type ApplicationRecord struct {
	ID                string                      `json:"id"`
	BaseID            string                      `json:"base_id,omitempty"`
	Name              string                      `json:"name"`
	Description       string                      `json:"description,omitempty"`
	Version           string                      `json:"version"`
	Architecture      arch.Architecture           `json:"architecture,omitempty"`
	Categories        []string                    `json:"category,omitempty"`
	AppImage          SourceBundle                `json:"appimage"`
	ConvertedPackages map[Format]PackageArtifact  `json:"converted_packages"`
	Metadata          DesktopMetadata             `json:"metadata"`
	Source            Origin                      `json:"source"`
	LastUpdated       time.Time                   `json:"last_updated"`
	ConversionStatus  ConversionStatus            `json:"conversion_status"`
}

// Metadata describes the catalog document header.
type Metadata struct {
	LastUpdated       time.Time `json:"last_updated"`
	TotalApplications int       `json:"total_applications"`
	SchemaVersion     string    `json:"version"`
}

// Catalog is the persisted collection of application records.
type Catalog struct {
	Metadata     Metadata            `json:"metadata"`
	Applications []ApplicationRecord `json:"applications"`
}

// NewRecordPackages returns the closed converted_packages map with every
// format pending, the shape every freshly discovered record starts with.
func NewRecordPackages() map[Format]PackageArtifact {
	packages := make(map[Format]PackageArtifact, len(Formats()))
	for _, format := range Formats() {
		packages[format] = PackageArtifact{Status: ArtifactPending}
	}
	return packages
}

// ResetConversion clears conversion state so the record is reprocessed.
func (r *ApplicationRecord) ResetConversion() {
	r.ConversionStatus = StatusPending
	r.ConvertedPackages = NewRecordPackages()
}

// SetArtifact records the outcome for one package format.
func (r *ApplicationRecord) SetArtifact(format Format, artifact PackageArtifact) {
	if r.ConvertedPackages == nil {
		r.ConvertedPackages = NewRecordPackages()
	}
	r.ConvertedPackages[format] = artifact
}

// HasAvailableArtifact reports whether any format produced a stored package.
// A record's conversion status is completed iff this is true.
func (r *ApplicationRecord) HasAvailableArtifact() bool {
	for _, artifact := range r.ConvertedPackages {
		if artifact.Status == ArtifactAvailable {
			return true
		}
	}
	return false
}

// IsPending reports whether the record still needs conversion work.
func (r *ApplicationRecord) IsPending() bool {
	return r.ConversionStatus == StatusPending
}

// Find returns the record with the given id, or nil.
func (c *Catalog) Find(id string) *ApplicationRecord {
	for i := range c.Applications {
		if c.Applications[i].ID == id {
			return &c.Applications[i]
		}
	}
	return nil
}

// Pending returns the indices of records awaiting conversion.
func (c *Catalog) Pending() []int {
	var pending []int
	for i := range c.Applications {
		if c.Applications[i].IsPending() {
			pending = append(pending, i)
		}
	}
	return pending
}
