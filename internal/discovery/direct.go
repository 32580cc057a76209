package discovery

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"appbinhub/internal/arch"
	"appbinhub/internal/catalog"
	"appbinhub/internal/config"
	"appbinhub/internal/fetch"
	"appbinhub/internal/fileutil"
	"appbinhub/internal/logging"
)

// versionResponse is the JSON shape direct version endpoints publish. Either
// downloadUrl or url carries the bundle link.
type versionResponse struct {
	Version     string `json:"version"`
	DownloadURL string `json:"downloadUrl"`
	URL         string `json:"url"`
	CommitSHA   string `json:"commitSha"`
}

func (r versionResponse) bundleURL() string {
	if r.DownloadURL != "" {
		return r.DownloadURL
	}
	return r.URL
}

// Direct queries JSON version endpoints for AppImage releases, expanding
// per-architecture URLs for apps that publish one bundle per architecture.
type Direct struct {
	fetcher *fetch.Client
	logger  *slog.Logger
	now     func() time.Time
}

// NewDirect builds a watcher over the given HTTP client.
func NewDirect(fetcher *fetch.Client, logger *slog.Logger) *Direct {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Direct{
		fetcher: fetcher,
		logger:  logging.NewComponentLogger(logger, "direct-discovery"),
		now:     time.Now,
	}
}

// Discover returns candidate records for every configured endpoint. Sources
// and architectures that fail to respond are skipped with a warning; an
// auto-detect source simply keeps whichever architectures answered.
func (d *Direct) Discover(ctx context.Context, sources []config.DirectSource) ([]catalog.ApplicationRecord, error) {
	var records []catalog.ApplicationRecord
	for _, source := range sources {
		kind, err := source.ResolveKind()
		if err != nil {
			d.logger.Warn("skipping source", logging.Error(err))
			continue
		}
		for _, probe := range d.probesFor(source, kind) {
			record, ok := d.query(ctx, source, probe)
			if ok {
				records = append(records, record)
			}
		}
	}
	return records, nil
}

// probe is one (architecture, endpoint) pair to query.
type probe struct {
	architecture arch.Architecture
	apiURL       string
}

func (d *Direct) probesFor(source config.DirectSource, kind config.Kind) []probe {
	switch kind {
	case config.KindStaticURL:
		architecture := arch.Host()
		if len(source.Architectures) > 0 {
			architecture = arch.Normalize(source.Architectures[0])
		}
		return []probe{{architecture: architecture, apiURL: source.APIURL}}
	case config.KindTemplate:
		architectures := source.Architectures
		if len(architectures) == 0 {
			architectures = []string{string(arch.Host())}
		}
		probes := make([]probe, 0, len(architectures))
		for _, raw := range architectures {
			canonical := arch.Normalize(raw)
			probes = append(probes, probe{
				architecture: canonical,
				apiURL:       source.ExpandTemplate(string(canonical)),
			})
		}
		return probes
	case config.KindAutoDetect:
		probes := make([]probe, 0, len(arch.All()))
		for _, canonical := range arch.All() {
			probes = append(probes, probe{
				architecture: canonical,
				apiURL:       source.ExpandTemplate(string(canonical)),
			})
		}
		return probes
	default:
		return nil
	}
}

func (d *Direct) query(ctx context.Context, source config.DirectSource, p probe) (catalog.ApplicationRecord, bool) {
	var response versionResponse
	if err := d.fetcher.GetJSON(ctx, p.apiURL, &response); err != nil {
		d.logger.Warn("version endpoint unavailable",
			logging.String("source", source.Name),
			logging.String("architecture", string(p.architecture)),
			logging.Error(err))
		return catalog.ApplicationRecord{}, false
	}

	bundleURL := response.bundleURL()
	if !fetch.IsAppImageURL(bundleURL) {
		d.logger.Warn("endpoint returned no AppImage url",
			logging.String("source", source.Name),
			logging.String("url", bundleURL))
		return catalog.ApplicationRecord{}, false
	}

	architecture := p.architecture
	if detected := arch.DetectFromURL(bundleURL); detected != architecture {
		d.logger.Warn("architecture mismatch, trusting the published url",
			logging.String("source", source.Name),
			logging.String("expected", string(architecture)),
			logging.String("detected", string(detected)))
		architecture = detected
	}

	size := ""
	if length, err := d.fetcher.ContentLength(ctx, bundleURL); err == nil && length > 0 {
		size = fileutil.FormatSize(length)
	}

	version := response.Version
	if version == "" {
		version = "latest"
	}

	baseID := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(source.Name), " ", "-"))
	category := source.Category
	if category == "" {
		category = defaultCategory
	}

	return catalog.ApplicationRecord{
		ID:           baseID + "-" + string(architecture),
		BaseID:       baseID,
		Name:         source.Name + " (" + string(architecture) + ")",
		Description:  source.Description,
		Version:      version,
		Architecture: architecture,
		Categories:   []string{category},
		AppImage: catalog.SourceBundle{
			URL:          bundleURL,
			Size:         size,
			Architecture: architecture,
		},
		ConvertedPackages: catalog.NewRecordPackages(),
		Metadata: catalog.DesktopMetadata{
			Icon: source.IconURL,
		},
		Source: catalog.Origin{
			Website:     source.Website,
			APIURL:      p.apiURL,
			CommitSHA:   response.CommitSHA,
			ReleaseDate: d.now().UTC().Format(time.RFC3339),
		},
		LastUpdated:      d.now().UTC(),
		ConversionStatus: catalog.StatusPending,
	}, true
}
