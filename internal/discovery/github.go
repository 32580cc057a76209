package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/go-github/v82/github"

	"appbinhub/internal/arch"
	"appbinhub/internal/catalog"
	"appbinhub/internal/config"
	"appbinhub/internal/fileutil"
	"appbinhub/internal/logging"
)

// releaseAPI is the slice of the GitHub API the watcher needs. The concrete
// client is wrapped so tests can script releases without a server.
type releaseAPI interface {
	LatestRelease(ctx context.Context, owner, repo string) (*github.RepositoryRelease, error)
	CoreRemaining(ctx context.Context) (int, error)
}

type githubAPI struct {
	client *github.Client
}

func (a githubAPI) LatestRelease(ctx context.Context, owner, repo string) (*github.RepositoryRelease, error) {
	release, _, err := a.client.Repositories.GetLatestRelease(ctx, owner, repo)
	return release, err
}

func (a githubAPI) CoreRemaining(ctx context.Context) (int, error) {
	limits, _, err := a.client.RateLimit.Get(ctx)
	if err != nil {
		return 0, err
	}
	return limits.GetCore().Remaining, nil
}

// GitHub watches the latest release of configured repositories for AppImage
// assets.
type GitHub struct {
	api       releaseAPI
	threshold int
	logger    *slog.Logger
	now       func() time.Time
}

// NewGitHub builds a watcher. An empty token means unauthenticated requests,
// which GitHub rate-limits aggressively; the threshold aborts a run before
// the limit is exhausted mid-batch.
func NewGitHub(token string, rateLimitThreshold int, logger *slog.Logger) *GitHub {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return newGitHub(githubAPI{client: client}, rateLimitThreshold, logger)
}

func newGitHub(api releaseAPI, rateLimitThreshold int, logger *slog.Logger) *GitHub {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &GitHub{
		api:       api,
		threshold: rateLimitThreshold,
		logger:    logging.NewComponentLogger(logger, "github-discovery"),
		now:       time.Now,
	}
}

// Discover returns candidate records for every AppImage asset in each
// repository's latest release. One repository's failure is logged and skipped
// so the rest of the batch still runs.
func (g *GitHub) Discover(ctx context.Context, sources []config.GitHubSource) ([]catalog.ApplicationRecord, error) {
	if len(sources) == 0 {
		return nil, nil
	}

	remaining, err := g.api.CoreRemaining(ctx)
	if err != nil {
		return nil, fmt.Errorf("query rate limit: %w", err)
	}
	if remaining < g.threshold {
		return nil, fmt.Errorf("rate limit too low: %d requests remaining, need %d", remaining, g.threshold)
	}

	var records []catalog.ApplicationRecord
	for _, source := range sources {
		owner, repo, err := splitRepo(source.Repo)
		if err != nil {
			g.logger.Warn("skipping repository", logging.Error(err))
			continue
		}
		release, err := g.api.LatestRelease(ctx, owner, repo)
		if err != nil {
			g.logger.Warn("latest release lookup failed",
				logging.String("repo", source.Repo),
				logging.Error(err))
			continue
		}
		found := 0
		for _, asset := range release.Assets {
			if !strings.HasSuffix(strings.ToLower(asset.GetName()), ".appimage") {
				continue
			}
			records = append(records, g.recordFromAsset(source, release, asset))
			found++
		}
		g.logger.Info("repository scanned",
			logging.String("repo", source.Repo),
			logging.String("release", release.GetTagName()),
			logging.Int("appimage_assets", found))
	}
	return records, nil
}

func (g *GitHub) recordFromAsset(source config.GitHubSource, release *github.RepositoryRelease, asset *github.ReleaseAsset) catalog.ApplicationRecord {
	assetBase := strings.TrimSuffix(asset.GetName(), ".AppImage")
	assetBase = strings.TrimSuffix(assetBase, ".appimage")
	id := strings.ToLower(strings.ReplaceAll(source.Repo, "/", "-") + "-" + assetBase)

	category := source.Category
	if category == "" {
		category = defaultCategory
	}

	releaseDate := ""
	if published := release.GetPublishedAt(); !published.IsZero() {
		releaseDate = published.Format(time.RFC3339)
	}

	return catalog.ApplicationRecord{
		ID:           id,
		Name:         assetBase,
		Version:      release.GetTagName(),
		Architecture: arch.DetectFromURL(asset.GetBrowserDownloadURL()),
		Categories:   []string{category},
		AppImage: catalog.SourceBundle{
			URL:          asset.GetBrowserDownloadURL(),
			Size:         fileutil.FormatSize(int64(asset.GetSize())),
			Architecture: arch.DetectFromURL(asset.GetBrowserDownloadURL()),
		},
		ConvertedPackages: catalog.NewRecordPackages(),
		Source: catalog.Origin{
			Repository:  "https://github.com/" + source.Repo,
			ReleaseTag:  release.GetTagName(),
			ReleaseDate: releaseDate,
		},
		LastUpdated:      g.now().UTC(),
		ConversionStatus: catalog.StatusPending,
	}
}

func splitRepo(repo string) (string, string, error) {
	parts := strings.Split(strings.TrimSpace(repo), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("repository %q is not owner/name", repo)
	}
	return parts[0], parts[1], nil
}
