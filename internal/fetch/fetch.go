// Package fetch downloads AppImage bundles and probes release endpoints.
//
// All network calls are blocking with explicit timeouts and a bounded retry
// count with fixed backoff, so no discovery or conversion step can hang a
// run indefinitely.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"appbinhub/internal/logging"
	"appbinhub/internal/services"
)

// Options configures the fetch client.
type Options struct {
	UserAgent       string
	RequestTimeout  time.Duration
	DownloadTimeout time.Duration
	MaxRetries      int
	RetryDelay      time.Duration
	MinBundleBytes  int64
	MaxBundleBytes  int64
}

// Client performs HTTP fetches for discovery and conversion.
type Client struct {
	http   *retryablehttp.Client
	opts   Options
	logger *slog.Logger
}

// New constructs a fetch client with bounded retries and fixed backoff.
func New(opts Options, logger *slog.Logger) *Client {
	client := retryablehttp.NewClient()
	client.RetryMax = opts.MaxRetries
	client.RetryWaitMin = opts.RetryDelay
	client.RetryWaitMax = opts.RetryDelay
	client.Backoff = retryablehttp.DefaultBackoff
	client.HTTPClient.Timeout = opts.RequestTimeout
	client.Logger = nil

	return &Client{
		http:   client,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "fetch"),
	}
}

// Download fetches url into destDir, names the file after the final URL
// segment (forcing an .AppImage suffix), marks it executable, and enforces
// the configured size bounds.
func (c *Client) Download(ctx context.Context, rawURL, destDir string) (string, error) {
	if c.opts.DownloadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.DownloadTimeout)
		defer cancel()
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", services.Wrap(services.ErrDownload, "download", "request", rawURL, err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrDownload, "download", "fetch", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", services.Wrap(services.ErrDownload, "download", "fetch",
			fmt.Sprintf("%s returned %s", rawURL, resp.Status), nil)
	}

	destPath := filepath.Join(destDir, FileNameFromURL(rawURL))
	out, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return "", services.Wrap(services.ErrDownload, "download", "create file", destPath, err)
	}

	written, copyErr := io.Copy(out, resp.Body)
	closeErr := out.Close()
	if copyErr != nil {
		_ = os.Remove(destPath)
		return "", services.Wrap(services.ErrDownload, "download", "write", destPath, copyErr)
	}
	if closeErr != nil {
		_ = os.Remove(destPath)
		return "", services.Wrap(services.ErrDownload, "download", "close", destPath, closeErr)
	}

	if err := c.checkBundleSize(written); err != nil {
		_ = os.Remove(destPath)
		return "", err
	}

	c.logger.Info("downloaded bundle",
		logging.String("url", rawURL),
		logging.Int64("bytes", written),
	)
	return destPath, nil
}

func (c *Client) checkBundleSize(size int64) error {
	if c.opts.MinBundleBytes > 0 && size < c.opts.MinBundleBytes {
		return services.Wrap(services.ErrValidation, "download", "size check",
			fmt.Sprintf("bundle is %d bytes, below the %d byte minimum", size, c.opts.MinBundleBytes), nil)
	}
	if c.opts.MaxBundleBytes > 0 && size > c.opts.MaxBundleBytes {
		return services.Wrap(services.ErrValidation, "download", "size check",
			fmt.Sprintf("bundle is %d bytes, above the %d byte maximum", size, c.opts.MaxBundleBytes), nil)
	}
	return nil
}

// ContentLength issues a HEAD request and reports the advertised size, or
// zero when the server does not say.
func (c *Client) ContentLength(ctx context.Context, rawURL string) (int64, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return 0, services.Wrap(services.ErrDownload, "probe", "request", rawURL, err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, services.Wrap(services.ErrDownload, "probe", "head", rawURL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return 0, services.Wrap(services.ErrDownload, "probe", "head",
			fmt.Sprintf("%s returned %s", rawURL, resp.Status), nil)
	}
	if resp.ContentLength < 0 {
		return 0, nil
	}
	return resp.ContentLength, nil
}

// GetJSON fetches a small JSON document into dst.
func (c *Client) GetJSON(ctx context.Context, rawURL string, dst any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return services.Wrap(services.ErrDownload, "probe", "request", rawURL, err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return services.Wrap(services.ErrDownload, "probe", "fetch", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrDownload, "probe", "fetch",
			fmt.Sprintf("%s returned %s", rawURL, resp.Status), nil)
	}
	return decodeJSON(resp.Body, dst)
}

// FileNameFromURL derives a local file name from the download URL, enforcing
// an .AppImage suffix so downstream tooling recognizes the container.
func FileNameFromURL(rawURL string) string {
	name := ""
	if parsed, err := url.Parse(rawURL); err == nil {
		name = path.Base(parsed.Path)
	}
	if name == "" || name == "." || name == "/" {
		name = "bundle"
	}
	if !strings.EqualFold(filepath.Ext(name), ".appimage") {
		name += ".AppImage"
	}
	return name
}

// IsAppImageURL reports whether the URL plausibly points at an AppImage.
func IsAppImageURL(rawURL string) bool {
	lowered := strings.ToLower(rawURL)
	return strings.Contains(lowered, ".appimage")
}
