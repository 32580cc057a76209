package fetch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"appbinhub/internal/fetch"
)

func newTestClient(minBytes, maxBytes int64) *fetch.Client {
	return fetch.New(fetch.Options{
		UserAgent:       "appbinhub-test",
		RequestTimeout:  5 * time.Second,
		DownloadTimeout: 10 * time.Second,
		MaxRetries:      0,
		RetryDelay:      10 * time.Millisecond,
		MinBundleBytes:  minBytes,
		MaxBundleBytes:  maxBytes,
	}, nil)
}

func TestDownloadWritesExecutableFile(t *testing.T) {
	payload := strings.Repeat("x", 2048)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "appbinhub-test" {
			t.Errorf("unexpected user agent: %q", got)
		}
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	dir := t.TempDir()
	path, err := newTestClient(1, 1<<20).Download(context.Background(), srv.URL+"/Sample-x86_64.AppImage", dir)
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat download: %v", err)
	}
	if info.Size() != int64(len(payload)) {
		t.Fatalf("unexpected size: %d", info.Size())
	}
	if info.Mode().Perm()&0o111 == 0 {
		t.Fatalf("download not executable: %v", info.Mode())
	}
	if !strings.HasSuffix(path, "Sample-x86_64.AppImage") {
		t.Fatalf("unexpected file name: %s", path)
	}
}

func TestDownloadRejectsUndersizedBundle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("tiny"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	_, err := newTestClient(1024, 0).Download(context.Background(), srv.URL+"/app.AppImage", dir)
	if err == nil {
		t.Fatal("expected size validation error")
	}
	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		t.Fatalf("read dir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Fatalf("expected rejected download to be removed, found %d entries", len(entries))
	}
}

func TestDownloadHTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if _, err := newTestClient(0, 0).Download(context.Background(), srv.URL+"/gone.AppImage", t.TempDir()); err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestContentLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
		w.Header().Set("Content-Length", "4096")
	}))
	defer srv.Close()

	size, err := newTestClient(0, 0).ContentLength(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("ContentLength returned error: %v", err)
	}
	if size != 4096 {
		t.Fatalf("unexpected size: %d", size)
	}
}

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"version":"1.2.3","downloadUrl":"https://example.com/a.AppImage"}`))
	}))
	defer srv.Close()

	var doc struct {
		Version     string `json:"version"`
		DownloadURL string `json:"downloadUrl"`
	}
	if err := newTestClient(0, 0).GetJSON(context.Background(), srv.URL, &doc); err != nil {
		t.Fatalf("GetJSON returned error: %v", err)
	}
	if doc.Version != "1.2.3" {
		t.Fatalf("unexpected version: %q", doc.Version)
	}
}

func TestFileNameFromURL(t *testing.T) {
	cases := map[string]string{
		"https://example.com/releases/App-1.0-x86_64.AppImage": "App-1.0-x86_64.AppImage",
		"https://example.com/download/latest":                  "latest.AppImage",
		"https://example.com/":                                 "bundle.AppImage",
	}
	for url, want := range cases {
		if got := fetch.FileNameFromURL(url); got != want {
			t.Fatalf("FileNameFromURL(%q) = %q, want %q", url, got, want)
		}
	}
}

func TestIsAppImageURL(t *testing.T) {
	if !fetch.IsAppImageURL("https://example.com/App.AppImage") {
		t.Fatal("expected AppImage URL to validate")
	}
	if !fetch.IsAppImageURL("https://example.com/app.appimage?token=x") {
		t.Fatal("expected lowercase suffix to validate")
	}
	if fetch.IsAppImageURL("https://example.com/app.tar.gz") {
		t.Fatal("expected tarball URL to be rejected")
	}
}
