package discovery_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"appbinhub/internal/arch"
	"appbinhub/internal/catalog"
	"appbinhub/internal/config"
	"appbinhub/internal/discovery"
	"appbinhub/internal/fetch"
)

func testFetcher() *fetch.Client {
	return fetch.New(fetch.Options{
		UserAgent:      "appbinhub-test",
		RequestTimeout: 5 * time.Second,
		MaxRetries:     0,
		RetryDelay:     10 * time.Millisecond,
	}, nil)
}

func TestDirectDiscoverStaticURL(t *testing.T) {
	var bundleURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/version":
			fmt.Fprintf(w, `{"version":"2.1.0","downloadUrl":%q,"commitSha":"abc123"}`, bundleURL)
		case "/Cursor-x86_64.AppImage":
			w.Header().Set("Content-Length", "2048")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	bundleURL = srv.URL + "/Cursor-x86_64.AppImage"

	source := config.DirectSource{
		Name:          "Cursor",
		Description:   "AI code editor",
		Website:       "https://example.com",
		Category:      "programming",
		APIURL:        srv.URL + "/api/version",
		Architectures: []string{"x86_64"},
	}

	d := discovery.NewDirect(testFetcher(), nil)
	records, err := d.Discover(context.Background(), []config.DirectSource{source})
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	record := records[0]
	if record.ID != "cursor-x86_64" {
		t.Errorf("ID = %q", record.ID)
	}
	if record.BaseID != "cursor" {
		t.Errorf("BaseID = %q", record.BaseID)
	}
	if record.Version != "2.1.0" {
		t.Errorf("Version = %q", record.Version)
	}
	if record.Architecture != arch.X8664 {
		t.Errorf("Architecture = %q", record.Architecture)
	}
	if record.AppImage.URL != bundleURL {
		t.Errorf("AppImage.URL = %q", record.AppImage.URL)
	}
	if record.AppImage.Size != "2.0 KB" {
		t.Errorf("AppImage.Size = %q", record.AppImage.Size)
	}
	if record.Source.CommitSHA != "abc123" {
		t.Errorf("CommitSHA = %q", record.Source.CommitSHA)
	}
	if record.ConversionStatus != catalog.StatusPending {
		t.Errorf("ConversionStatus = %q", record.ConversionStatus)
	}
}

func TestDirectDiscoverTemplateExpandsPerArchitecture(t *testing.T) {
	var bundleBase string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/x86_64/version":
			fmt.Fprintf(w, `{"version":"1.0","url":"%s/App-x86_64.AppImage"}`, bundleBase)
		case "/api/aarch64/version":
			fmt.Fprintf(w, `{"version":"1.0","url":"%s/App-aarch64.AppImage"}`, bundleBase)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	bundleBase = srv.URL

	source := config.DirectSource{
		Name:           "App",
		APIURLTemplate: srv.URL + "/api/{arch}/version",
		Architectures:  []string{"x86_64", "aarch64"},
	}

	d := discovery.NewDirect(testFetcher(), nil)
	records, err := d.Discover(context.Background(), []config.DirectSource{source})
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID == records[1].ID {
		t.Fatalf("architecture records share an id: %q", records[0].ID)
	}
	if records[1].Architecture != arch.AArch64 {
		t.Errorf("second record architecture = %q", records[1].Architecture)
	}
}

func TestDirectDiscoverAutoDetectKeepsResponders(t *testing.T) {
	var bundleBase string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only the x86_64 endpoint exists.
		if r.URL.Path == "/api/x86_64/version" {
			fmt.Fprintf(w, `{"version":"3.2","url":"%s/App-x86_64.AppImage"}`, bundleBase)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()
	bundleBase = srv.URL

	source := config.DirectSource{
		Name:                "App",
		APIURLTemplate:      srv.URL + "/api/{arch}/version",
		DetectArchitectures: true,
	}

	d := discovery.NewDirect(testFetcher(), nil)
	records, err := d.Discover(context.Background(), []config.DirectSource{source})
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Architecture != arch.X8664 {
		t.Errorf("Architecture = %q", records[0].Architecture)
	}
}

func TestDirectDiscoverRejectsNonAppImageURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"version":"1.0","url":"https://example.com/app.zip"}`)
	}))
	defer srv.Close()

	source := config.DirectSource{Name: "App", APIURL: srv.URL}
	d := discovery.NewDirect(testFetcher(), nil)
	records, err := d.Discover(context.Background(), []config.DirectSource{source})
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records for non-AppImage url, got %d", len(records))
	}
}
