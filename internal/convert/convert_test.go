package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"appbinhub/internal/arch"
	"appbinhub/internal/catalog"
	"appbinhub/internal/pkgbuild"
	"appbinhub/internal/services"
)

type fakeDownloader struct {
	err   error
	calls int
}

func (f *fakeDownloader) Download(_ context.Context, _, destDir string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	path := filepath.Join(destDir, "app.AppImage")
	if err := os.WriteFile(path, []byte("bundle"), 0o755); err != nil {
		return "", err
	}
	return path, nil
}

type fakeExtractor struct {
	err   error
	calls int
}

func (f *fakeExtractor) Extract(_ context.Context, _, workDir string, _ arch.Architecture) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	root := filepath.Join(workDir, "squashfs-root")
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", err
	}
	desktop := "[Desktop Entry]\nName=App\nComment=An app\nExec=app %F\nCategories=Development;\n"
	if err := os.WriteFile(filepath.Join(root, "app.desktop"), []byte(desktop), 0o644); err != nil {
		return "", err
	}
	return root, nil
}

type fakeBuilder struct {
	format catalog.Format
	err    error
}

func (f *fakeBuilder) Format() catalog.Format { return f.format }

func (f *fakeBuilder) Build(_ context.Context, _ pkgbuild.Input, outputDir string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	path := filepath.Join(outputDir, "artifact."+string(f.format))
	return path, os.WriteFile(path, []byte(f.format), 0o644)
}

type storedCall struct {
	AppID   string
	Version string
	Format  catalog.Format
}

type fakeStore struct {
	err   error
	calls []storedCall
}

func (f *fakeStore) Store(_, appID, version string, architecture arch.Architecture, format catalog.Format) (catalog.PackageArtifact, error) {
	f.calls = append(f.calls, storedCall{AppID: appID, Version: version, Format: format})
	if f.err != nil {
		return catalog.PackageArtifact{}, f.err
	}
	return catalog.PackageArtifact{
		URL:          "./converted_packages/" + appID + "/" + version + "/artifact." + string(format),
		Status:       catalog.ArtifactAvailable,
		Architecture: architecture,
	}, nil
}

func pendingRecord(id, version string, a arch.Architecture) catalog.ApplicationRecord {
	return catalog.ApplicationRecord{
		ID:                id,
		Name:              "App",
		Version:           version,
		Architecture:      a,
		AppImage:          catalog.SourceBundle{URL: "https://example.com/App-" + string(a) + ".AppImage"},
		ConvertedPackages: catalog.NewRecordPackages(),
		ConversionStatus:  catalog.StatusPending,
	}
}

func TestConvertPendingPartialToolAvailability(t *testing.T) {
	cat := &catalog.Catalog{Applications: []catalog.ApplicationRecord{
		pendingRecord("app-aarch64", "2.0.0", arch.AArch64),
	}}

	builders := []pkgbuild.Builder{
		&fakeBuilder{format: catalog.FormatDeb},
		&fakeBuilder{format: catalog.FormatRPM, err: services.Wrap(services.ErrToolUnavailable, "synthesize", "rpm", "rpmbuild not installed", nil)},
		&fakeBuilder{format: catalog.FormatTarball},
	}
	st := &fakeStore{}
	m := New(&fakeDownloader{}, &fakeExtractor{}, builders, st, t.TempDir(), nil)

	tally := m.ConvertPending(context.Background(), cat)
	if tally.Succeeded != 1 || tally.Failed != 0 {
		t.Fatalf("tally = %+v", tally)
	}

	record := cat.Applications[0]
	if record.ConversionStatus != catalog.StatusCompleted {
		t.Fatalf("ConversionStatus = %q, want completed", record.ConversionStatus)
	}
	if got := record.ConvertedPackages[catalog.FormatDeb].Status; got != catalog.ArtifactAvailable {
		t.Errorf("deb status = %q", got)
	}
	if got := record.ConvertedPackages[catalog.FormatRPM].Status; got != catalog.ArtifactToolUnavailable {
		t.Errorf("rpm status = %q", got)
	}
	if got := record.ConvertedPackages[catalog.FormatTarball].Status; got != catalog.ArtifactAvailable {
		t.Errorf("tarball status = %q", got)
	}
	if len(st.calls) != 2 {
		t.Fatalf("expected 2 stored artifacts, got %d", len(st.calls))
	}
	if st.calls[0].Version != "2.0.0" {
		t.Errorf("stored under version %q", st.calls[0].Version)
	}
}

func TestConvertPendingSkipsNonPendingRecords(t *testing.T) {
	completed := pendingRecord("done-x86_64", "1.0.0", arch.X8664)
	completed.ConversionStatus = catalog.StatusCompleted
	completed.ConvertedPackages[catalog.FormatDeb] = catalog.PackageArtifact{Status: catalog.ArtifactAvailable}
	cat := &catalog.Catalog{Applications: []catalog.ApplicationRecord{completed}}

	dl := &fakeDownloader{}
	m := New(dl, &fakeExtractor{}, nil, &fakeStore{}, t.TempDir(), nil)

	tally := m.ConvertPending(context.Background(), cat)
	if tally.Succeeded != 0 || tally.Failed != 0 {
		t.Fatalf("tally = %+v", tally)
	}
	if dl.calls != 0 {
		t.Fatalf("completed record was re-downloaded")
	}
	if cat.Applications[0].ConversionStatus != catalog.StatusCompleted {
		t.Fatalf("status changed to %q", cat.Applications[0].ConversionStatus)
	}
}

func TestConvertPendingDownloadFailure(t *testing.T) {
	cat := &catalog.Catalog{Applications: []catalog.ApplicationRecord{
		pendingRecord("app-x86_64", "1.0.0", arch.X8664),
	}}

	ex := &fakeExtractor{}
	m := New(&fakeDownloader{err: services.Wrap(services.ErrDownload, "download", "get", "connection refused", nil)},
		ex, nil, &fakeStore{}, t.TempDir(), nil)

	tally := m.ConvertPending(context.Background(), cat)
	if tally.Failed != 1 {
		t.Fatalf("tally = %+v", tally)
	}
	record := cat.Applications[0]
	if record.ConversionStatus != catalog.StatusFailed {
		t.Fatalf("ConversionStatus = %q, want failed", record.ConversionStatus)
	}
	if ex.calls != 0 {
		t.Fatal("extraction attempted after download failure")
	}
	for format, artifact := range record.ConvertedPackages {
		if artifact.Status != catalog.ArtifactPending {
			t.Errorf("%s status = %q, want pending left untouched", format, artifact.Status)
		}
	}
}

func TestConvertPendingExtractionFailure(t *testing.T) {
	cat := &catalog.Catalog{Applications: []catalog.ApplicationRecord{
		pendingRecord("app-x86_64", "1.0.0", arch.X8664),
	}}

	m := New(&fakeDownloader{},
		&fakeExtractor{err: services.Wrap(services.ErrExtraction, "extract", "unsquashfs", "no signature", nil)},
		[]pkgbuild.Builder{&fakeBuilder{format: catalog.FormatTarball}}, &fakeStore{}, t.TempDir(), nil)

	tally := m.ConvertPending(context.Background(), cat)
	if tally.Failed != 1 {
		t.Fatalf("tally = %+v", tally)
	}
	if cat.Applications[0].ConversionStatus != catalog.StatusFailed {
		t.Fatalf("ConversionStatus = %q", cat.Applications[0].ConversionStatus)
	}
}

func TestConvertPendingBatchContinuesPastFailures(t *testing.T) {
	cat := &catalog.Catalog{Applications: []catalog.ApplicationRecord{
		pendingRecord("bad-x86_64", "1.0.0", arch.X8664),
		pendingRecord("good-x86_64", "1.0.0", arch.X8664),
	}}
	cat.Applications[0].AppImage.URL = "https://example.com/bad.AppImage"

	dl := &selectiveDownloader{failURL: "https://example.com/bad.AppImage"}
	m := New(dl, &fakeExtractor{},
		[]pkgbuild.Builder{&fakeBuilder{format: catalog.FormatTarball}},
		&fakeStore{}, t.TempDir(), nil)

	tally := m.ConvertPending(context.Background(), cat)
	if tally.Succeeded != 1 || tally.Failed != 1 {
		t.Fatalf("tally = %+v", tally)
	}
	if cat.Applications[0].ConversionStatus != catalog.StatusFailed {
		t.Errorf("first record status = %q", cat.Applications[0].ConversionStatus)
	}
	if cat.Applications[1].ConversionStatus != catalog.StatusCompleted {
		t.Errorf("second record status = %q", cat.Applications[1].ConversionStatus)
	}
}

type selectiveDownloader struct {
	failURL string
	inner   fakeDownloader
}

func (s *selectiveDownloader) Download(ctx context.Context, url, destDir string) (string, error) {
	if url == s.failURL {
		return "", services.Wrap(services.ErrDownload, "download", "get", "server error", nil)
	}
	return s.inner.Download(ctx, url, destDir)
}

func TestConvertPendingWorkspaceRemoved(t *testing.T) {
	staging := t.TempDir()
	cat := &catalog.Catalog{Applications: []catalog.ApplicationRecord{
		pendingRecord("app-x86_64", "1.0.0", arch.X8664),
	}}

	m := New(&fakeDownloader{}, &fakeExtractor{},
		[]pkgbuild.Builder{&fakeBuilder{format: catalog.FormatTarball}},
		&fakeStore{}, staging, nil)
	m.ConvertPending(context.Background(), cat)

	entries, err := os.ReadDir(staging)
	if err != nil {
		t.Fatalf("read staging dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("workspace left behind: %v", entries)
	}

	// Failure path cleans up too.
	cat.Applications[0].ResetConversion()
	m2 := New(&fakeDownloader{err: errors.New("boom")}, &fakeExtractor{}, nil, &fakeStore{}, staging, nil)
	m2.ConvertPending(context.Background(), cat)
	entries, err = os.ReadDir(staging)
	if err != nil {
		t.Fatalf("read staging dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("workspace left behind after failure: %v", entries)
	}
}

func TestConvertRecordsSourceChecksum(t *testing.T) {
	cat := &catalog.Catalog{Applications: []catalog.ApplicationRecord{
		pendingRecord("app-x86_64", "1.0.0", arch.X8664),
	}}

	m := New(&fakeDownloader{}, &fakeExtractor{},
		[]pkgbuild.Builder{&fakeBuilder{format: catalog.FormatTarball}},
		&fakeStore{}, t.TempDir(), nil)
	m.ConvertPending(context.Background(), cat)

	record := cat.Applications[0]
	if record.ConversionStatus != catalog.StatusCompleted {
		t.Fatalf("ConversionStatus = %q, want completed", record.ConversionStatus)
	}
	// sha256 of the fake downloader's "bundle" payload.
	want := "sha256:1e6ed65d77d6364eeaed5a745ba5c4985ae2b700dd85d7cf7f027bdf294a33fc"
	if record.AppImage.Checksum != want {
		t.Fatalf("AppImage.Checksum = %q, want %q", record.AppImage.Checksum, want)
	}
}

func TestConvertRefreshesDesktopMetadata(t *testing.T) {
	record := pendingRecord("app-x86_64", "1.0.0", arch.X8664)
	record.Description = ""
	cat := &catalog.Catalog{Applications: []catalog.ApplicationRecord{record}}

	m := New(&fakeDownloader{}, &fakeExtractor{},
		[]pkgbuild.Builder{&fakeBuilder{format: catalog.FormatTarball}},
		&fakeStore{}, t.TempDir(), nil)
	m.ConvertPending(context.Background(), cat)

	got := cat.Applications[0]
	if got.Description != "An app" {
		t.Errorf("Description = %q", got.Description)
	}
	if got.Metadata.Executable != "app %F" {
		t.Errorf("Executable = %q", got.Metadata.Executable)
	}
	if len(got.Categories) != 1 || got.Categories[0] != "programming" {
		t.Errorf("Categories = %v", got.Categories)
	}
}
