package appimage

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSynthetic(t *testing.T, length int, magicAt int64) string {
	t.Helper()
	data := make([]byte, length)
	for i := range data {
		data[i] = byte(i % 251)
	}
	// Keep the filler clear of accidental signatures.
	for i := 0; i+len(squashfsMagic) <= len(data); i++ {
		if string(data[i:i+len(squashfsMagic)]) == string(squashfsMagic) {
			data[i] ^= 0xFF
		}
	}
	if magicAt >= 0 {
		copy(data[magicAt:], squashfsMagic)
	}
	path := filepath.Join(t.TempDir(), "container.AppImage")
	if err := os.WriteFile(path, data, 0o755); err != nil {
		t.Fatalf("write synthetic container: %v", err)
	}
	return path
}

func TestFindSquashfsOffsetExact(t *testing.T) {
	cases := []struct {
		name    string
		length  int
		magicAt int64
	}{
		{"start", 1024, 0},
		{"small file", 512, 100},
		{"mid window", 3 * scanWindowSize, 70000},
		{"window boundary", 3 * scanWindowSize, scanWindowSize + 3},
		{"straddles first boundary", 3 * scanWindowSize, scanWindowSize + 1},
		{"straddles second boundary", 4 * scanWindowSize, 2*scanWindowSize + 2},
		{"last bytes", 2 * scanWindowSize, 2*scanWindowSize - 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeSynthetic(t, tc.length, tc.magicAt)
			offset, found, err := FindSquashfsOffset(path)
			if err != nil {
				t.Fatalf("FindSquashfsOffset returned error: %v", err)
			}
			if !found {
				t.Fatalf("signature at %d not found", tc.magicAt)
			}
			if offset != tc.magicAt {
				t.Fatalf("offset = %d, want %d", offset, tc.magicAt)
			}
		})
	}
}

func TestFindSquashfsOffsetBoundarySweep(t *testing.T) {
	// Every placement around the first window boundary must be found at its
	// exact offset, including each straddling position.
	for delta := int64(-4); delta <= 4; delta++ {
		magicAt := int64(scanWindowSize) + delta
		path := writeSynthetic(t, 2*scanWindowSize, magicAt)
		offset, found, err := FindSquashfsOffset(path)
		if err != nil {
			t.Fatalf("delta %d: %v", delta, err)
		}
		if !found || offset != magicAt {
			t.Fatalf("delta %d: got (%d, %v), want (%d, true)", delta, offset, found, magicAt)
		}
	}
}

func TestFindSquashfsOffsetNotFound(t *testing.T) {
	path := writeSynthetic(t, 2*scanWindowSize, -1)
	_, found, err := FindSquashfsOffset(path)
	if err != nil {
		t.Fatalf("FindSquashfsOffset returned error: %v", err)
	}
	if found {
		t.Fatal("expected no signature in clean stream")
	}
}
