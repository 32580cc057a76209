package arch_test

import (
	"strings"
	"testing"

	"appbinhub/internal/arch"
)

func TestNormalizeAliases(t *testing.T) {
	cases := map[string]arch.Architecture{
		"x86_64":  arch.X8664,
		"amd64":   arch.X8664,
		"x64":     arch.X8664,
		"intel":   arch.X8664,
		"i386":    arch.I386,
		"i686":    arch.I386,
		"32bit":   arch.I386,
		"arm":     arch.ARMv7,
		"armv7l":  arch.ARMv7,
		"armhf":   arch.ARMv7,
		"arm64":   arch.AArch64,
		"aarch64": arch.AArch64,
	}
	for raw, want := range cases {
		if got := arch.Normalize(raw); got != want {
			t.Fatalf("Normalize(%q) = %s, want %s", raw, got, want)
		}
		upper := strings.ToUpper(raw)
		if got := arch.Normalize(upper); got != want {
			t.Fatalf("Normalize(%q) = %s, want %s", upper, got, want)
		}
		padded := "  " + raw + " "
		if got := arch.Normalize(padded); got != want {
			t.Fatalf("Normalize(%q) = %s, want %s", padded, got, want)
		}
	}
}

func TestNormalizeIsTotal(t *testing.T) {
	known := map[arch.Architecture]struct{}{}
	for _, a := range arch.All() {
		known[a] = struct{}{}
	}
	for _, raw := range []string{"", "sparc64", "riscv64-unknown", "???", "linux"} {
		got := arch.Normalize(raw)
		if _, ok := known[got]; !ok {
			t.Fatalf("Normalize(%q) returned non-canonical %q", raw, got)
		}
	}
	if arch.Normalize("") != arch.X8664 {
		t.Fatal("expected empty input to default to x86_64")
	}
	if arch.Normalize("powerpc") != arch.X8664 {
		t.Fatal("expected unrecognized input to default to x86_64")
	}
}

func TestDetectFromURL(t *testing.T) {
	cases := map[string]arch.Architecture{
		"https://example.com/App-1.2.3-x86_64.AppImage":   arch.X8664,
		"https://example.com/App-1.2.3-aarch64.AppImage":  arch.AArch64,
		"https://example.com/releases/app-arm64.AppImage": arch.AArch64,
		"https://example.com/app-armhf.AppImage":          arch.ARMv7,
		"https://example.com/app-i686.AppImage":           arch.I386,
		"https://example.com/app.AppImage":                arch.X8664,
	}
	for url, want := range cases {
		if got := arch.DetectFromURL(url); got != want {
			t.Fatalf("DetectFromURL(%q) = %s, want %s", url, got, want)
		}
	}
}

func TestFormatVocabularies(t *testing.T) {
	if arch.AArch64.DebianName() != "arm64" {
		t.Fatalf("unexpected deb name: %s", arch.AArch64.DebianName())
	}
	if arch.AArch64.RPMName() != "aarch64" {
		t.Fatalf("unexpected rpm name: %s", arch.AArch64.RPMName())
	}
	if arch.ARMv7.DebianName() != "armhf" {
		t.Fatalf("unexpected deb name: %s", arch.ARMv7.DebianName())
	}
	if arch.ARMv7.RPMName() != "armv7hl" {
		t.Fatalf("unexpected rpm name: %s", arch.ARMv7.RPMName())
	}
	if arch.X8664.DebianName() != "amd64" {
		t.Fatalf("unexpected deb name: %s", arch.X8664.DebianName())
	}
}
