package pkgbuild

import (
	"fmt"
	"strings"

	"appbinhub/internal/arch"
)

// DefaultVersion stands in for versions that sanitize to nothing, such as
// releases tagged "latest" or "continuous".
const DefaultVersion = "1.0.0"

// SanitizeName lowercases an application name and collapses every run of
// non-alphanumeric characters into a single hyphen. The result is stable
// across calls and safe for file names and package fields.
func SanitizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	if b.Len() == 0 {
		return "app"
	}
	return b.String()
}

// SanitizeVersion keeps digits, dots, and hyphens from a raw version string,
// stripping a leading "v" first. Empty results fall back to DefaultVersion.
func SanitizeVersion(version string) string {
	trimmed := strings.TrimSpace(version)
	trimmed = strings.TrimPrefix(trimmed, "v")
	trimmed = strings.TrimPrefix(trimmed, "V")

	var b strings.Builder
	for _, r := range trimmed {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		}
	}
	cleaned := strings.Trim(b.String(), ".-")
	if cleaned == "" {
		return DefaultVersion
	}
	return cleaned
}

// RPMVersion renders a sanitized version in rpm's own vocabulary, where a
// hyphen is reserved as the version-release separator.
func RPMVersion(version string) string {
	return strings.ReplaceAll(SanitizeVersion(version), "-", ".")
}

// DebFileName returns the deterministic Debian package file name for the
// given identity, following dpkg's name_version_arch convention.
func DebFileName(name, version string, a arch.Architecture) string {
	return fmt.Sprintf("%s_%s_%s.deb", SanitizeName(name), SanitizeVersion(version), a.DebianName())
}

// RPMFileName returns the deterministic RPM file name for the given identity,
// matching what rpmbuild emits for release 1.
func RPMFileName(name, version string, a arch.Architecture) string {
	return fmt.Sprintf("%s-%s-1.%s.rpm", SanitizeName(name), RPMVersion(version), a.RPMName())
}

// TarballFileName returns the deterministic tarball name for the given
// identity.
func TarballFileName(name, version string, a arch.Architecture) string {
	return fmt.Sprintf("%s-%s-%s.tar.gz", SanitizeName(name), SanitizeVersion(version), a)
}
