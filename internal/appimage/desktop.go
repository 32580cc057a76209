package appimage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

// DesktopEntry carries the fields appbinhub reads from a bundle's .desktop
// file. Absent fields default to empty values.
type DesktopEntry struct {
	Name       string
	Comment    string
	Exec       string
	Icon       string
	Categories []string
	MimeTypes  []string
	IconPath   string
}

// ParseDesktopEntry reads the [Desktop Entry] section of a desktop file.
// Exec field codes like %F are opaque values, not interpolation.
func ParseDesktopEntry(path string) (*DesktopEntry, error) {
	file, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:     true,
		SkipUnrecognizableLines: true,
	}, path)
	if err != nil {
		return nil, fmt.Errorf("parse desktop file %s: %w", filepath.Base(path), err)
	}

	section, err := file.GetSection("Desktop Entry")
	if err != nil {
		return nil, fmt.Errorf("desktop file %s has no [Desktop Entry] section", filepath.Base(path))
	}

	entry := &DesktopEntry{
		Name:       section.Key("Name").String(),
		Comment:    section.Key("Comment").String(),
		Exec:       section.Key("Exec").String(),
		Icon:       section.Key("Icon").String(),
		Categories: splitList(section.Key("Categories").String()),
		MimeTypes:  splitList(section.Key("MimeType").String()),
	}
	return entry, nil
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ";") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// FindDesktopFile returns the first .desktop file at the root of the
// extracted tree, where AppImages place it by convention.
func FindDesktopFile(rootDir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(rootDir, "*.desktop"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no desktop file in %s", rootDir)
	}
	return matches[0], nil
}

var iconExtensions = []string{".png", ".svg", ".xpm", ".ico"}

// FindIconFile locates the named icon inside the extracted tree, checking
// the conventional locations first and falling back to a recursive search.
func FindIconFile(rootDir, iconName string) string {
	if iconName == "" {
		return ""
	}
	iconDirs := []string{
		rootDir,
		filepath.Join(rootDir, "usr", "share", "icons"),
		filepath.Join(rootDir, "usr", "share", "pixmaps"),
	}

	for _, dir := range iconDirs {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		for _, ext := range iconExtensions {
			candidate := filepath.Join(dir, iconName+ext)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}

	// Recursive fallback for themes that nest icons by size.
	var found string
	_ = filepath.WalkDir(rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || found != "" {
			return nil
		}
		base := d.Name()
		for _, ext := range iconExtensions {
			if base == iconName+ext {
				found = path
				return filepath.SkipAll
			}
		}
		return nil
	})
	return found
}

// ReadMetadata extracts desktop metadata from an extracted filesystem tree.
// A missing desktop file is not an error for conversion purposes; the caller
// receives empty metadata.
func ReadMetadata(rootDir string) (*DesktopEntry, error) {
	desktopPath, err := FindDesktopFile(rootDir)
	if err != nil {
		return nil, err
	}
	entry, err := ParseDesktopEntry(desktopPath)
	if err != nil {
		return nil, err
	}
	entry.IconPath = FindIconFile(rootDir, entry.Icon)
	return entry, nil
}
