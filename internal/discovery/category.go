package discovery

import "strings"

// categoryMapping translates FreeDesktop menu categories into the catalog's
// site categories.
var categoryMapping = map[string]string{
	"AudioVideo":  "audio",
	"Audio":       "audio",
	"Video":       "video",
	"Development": "programming",
	"Education":   "education",
	"Game":        "games",
	"Graphics":    "graphics",
	"Network":     "internet",
	"Office":      "office",
	"Science":     "education",
	"Settings":    "utilities",
	"System":      "utilities",
	"Utility":     "utilities",

	"Photography":    "graphics",
	"Publishing":     "office",
	"WebBrowser":     "internet",
	"TextEditor":     "office",
	"IDE":            "programming",
	"Debugger":       "programming",
	"WebDevelopment": "programming",
}

// substringOrder fixes the scan order for the compound-category fallback so
// a category matching several keys always resolves the same way.
var substringOrder = []string{
	"AudioVideo", "WebBrowser", "WebDevelopment", "TextEditor",
	"Photography", "Publishing", "Development", "Education",
	"Graphics", "Network", "Settings", "Science", "Debugger",
	"Utility", "System", "Office", "Audio", "Video", "Game", "IDE",
}

// defaultCategory is used when no mapping applies.
const defaultCategory = "other"

// MapDesktopCategory translates one FreeDesktop category into a site
// category: exact match first, then substring match for compound categories
// like "X-KDE-Utilities", then the fallback.
func MapDesktopCategory(desktopCategory string) string {
	trimmed := strings.TrimSpace(desktopCategory)
	if trimmed == "" {
		return defaultCategory
	}
	if mapped, ok := categoryMapping[trimmed]; ok {
		return mapped
	}
	for _, key := range substringOrder {
		if strings.Contains(trimmed, key) {
			return categoryMapping[key]
		}
	}
	return defaultCategory
}

// MapDesktopCategories translates a category list, deduplicating the result
// while keeping first-seen order. An empty input yields the fallback.
func MapDesktopCategories(desktopCategories []string) []string {
	if len(desktopCategories) == 0 {
		return []string{defaultCategory}
	}
	seen := make(map[string]struct{}, len(desktopCategories))
	out := make([]string, 0, len(desktopCategories))
	for _, category := range desktopCategories {
		mapped := MapDesktopCategory(category)
		if _, dup := seen[mapped]; dup {
			continue
		}
		seen[mapped] = struct{}{}
		out = append(out, mapped)
	}
	return out
}
