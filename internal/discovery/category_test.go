package discovery_test

import (
	"reflect"
	"testing"

	"appbinhub/internal/discovery"
)

func TestMapDesktopCategory(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"AudioVideo", "audio"},
		{"Development", "programming"},
		{"Utility", "utilities"},
		{"X-KDE-Utility", "utilities"},
		{"VideoEditing", "video"},
		{"", "other"},
		{"Esoteric", "other"},
	}
	for _, tc := range cases {
		if got := discovery.MapDesktopCategory(tc.in); got != tc.want {
			t.Errorf("MapDesktopCategory(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMapDesktopCategories(t *testing.T) {
	got := discovery.MapDesktopCategories([]string{"AudioVideo", "Audio", "Recorder"})
	want := []string{"audio", "other"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MapDesktopCategories = %v, want %v", got, want)
	}

	if got := discovery.MapDesktopCategories(nil); !reflect.DeepEqual(got, []string{"other"}) {
		t.Fatalf("empty input = %v, want [other]", got)
	}
}
