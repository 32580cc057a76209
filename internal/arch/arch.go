// Package arch normalizes the architecture strings seen in release assets,
// download URLs, and tool output into a small canonical enum, and translates
// that enum into each package format's own vocabulary.
package arch

import (
	"runtime"
	"strings"
)

// Architecture is the canonical instruction-set identifier used throughout
// the pipeline.
type Architecture string

const (
	X8664   Architecture = "x86_64"
	I386    Architecture = "i386"
	ARMv7   Architecture = "armv7l"
	AArch64 Architecture = "aarch64"
)

// All returns the canonical architectures in stable order.
func All() []Architecture {
	return []Architecture{X8664, I386, ARMv7, AArch64}
}

// aliases maps known architecture spellings to their canonical value.
// Lookup keys are lowercase.
var aliases = map[string]Architecture{
	"x86_64":  X8664,
	"amd64":   X8664,
	"x64":     X8664,
	"intel":   X8664,
	"i386":    I386,
	"i686":    I386,
	"x86":     I386,
	"32bit":   I386,
	"armv7l":  ARMv7,
	"armv7":   ARMv7,
	"armhf":   ARMv7,
	"arm":     ARMv7,
	"aarch64": AArch64,
	"arm64":   AArch64,
}

// patterns are substring fallbacks tried in order when no alias matches.
// aarch64 comes before the bare "arm" patterns so arm64 URLs do not
// misresolve to armv7l.
var patterns = []struct {
	substr string
	arch   Architecture
}{
	{"aarch64", AArch64},
	{"arm64", AArch64},
	{"armv7", ARMv7},
	{"armhf", ARMv7},
	{"arm", ARMv7},
	{"x86_64", X8664},
	{"amd64", X8664},
	{"i686", I386},
	{"i386", I386},
	{"x86", I386},
}

// Normalize maps a raw architecture string to its canonical value. It is a
// pure function: unrecognized or empty input defaults to x86_64.
func Normalize(raw string) Architecture {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return X8664
	}
	if canonical, ok := aliases[trimmed]; ok {
		return canonical
	}
	for _, p := range patterns {
		if strings.Contains(trimmed, p.substr) {
			return p.arch
		}
	}
	return X8664
}

// DetectFromURL applies the architecture pattern set to a URL or filename.
// URLs with no recognizable architecture token default to x86_64, the
// dominant publishing architecture.
func DetectFromURL(url string) Architecture {
	lowered := strings.ToLower(url)
	for _, p := range patterns {
		if strings.Contains(lowered, p.substr) {
			return p.arch
		}
	}
	return X8664
}

// Host returns the canonical architecture of the running machine.
func Host() Architecture {
	switch runtime.GOARCH {
	case "amd64":
		return X8664
	case "386":
		return I386
	case "arm":
		return ARMv7
	case "arm64":
		return AArch64
	default:
		return Normalize(runtime.GOARCH)
	}
}

// debianNames translates canonical architectures into dpkg vocabulary.
var debianNames = map[Architecture]string{
	X8664:   "amd64",
	I386:    "i386",
	ARMv7:   "armhf",
	AArch64: "arm64",
}

// rpmNames translates canonical architectures into rpmbuild vocabulary.
var rpmNames = map[Architecture]string{
	X8664:   "x86_64",
	I386:    "i386",
	ARMv7:   "armv7hl",
	AArch64: "aarch64",
}

// DebianName returns the dpkg architecture token for a canonical value.
func (a Architecture) DebianName() string {
	if name, ok := debianNames[a]; ok {
		return name
	}
	return debianNames[X8664]
}

// RPMName returns the rpmbuild target token for a canonical value.
func (a Architecture) RPMName() string {
	if name, ok := rpmNames[a]; ok {
		return name
	}
	return rpmNames[X8664]
}

func (a Architecture) String() string { return string(a) }
