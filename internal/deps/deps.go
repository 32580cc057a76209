// Package deps probes the host for the external utilities the conversion
// pipeline shells out to and records a capability map. Missing optional
// tools degrade the corresponding package format instead of failing a run.
package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"appbinhub/internal/services"
)

// Canonical tool names used as capability keys.
const (
	ToolUnsquashfs = "unsquashfs"
	ToolDpkgDeb    = "dpkg-deb"
	ToolRpmbuild   = "rpmbuild"
	ToolTar        = "tar"
	ToolFile       = "file"
)

// Requirement defines an external dependency appbinhub relies on.
type Requirement struct {
	Name        string
	Command     string
	VersionArg  string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// DefaultRequirements lists every tool the pipeline can make use of. All are
// optional: each absence disables one capability rather than the run.
func DefaultRequirements() []Requirement {
	return []Requirement{
		{Name: ToolUnsquashfs, Command: "unsquashfs", VersionArg: "-version", Description: "squashfs image extraction (cross-architecture strategy)", Optional: true},
		{Name: ToolDpkgDeb, Command: "dpkg-deb", VersionArg: "--version", Description: "Debian package building and validation", Optional: true},
		{Name: ToolRpmbuild, Command: "rpmbuild", VersionArg: "--version", Description: "RPM package building", Optional: true},
		{Name: ToolTar, Command: "tar", VersionArg: "--version", Description: "fallback archive inspection", Optional: true},
		{Name: ToolFile, Command: "file", VersionArg: "--version", Description: "binary architecture inspection", Optional: true},
	}
}

// Capabilities is the probed availability map consumed by the extractor and
// the package builders.
type Capabilities map[string]Status

// Has reports whether the named tool was found on the host.
func (c Capabilities) Has(name string) bool {
	status, ok := c[name]
	return ok && status.Available
}

// Check evaluates the provided requirements and reports availability. A tool
// counts as available when its binary resolves on PATH and a short version
// probe exits zero before the timeout.
func Check(ctx context.Context, requirements []Requirement, probeTimeout time.Duration) Capabilities {
	results := make(Capabilities, len(requirements))
	for _, req := range requirements {
		results[req.Name] = probe(ctx, req, probeTimeout)
	}
	return results
}

func probe(ctx context.Context, req Requirement, timeout time.Duration) Status {
	cmd := strings.TrimSpace(req.Command)
	status := Status{
		Name:        req.Name,
		Command:     cmd,
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	if cmd == "" {
		status.Detail = "command not configured"
		return status
	}
	if _, err := exec.LookPath(cmd); err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", cmd)
		return status
	}
	if req.VersionArg != "" {
		result, err := services.RunWithTimeout(ctx, services.ExecRunner{}, timeout, "", cmd, req.VersionArg)
		if err != nil {
			if services.IsTimeout(err) {
				status.Detail = fmt.Sprintf("binary %q not responding", cmd)
				return status
			}
			// unsquashfs -version exits 1 while still printing its banner
			if result.FirstOutputLine() == "" {
				status.Detail = fmt.Sprintf("version probe failed: %v", err)
				return status
			}
		}
		status.Detail = ""
	}
	status.Available = true
	return status
}

// Statuses returns the capability map in requirement order for display.
func Statuses(caps Capabilities, requirements []Requirement) []Status {
	out := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		if status, ok := caps[req.Name]; ok {
			out = append(out, status)
		}
	}
	return out
}
