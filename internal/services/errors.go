package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"appbinhub/internal/catalog"
)

var (
	ErrToolUnavailable = errors.New("tool unavailable")
	ErrDownload        = errors.New("download failure")
	ErrExtraction      = errors.New("extraction failure")
	ErrBuild           = errors.New("build failure")
	ErrValidation      = errors.New("validation failure")
	ErrArchitecture    = errors.New("architecture unsupported")
	ErrTimeout         = errors.New("timeout")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later status classification. The marker should
// be one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrBuild
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ArtifactStatus maps a per-format error to the artifact status the
// orchestrator should record for that format.
func ArtifactStatus(err error) catalog.ArtifactStatus {
	switch {
	case err == nil:
		return catalog.ArtifactAvailable
	case errors.Is(err, ErrToolUnavailable):
		return catalog.ArtifactToolUnavailable
	case errors.Is(err, ErrArchitecture):
		return catalog.ArtifactSkippedArch
	default:
		return catalog.ArtifactFailed
	}
}

// IsTimeout reports whether err stems from a deadline, either our own marker
// or a context deadline bubbled up from exec.CommandContext.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
