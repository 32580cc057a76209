// Package services holds the error taxonomy and the external-command
// executor shared by every pipeline stage.
//
// Failures are tagged with sentinel markers so the orchestrator can classify
// them back into catalog statuses without string matching: a tool_unavailable
// marker degrades one format gracefully, a download or extraction marker
// aborts one application, and nothing aborts the batch.
package services
