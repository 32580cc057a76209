// Package logging builds the slog loggers used across appbinhub.
//
// It provides a console handler for interactive runs, a JSON handler for
// automation (the scheduled GitHub Actions runs consume the log file), and
// small helpers for attaching application and stage context so every record
// carries the identifiers needed to trace one conversion through the
// pipeline.
package logging
