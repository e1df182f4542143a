// Package logging builds the slog loggers used by the worker and CLI.
//
// Console output uses a compact human-readable handler; the daily file under
// log_dir receives the same records as JSON. Context helpers tag records with
// the job id, stage and correlation id carried by services context values, and
// WarnWithContext/ErrorWithContext guarantee event_type and error_hint fields
// on every warning and error.
package logging
