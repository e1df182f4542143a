// Package language normalizes locale identifiers used by jobs, voices and the
// transcription model.
package language
