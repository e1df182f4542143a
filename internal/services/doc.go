// Package services defines shared utilities consumed by the workflow stage
// handlers and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper, and Classify/Details,
//     which fold any stage failure into the worker's error taxonomy
//     (configuration, transient, media, no work).
//   - CommandRunner, the seam that lets stage packages run external tools
//     in production and fake them in tests.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
