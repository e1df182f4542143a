// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect runs ffprobe and returns the parsed Result; FirstStream and Tag give
// access to the per-stream fields the media inspector needs.
package ffprobe
