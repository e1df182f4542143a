// Package logs reads the worker's JSON log files for the CLI.
//
// Tail returns the last N lines of a file plus the byte offset to resume
// from; Follow keeps polling from that offset and switches to a new file when
// the resolved path changes, which is how the daily log rolls over at
// midnight.
package logs
