// Package daemonctl controls a running vidgen worker from another process
// through its lock and pid files.
package daemonctl
