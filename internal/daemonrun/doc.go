// Package daemonrun assembles the worker runtime: logger, journal, queue
// client, stage handlers and the single-instance daemon.
package daemonrun
