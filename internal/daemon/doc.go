// Package daemon owns the lifecycle of the long-running vidgen worker.
//
// It wraps the workflow manager with a gofrs/flock lock under state_dir so
// only one worker per host polls the queue, records the worker pid for the
// status command, and releases both on shutdown. Exclusion across hosts is
// left to the queue's atomic pickup.
package daemon
