// Package workflow drives render jobs from the queue through the configured
// stages.
//
// The Manager owns a single goroutine that polls the queue API, claims one
// job at a time by marking it rendering, and runs the registered stage
// handlers (acquire, narrate, caption, inspect, compose and the optional
// publish) in order. Every Prepare runs before the first Execute so a job
// with an unusable payload is rejected before any download or synthesis.
// On success the finished video path is reported and the job is marked
// done; any stage failure marks it error and the loop moves on.
//
// A stop request is observed between jobs only: the job context is detached
// from cancellation so an in-flight render finishes and reports its status.
// Each job also gets its own JSON log file, a journal entry and an optional
// ntfy notification.
package workflow
