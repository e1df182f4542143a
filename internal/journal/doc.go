// Package journal keeps a local SQLite history of render attempts.
//
// The queue API is the source of truth for job state; the journal only
// records what this worker did with each job (timings, resolved voice,
// failure stage and kind, output paths) so operators can inspect recent
// activity with `vidgen history` without querying the queue.
package journal
