// Package jobs models queued render jobs and the HTTP client used to pick
// them and report their status.
//
// A picked Job becomes an Item that carries resolved voice, composed text,
// artifact paths and probed media metadata through the pipeline stages.
// Layout derives every artifact path from series and part alone.
package jobs
