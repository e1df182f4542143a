// Package storage mirrors finished renders to an S3-compatible bucket
// (AWS S3, Cloudflare R2, MinIO) and records the public URL on the job.
package storage
