package jobs

import (
	"time"

	"vidgen/internal/media"
)

// Artifacts holds the fully-qualified paths produced for a job.
type Artifacts struct {
	Background   string
	Narration    string
	SRT          string
	ASS          string
	Video        string
	PublishedURL string
}

// Item is the unit of work handed from stage to stage.
type Item struct {
	Job       Job
	RequestID string
	StartedAt time.Time

	// Voice is the resolved synthesis voice; Text is the composed narration.
	Voice string
	Text  string

	Artifacts  Artifacts
	Background media.Metadata
	Narration  media.Metadata
}

// NewItem wraps a picked job.
func NewItem(job Job, requestID string) *Item {
	return &Item{Job: job, RequestID: requestID, StartedAt: time.Now()}
}
