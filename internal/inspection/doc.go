// Package inspection is the pipeline stage that reads durations of the
// background clip and the narration before composition.
package inspection
