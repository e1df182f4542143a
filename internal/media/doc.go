// Package media reduces ffprobe output to the duration and geometry the
// compositor needs, and formats timestamps for ffmpeg.
package media
