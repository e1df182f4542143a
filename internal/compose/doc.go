// Package compose renders the final vertical video.
//
// The background is trimmed to the narration length at a random offset,
// cropped to 9:16, scaled to 1080x1920, blurred and overlaid with the ASS
// captions using the shared caption style. Encoding defaults to hevc_nvenc.
package compose
