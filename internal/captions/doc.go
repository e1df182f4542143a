// Package captions turns word-aligned transcripts into burnable subtitles.
//
// Raw WhisperX segments pass through three regrouping passes (gap split at
// 0.5s, length split at 38 characters, merge of tiny neighbours) and the
// result is written twice: a word-highlighted SRT and a karaoke ASS script
// using the shared Style preset.
package captions
