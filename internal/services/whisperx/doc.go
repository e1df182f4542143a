// Package whisperx wraps the WhisperX command line, launched through uvx, and
// decodes the word-aligned JSON it writes.
//
// Model, CUDA and VAD settings come from Config. English locales switch to
// the ".en" model variant.
package whisperx
