// Package narration turns job text into speech.
//
// Voices are either taken verbatim from the job or drawn at random from a
// catalog filtered by gender and locale. Synthesis shells out to edge-tts
// through uvx and writes the mp3 straight to the requested path.
package narration
