// Package tts wraps the external text-to-speech backend. The core
// never synthesizes audio itself; it hands narration text and voice
// settings to a Synthesizer and records the outcome.
package tts
