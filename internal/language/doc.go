// Package language normalizes spoken-language hints for the transcription
// engine. Input may be a BCP 47 tag, an ISO 639 code, or an English language
// name; output is the shortest ISO 639 code whisper accepts.
package language
