// Package pyannote runs speaker diarization with pyannote.audio.
//
// The script backend writes a bundled Python helper to a scratch directory
// and runs it through uv, passing the Hugging Face token in the environment.
// The sidecar backend posts audio to a long-running pyannote HTTP service.
// Both produce speaker turns in the order pyannote reports them.
package pyannote
