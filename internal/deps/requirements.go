package deps

import (
	"speakerscribe/internal/config"
)

// Requirements lists the programs cfg needs. Sidecar backends need no local
// binaries for their stage.
func Requirements(cfg *config.Config) []Requirement {
	var reqs []Requirement
	if cfg.Acquisition.Strategy != config.StrategyFile {
		reqs = append(reqs, Requirement{
			Name:        "yt-dlp",
			Command:     cfg.Acquisition.YTDLPCommand,
			Description: "Downloads and extracts source audio",
			Optional:    cfg.Acquisition.Strategy == config.StrategyAuto,
		})
	}
	reqs = append(reqs, Requirement{
		Name:        "FFmpeg",
		Command:     "ffmpeg",
		Description: "Used by yt-dlp for audio extraction and by whisper for decoding",
	})

	if cfg.Transcription.Backend != config.BackendSidecar {
		if cfg.Transcription.UseUVX {
			reqs = append(reqs, Requirement{
				Name:        "uvx",
				Command:     config.UVXCommand,
				Description: "Runs the whisper CLI without a global install",
			})
		} else {
			reqs = append(reqs, Requirement{
				Name:        "whisper",
				Command:     cfg.Transcription.Command,
				Description: "openai-whisper command line transcriber",
			})
		}
	}

	if cfg.Diarization.Backend != config.BackendSidecar {
		if cfg.Diarization.UseUVX {
			reqs = append(reqs, Requirement{
				Name:        "uv",
				Command:     config.UVCommand,
				Description: "Provides pyannote.audio for the diarization script",
			})
		} else {
			reqs = append(reqs, Requirement{
				Name:        "Python",
				Command:     cfg.Diarization.PythonCommand,
				Description: "Interpreter with pyannote.audio installed",
			})
		}
	}
	return reqs
}

// Check evaluates every requirement of cfg.
func Check(cfg *config.Config) []Status {
	return CheckBinaries(Requirements(cfg))
}
