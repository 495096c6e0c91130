package config

const (
	defaultConfigPath           = "~/.config/speakerscribe/config.toml"
	projectConfigName           = "speakerscribe.toml"
	defaultStateDir             = "~/.local/share/speakerscribe"
	defaultLogDir               = "~/.local/share/speakerscribe/logs"
	defaultAcquisitionStrategy  = StrategyAuto
	defaultYTDLPCommand         = "yt-dlp"
	defaultAudioFormat          = "mp3"
	defaultAudioFileName        = "meeting_audio.mp3"
	defaultTranscriptionBackend = BackendCLI
	defaultTranscriptionModel   = "large"
	defaultWhisperCommand       = "whisper"
	defaultWhisperPackage       = "openai-whisper"
	defaultWhisperSidecarURL    = "http://localhost:8387"
	defaultTranscriptionTimeout = 1800
	defaultDiarizationBackend   = BackendScript
	defaultDiarizationPipeline  = "pyannote/speaker-diarization"
	defaultPythonCommand        = "python"
	defaultPyannotePackage      = "pyannote.audio"
	defaultPyannoteSidecarURL   = "http://localhost:8388"
	defaultDiarizationTimeout   = 1800
	defaultOutputDir            = "."
	defaultNotifyTimeout        = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 30
)

// Acquisition strategies.
const (
	StrategyAuto  = "auto"
	StrategyYTDLP = "ytdlp"
	StrategyFile  = "file"
)

// Engine backends.
const (
	BackendCLI     = "cli"
	BackendScript  = "script"
	BackendSidecar = "sidecar"
)

// Optional output formats.
const (
	FormatSRT           = "srt"
	FormatAnnotatedJSON = "annotated_json"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Acquisition: Acquisition{
			Strategy:      defaultAcquisitionStrategy,
			YTDLPCommand:  defaultYTDLPCommand,
			AudioFormat:   defaultAudioFormat,
			AudioFileName: defaultAudioFileName,
		},
		Transcription: Transcription{
			Backend:        defaultTranscriptionBackend,
			Model:          defaultTranscriptionModel,
			Command:        defaultWhisperCommand,
			UseUVX:         true,
			Package:        defaultWhisperPackage,
			SidecarURL:     defaultWhisperSidecarURL,
			TimeoutSeconds: defaultTranscriptionTimeout,
		},
		Diarization: Diarization{
			Backend:        defaultDiarizationBackend,
			Pipeline:       defaultDiarizationPipeline,
			PythonCommand:  defaultPythonCommand,
			UseUVX:         true,
			Package:        defaultPyannotePackage,
			SidecarURL:     defaultPyannoteSidecarURL,
			TimeoutSeconds: defaultDiarizationTimeout,
		},
		Output: Output{
			Dir: defaultOutputDir,
		},
		Pipeline: Pipeline{
			Parallel: true,
			History:  true,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
