package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAcquisition(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateDiarization(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

// RequireHFToken reports a configuration error when no diarization credential
// is available. It is checked per run rather than in Validate so commands that
// never diarize work without one.
func (c *Config) RequireHFToken() error {
	if strings.TrimSpace(c.Diarization.HFToken) != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("hugging face token is required. Pass --hf-token, set HF_TOKEN, or edit diarization.hf_token in %s", defaultPath)
}

func (c *Config) validateAcquisition() error {
	switch c.Acquisition.Strategy {
	case StrategyAuto, StrategyYTDLP, StrategyFile:
	default:
		return fmt.Errorf("acquisition.strategy must be one of auto, ytdlp, file (got %q)", c.Acquisition.Strategy)
	}
	if strings.ContainsAny(c.Acquisition.AudioFileName, `/\`) {
		return errors.New("acquisition.audio_file_name must be a bare file name")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.Backend {
	case BackendCLI, BackendSidecar:
	default:
		return fmt.Errorf("transcription.backend must be cli or sidecar (got %q)", c.Transcription.Backend)
	}
	switch c.Transcription.Device {
	case "", "cpu", "cuda", "mps":
	default:
		return fmt.Errorf("transcription.device must be cpu, cuda, or mps (got %q)", c.Transcription.Device)
	}
	return nil
}

func (c *Config) validateDiarization() error {
	switch c.Diarization.Backend {
	case BackendScript, BackendSidecar:
	default:
		return fmt.Errorf("diarization.backend must be script or sidecar (got %q)", c.Diarization.Backend)
	}
	if err := ensureNonNegativeMap(map[string]int{
		"diarization.num_speakers": c.Diarization.NumSpeakers,
		"diarization.min_speakers": c.Diarization.MinSpeakers,
		"diarization.max_speakers": c.Diarization.MaxSpeakers,
	}); err != nil {
		return err
	}
	if c.Diarization.MaxSpeakers > 0 && c.Diarization.MinSpeakers > c.Diarization.MaxSpeakers {
		return errors.New("diarization.min_speakers must not exceed diarization.max_speakers")
	}
	return nil
}

func (c *Config) validateOutput() error {
	for _, format := range c.Output.ExtraFormats {
		switch format {
		case FormatSRT, FormatAnnotatedJSON:
		default:
			return fmt.Errorf("output.extra_formats: unsupported format %q (use srt or annotated_json)", format)
		}
	}
	return nil
}

func (c *Config) validateNotifications() error {
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	if !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		return fmt.Errorf("notifications.ntfy_topic must be an http(s) URL (got %q)", topic)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
}

func ensureNonNegativeMap(values map[string]int) error {
	for key, value := range values {
		if value < 0 {
			return fmt.Errorf("%s must be >= 0", key)
		}
	}
	return nil
}
