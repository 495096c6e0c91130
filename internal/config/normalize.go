package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAcquisition()
	c.normalizeTranscription()
	c.normalizeDiarization()
	if err := c.normalizeOutput(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAcquisition() {
	c.Acquisition.Strategy = strings.ToLower(strings.TrimSpace(c.Acquisition.Strategy))
	switch c.Acquisition.Strategy {
	case "":
		c.Acquisition.Strategy = defaultAcquisitionStrategy
	case "yt-dlp", "youtube":
		c.Acquisition.Strategy = StrategyYTDLP
	case "local":
		c.Acquisition.Strategy = StrategyFile
	}
	c.Acquisition.YTDLPCommand = defaultString(c.Acquisition.YTDLPCommand, defaultYTDLPCommand)
	c.Acquisition.AudioFormat = strings.ToLower(defaultString(c.Acquisition.AudioFormat, defaultAudioFormat))
	c.Acquisition.AudioFileName = defaultString(c.Acquisition.AudioFileName, defaultAudioFileName)
}

func (c *Config) normalizeTranscription() {
	c.Transcription.Backend = strings.ToLower(defaultString(c.Transcription.Backend, defaultTranscriptionBackend))
	c.Transcription.Model = defaultString(c.Transcription.Model, defaultTranscriptionModel)
	c.Transcription.Language = strings.ToLower(strings.TrimSpace(c.Transcription.Language))
	c.Transcription.Device = strings.ToLower(strings.TrimSpace(c.Transcription.Device))
	c.Transcription.Command = defaultString(c.Transcription.Command, defaultWhisperCommand)
	c.Transcription.Package = defaultString(c.Transcription.Package, defaultWhisperPackage)
	c.Transcription.SidecarURL = strings.TrimRight(defaultString(c.Transcription.SidecarURL, defaultWhisperSidecarURL), "/")
	if c.Transcription.TimeoutSeconds <= 0 {
		c.Transcription.TimeoutSeconds = defaultTranscriptionTimeout
	}
}

func (c *Config) normalizeDiarization() {
	c.Diarization.Backend = strings.ToLower(defaultString(c.Diarization.Backend, defaultDiarizationBackend))
	c.Diarization.HFToken = strings.TrimSpace(c.Diarization.HFToken)
	if c.Diarization.HFToken == "" {
		for _, key := range []string{"HUGGING_FACE_HUB_TOKEN", "HF_TOKEN"} {
			if value := strings.TrimSpace(os.Getenv(key)); value != "" {
				c.Diarization.HFToken = value
				break
			}
		}
	}
	c.Diarization.Pipeline = defaultString(c.Diarization.Pipeline, defaultDiarizationPipeline)
	c.Diarization.PythonCommand = defaultString(c.Diarization.PythonCommand, defaultPythonCommand)
	c.Diarization.Package = defaultString(c.Diarization.Package, defaultPyannotePackage)
	c.Diarization.SidecarURL = strings.TrimRight(defaultString(c.Diarization.SidecarURL, defaultPyannoteSidecarURL), "/")
	if c.Diarization.TimeoutSeconds <= 0 {
		c.Diarization.TimeoutSeconds = defaultDiarizationTimeout
	}
}

func (c *Config) normalizeOutput() error {
	var err error
	if c.Output.Dir, err = expandPath(defaultString(c.Output.Dir, defaultOutputDir)); err != nil {
		return fmt.Errorf("output.dir: %w", err)
	}
	formats := make([]string, 0, len(c.Output.ExtraFormats))
	seen := make(map[string]struct{}, len(c.Output.ExtraFormats))
	for _, format := range c.Output.ExtraFormats {
		normalized := strings.ToLower(strings.TrimSpace(format))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		formats = append(formats, normalized)
	}
	c.Output.ExtraFormats = formats
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format != "json" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	switch c.Logging.Level {
	case "":
		c.Logging.Level = defaultLogLevel
	case "warning":
		c.Logging.Level = "warn"
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func defaultString(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
