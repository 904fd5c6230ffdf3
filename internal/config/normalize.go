package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeAlignment()
	c.normalizeSegmenter()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		c.Paths.LibraryDir = defaultLibraryDir
	}
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		c.Paths.StagingDir = defaultStagingDir
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.AlignerPython = strings.TrimSpace(c.Tools.AlignerPython)
	if c.Tools.AlignerPython == "" {
		c.Tools.AlignerPython = defaultAlignerPython
	}
	c.Tools.AlignerModule = strings.TrimSpace(c.Tools.AlignerModule)
	if c.Tools.AlignerModule == "" {
		c.Tools.AlignerModule = defaultAlignerModule
	}
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpeg
	}
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = defaultFFprobe
	}
	c.Tools.TTS = strings.TrimSpace(c.Tools.TTS)
	if c.Tools.TTS == "" {
		c.Tools.TTS = defaultTTS
	}
}

func (c *Config) normalizeAlignment() {
	if c.Alignment.SilenceGapMS <= 0 {
		c.Alignment.SilenceGapMS = defaultSilenceGapMS
	}
	if c.Alignment.MinSentenceMS <= 0 {
		c.Alignment.MinSentenceMS = defaultMinSentence
	}
	if c.Alignment.SampleRate <= 0 {
		c.Alignment.SampleRate = defaultSampleRate
	}
	c.Alignment.VoiceSource = strings.TrimSpace(c.Alignment.VoiceSource)
	if c.Alignment.VoiceSource == "" {
		c.Alignment.VoiceSource = defaultVoiceSource
	}
	c.Alignment.VoiceTarget = strings.TrimSpace(c.Alignment.VoiceTarget)
	if c.Alignment.VoiceTarget == "" {
		c.Alignment.VoiceTarget = defaultVoiceTarget
	}
}

func (c *Config) normalizeSegmenter() {
	if c.Segmenter.MaxPartMB <= 0 {
		c.Segmenter.MaxPartMB = defaultMaxPartMB
	}
	if c.Segmenter.ExtractWorkers <= 0 {
		c.Segmenter.ExtractWorkers = defaultExtractWorkers
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
