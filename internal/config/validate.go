package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateAlignment(); err != nil {
		return err
	}
	if err := c.validateSegmenter(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.LibraryDir == "" {
		return errors.New("paths.library_dir must be set")
	}
	if c.Paths.StagingDir == "" {
		return errors.New("paths.staging_dir must be set")
	}
	return nil
}

func (c *Config) validateAlignment() error {
	if c.Alignment.SilenceGapMS < 50 || c.Alignment.SilenceGapMS > 10000 {
		return fmt.Errorf("alignment.silence_gap_ms must be between 50 and 10000, got %d", c.Alignment.SilenceGapMS)
	}
	if c.Alignment.SampleRate < 8000 || c.Alignment.SampleRate > 48000 {
		return fmt.Errorf("alignment.sample_rate must be between 8000 and 48000, got %d", c.Alignment.SampleRate)
	}
	return nil
}

func (c *Config) validateSegmenter() error {
	if c.Segmenter.MaxPartMB < 1 || c.Segmenter.MaxPartMB > 512 {
		return fmt.Errorf("segmenter.max_part_mb must be between 1 and 512, got %d", c.Segmenter.MaxPartMB)
	}
	if c.Segmenter.ExtractWorkers > 16 {
		return fmt.Errorf("segmenter.extract_workers must not exceed 16, got %d", c.Segmenter.ExtractWorkers)
	}
	return nil
}
