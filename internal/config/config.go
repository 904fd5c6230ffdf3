package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// DataDir holds the SQLite database.
	DataDir string `toml:"data_dir"`
	// LibraryDir is the root for combined audio, audio parts, subtitles,
	// and export packages.
	LibraryDir string `toml:"library_dir"`
	// StagingDir hosts per-run temporary working trees.
	StagingDir string `toml:"staging_dir"`
	LogDir     string `toml:"log_dir"`
}

// Tools names the external binaries the pipeline invokes.
type Tools struct {
	// AlignerPython is the interpreter used to run the forced aligner module.
	AlignerPython string `toml:"aligner_python"`
	// AlignerModule is the module invoked as `python -m <module>`.
	AlignerModule string `toml:"aligner_module"`
	FFmpeg        string `toml:"ffmpeg"`
	FFprobe       string `toml:"ffprobe"`
	// TTS is the speech synthesis binary invoked once per sentence.
	TTS string `toml:"tts"`
}

// Alignment contains timing-path settings.
type Alignment struct {
	// SilenceGapMS is the inter-sentence silence appended after each
	// synthesized clip. It advances the cursor but is excluded from the
	// sentence's own span.
	SilenceGapMS int `toml:"silence_gap_ms"`
	// MinSentenceMS substitutes for zero-or-negative sentence durations in
	// size estimation.
	MinSentenceMS int `toml:"min_sentence_ms"`
	// SampleRate is the PCM rate the TTS binary emits.
	SampleRate int `toml:"sample_rate"`
	// VoiceSource and VoiceTarget are the synthesis voice identifiers.
	VoiceSource string `toml:"voice_source"`
	VoiceTarget string `toml:"voice_target"`
}

// Segmenter contains audio splitting settings.
type Segmenter struct {
	// MaxPartMB bounds each output audio part.
	MaxPartMB int `toml:"max_part_mb"`
	// ExtractWorkers sizes the part extraction pool. 1 keeps extraction
	// sequential with deterministic log ordering.
	ExtractWorkers int `toml:"extract_workers"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration for the pipeline.
//
// Sections by subsystem:
//   - Paths: data, library, staging, and log directories
//   - Tools: external binaries (ffmpeg, ffprobe, forced aligner, TTS)
//   - Alignment: silence gap, sample rate, voices
//   - Segmenter: part size bound and extraction workers
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Tools     Tools     `toml:"tools"`
	Alignment Alignment `toml:"alignment"`
	Segmenter Segmenter `toml:"segmenter"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/readalong/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. When path is empty the
// default location is consulted; a missing file yields defaults.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err = os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("readalong.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the pipeline writes to.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.DataDir, c.Paths.LibraryDir, c.Paths.StagingDir, c.Paths.LogDir,
		c.AudioDir(), c.PartsDir(), c.SubtitleDir(), c.ExportDir(), c.LockDir(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the SQLite database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "readalong.db")
}

// AudioDir returns the directory for combined article audio.
func (c *Config) AudioDir() string {
	return filepath.Join(c.Paths.LibraryDir, "audio")
}

// PartsDir returns the directory root for split audio parts.
func (c *Config) PartsDir() string {
	return filepath.Join(c.Paths.LibraryDir, "parts")
}

// SubtitleDir returns the directory for rendered bilingual subtitles.
func (c *Config) SubtitleDir() string {
	return filepath.Join(c.Paths.LibraryDir, "subtitles")
}

// ExportDir returns the directory for book packages.
func (c *Config) ExportDir() string {
	return filepath.Join(c.Paths.LibraryDir, "exports")
}

// LockDir returns the directory for per-article processing locks.
func (c *Config) LockDir() string {
	return filepath.Join(c.Paths.DataDir, "locks")
}

// MaxPartBytes returns the segmenter byte budget.
func (c *Config) MaxPartBytes() int64 {
	return int64(c.Segmenter.MaxPartMB) * 1024 * 1024
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
