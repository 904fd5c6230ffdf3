package config

const (
	defaultDataDir    = "~/.local/share/readalong/data"
	defaultLibraryDir = "~/.local/share/readalong/library"
	defaultStagingDir = "~/.local/share/readalong/staging"
	defaultLogDir     = "~/.local/share/readalong/logs"

	defaultAlignerPython = "python3"
	defaultAlignerModule = "aeneas.tools.execute_task"
	defaultFFmpeg        = "ffmpeg"
	defaultFFprobe       = "ffprobe"
	defaultTTS           = "kokoro-tts"

	defaultSilenceGapMS = 500
	defaultMinSentence  = 50
	defaultSampleRate   = 24000
	defaultVoiceSource  = "af_heart"
	defaultVoiceTarget  = "zf_xiaoxiao"

	defaultMaxPartMB      = 8
	defaultExtractWorkers = 1

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			LibraryDir: defaultLibraryDir,
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		Tools: Tools{
			AlignerPython: defaultAlignerPython,
			AlignerModule: defaultAlignerModule,
			FFmpeg:        defaultFFmpeg,
			FFprobe:       defaultFFprobe,
			TTS:           defaultTTS,
		},
		Alignment: Alignment{
			SilenceGapMS:  defaultSilenceGapMS,
			MinSentenceMS: defaultMinSentence,
			SampleRate:    defaultSampleRate,
			VoiceSource:   defaultVoiceSource,
			VoiceTarget:   defaultVoiceTarget,
		},
		Segmenter: Segmenter{
			MaxPartMB:      defaultMaxPartMB,
			ExtractWorkers: defaultExtractWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
