package config

const (
	defaultWorkspaceDir      = "~/.local/share/rhymes/workspace"
	defaultAssetsDir         = "~/.local/share/rhymes/assets"
	defaultLogDir            = "~/.local/share/rhymes/logs"
	defaultOutputFile        = "reddit_poem_video.mp4"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultMusicVolume       = 0.08
	defaultVoiceVolume       = 1.5
	defaultWidth             = 1080
	defaultHeight            = 1920
	defaultCRF               = 18
	defaultPreset            = "slow"
	defaultAudioBitrate      = "256k"
	defaultSampleRate        = 48000
	defaultEncodeTimeout     = 900
	defaultDurationTolerance = 0.5
	defaultProbeConcurrency  = 4
	defaultFetchLimit        = 1000
	defaultLLMBaseURL        = "https://api.openai.com/v1"
	defaultLLMModel          = "gpt-4o-mini"
	defaultLLMTimeout        = 120
	defaultLLMMinLines       = 8
	defaultLLMMaxLines       = 16
	defaultLLMSampleSize     = 30
	defaultTTSCommand        = "kokoro-tts"
	defaultTTSLineTimeout    = 120
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkspaceDir: defaultWorkspaceDir,
			AssetsDir:    defaultAssetsDir,
			LogDir:       defaultLogDir,
			OutputFile:   defaultOutputFile,
		},
		Timing: Timing{
			LinePause: 0,
			Intro:     0,
			Outro:     0,
		},
		AudioMix: AudioMix{
			MusicVolume: defaultMusicVolume,
			VoiceVolume: defaultVoiceVolume,
		},
		Render: Render{
			Width:                defaultWidth,
			Height:               defaultHeight,
			CRF:                  defaultCRF,
			Preset:               defaultPreset,
			AudioBitrate:         defaultAudioBitrate,
			SampleRate:           defaultSampleRate,
			EncodeTimeoutSeconds: defaultEncodeTimeout,
			DurationTolerance:    defaultDurationTolerance,
		},
		Pipeline: Pipeline{
			Resume:           false,
			ProbeConcurrency: defaultProbeConcurrency,
		},
		Reddit: Reddit{
			Subreddits: []string{"askreddit"},
			FetchLimit: defaultFetchLimit,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeout,
			MinLines:       defaultLLMMinLines,
			MaxLines:       defaultLLMMaxLines,
			SampleSize:     defaultLLMSampleSize,
		},
		TTS: TTS{
			Command:            defaultTTSCommand,
			Voices:             []string{"af_bella", "af_nicole", "af_sky", "am_adam", "am_michael", "bf_emma", "bm_george"},
			LineTimeoutSeconds: defaultTTSLineTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
