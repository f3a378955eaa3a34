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

// Paths contains workspace directory and source media configuration.
type Paths struct {
	WorkspaceDir    string `toml:"workspace_dir"`
	AssetsDir       string `toml:"assets_dir"`
	LogDir          string `toml:"log_dir"`
	BackgroundVideo string `toml:"background_video"`
	BackgroundMusic string `toml:"background_music"`
	OutputFile      string `toml:"output_file"`
}

// Timing contains the timeline padding constants, all in seconds.
type Timing struct {
	LinePause float64 `toml:"line_pause_sec"`
	Intro     float64 `toml:"intro_sec"`
	Outro     float64 `toml:"outro_sec"`
}

// AudioMix contains the relative gains applied when mixing the final audio.
type AudioMix struct {
	MusicVolume float64 `toml:"music_volume"`
	VoiceVolume float64 `toml:"voice_volume"`
}

// Render contains encoder settings for the final video.
type Render struct {
	Width                int     `toml:"width"`
	Height               int     `toml:"height"`
	CRF                  int     `toml:"crf"`
	Preset               string  `toml:"preset"`
	AudioBitrate         string  `toml:"audio_bitrate"`
	SampleRate           int     `toml:"sample_rate"`
	EncodeTimeoutSeconds int     `toml:"encode_timeout_sec"`
	DurationTolerance    float64 `toml:"duration_tolerance_sec"`
}

// Pipeline contains orchestration behavior toggles.
type Pipeline struct {
	Resume           bool `toml:"resume"`
	ProbeConcurrency int  `toml:"probe_concurrency"`
}

// Reddit contains credentials and selection settings for the comment fetcher.
type Reddit struct {
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	Username     string   `toml:"username"`
	Password     string   `toml:"password"`
	Subreddits   []string `toml:"subreddits"`
	FetchLimit   int      `toml:"fetch_limit"`
}

// LLM contains connection settings for the poem composer.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MinLines       int    `toml:"min_lines"`
	MaxLines       int    `toml:"max_lines"`
	SampleSize     int    `toml:"sample_size"`
}

// Screenshots contains settings for comment card rendering.
type Screenshots struct {
	// FontFile is an optional TrueType font for the card text. When empty,
	// ffmpeg falls back to its fontconfig default.
	FontFile string `toml:"font_file"`
}

// TTS contains settings for the external text-to-speech engine.
type TTS struct {
	Command            string   `toml:"command"`
	ModelPath          string   `toml:"model_path"`
	VoicesPath         string   `toml:"voices_path"`
	Voices             []string `toml:"voices"`
	LineTimeoutSeconds int      `toml:"line_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the pipeline.
//
// Configuration sections by subsystem:
//   - Paths: workspace layout and background media sources
//   - Timing: intro/outro padding and inter-line pause
//   - AudioMix: voice and music gains for the final mix
//   - Render: encoder settings and output validation tolerance
//   - Pipeline: resumability and asset probe concurrency
//   - Reddit: comment fetcher credentials and selection
//   - LLM: poem composer connection settings
//   - Screenshots: comment card rendering settings
//   - TTS: external text-to-speech engine settings
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Timing      Timing      `toml:"timing"`
	AudioMix    AudioMix    `toml:"audio_mix"`
	Render      Render      `toml:"render"`
	Pipeline    Pipeline    `toml:"pipeline"`
	Reddit      Reddit      `toml:"reddit"`
	LLM         LLM         `toml:"llm"`
	Screenshots Screenshots `toml:"screenshots"`
	TTS         TTS         `toml:"tts"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/rhymes/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
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
		_, err = os.Stat(expanded)
		if err != nil {
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

	projectPath, err := filepath.Abs("rhymes.toml")
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

// EnsureDirectories creates the workspace directories required by a run.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkspaceDir, c.ImagesDir(), c.AudioDir(), c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CommentsCSV returns the path of the fetched comment candidates file.
func (c *Config) CommentsCSV() string {
	return filepath.Join(c.Paths.WorkspaceDir, "reddit_poetic_comments.csv")
}

// PoemCSV returns the path of the composed poem file.
func (c *Config) PoemCSV() string {
	return filepath.Join(c.Paths.WorkspaceDir, "reddit_poem.csv")
}

// ImagesDir returns the directory holding per-line screenshot overlays.
func (c *Config) ImagesDir() string {
	return filepath.Join(c.Paths.WorkspaceDir, "comment_images_transparent")
}

// AudioDir returns the directory holding per-line voice-over clips.
func (c *Config) AudioDir() string {
	return filepath.Join(c.Paths.WorkspaceDir, "audio_files")
}

// OutputPath returns the rendered video destination.
func (c *Config) OutputPath() string {
	return filepath.Join(c.Paths.WorkspaceDir, c.Paths.OutputFile)
}

// DatabasePath returns the location of the run store database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.LogDir, "runs.db")
}

// LockPath returns the workspace lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.WorkspaceDir, ".rhymes.lock")
}

// FFmpegBinary returns the ffmpeg executable name used for rendering.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media validation.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// SampleConfig returns the embedded sample configuration file contents.
func SampleConfig() string {
	return sampleConfig
}

// ExpandPath expands a leading ~ to the current user's home directory.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return home, nil
	}
	if strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	return filepath.Abs(trimmed)
}
