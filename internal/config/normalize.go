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
	c.normalizeCredentials()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WorkspaceDir, err = expandPath(c.Paths.WorkspaceDir); err != nil {
		return fmt.Errorf("paths.workspace_dir: %w", err)
	}
	if c.Paths.AssetsDir, err = expandPath(c.Paths.AssetsDir); err != nil {
		return fmt.Errorf("paths.assets_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.BackgroundVideo, err = expandPath(c.Paths.BackgroundVideo); err != nil {
		return fmt.Errorf("paths.background_video: %w", err)
	}
	if c.Paths.BackgroundMusic, err = expandPath(c.Paths.BackgroundMusic); err != nil {
		return fmt.Errorf("paths.background_music: %w", err)
	}
	if c.Screenshots.FontFile, err = expandPath(c.Screenshots.FontFile); err != nil {
		return fmt.Errorf("screenshots.font_file: %w", err)
	}
	if c.TTS.ModelPath, err = expandPath(c.TTS.ModelPath); err != nil {
		return fmt.Errorf("tts.model_path: %w", err)
	}
	if c.TTS.VoicesPath, err = expandPath(c.TTS.VoicesPath); err != nil {
		return fmt.Errorf("tts.voices_path: %w", err)
	}
	c.Paths.OutputFile = strings.TrimSpace(c.Paths.OutputFile)
	if c.Paths.OutputFile == "" {
		c.Paths.OutputFile = defaultOutputFile
	}
	return nil
}

func (c *Config) normalizeCredentials() {
	if c.Reddit.ClientID == "" {
		if value, ok := os.LookupEnv("REDDIT_CLIENT_ID"); ok {
			c.Reddit.ClientID = value
		}
	}
	if c.Reddit.ClientSecret == "" {
		if value, ok := os.LookupEnv("REDDIT_CLIENT_SECRET"); ok {
			c.Reddit.ClientSecret = value
		}
	}
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.LLM.APIKey = value
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
