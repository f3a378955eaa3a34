package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTiming(); err != nil {
		return err
	}
	if err := c.validateAudioMix(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTiming() error {
	if c.Timing.LinePause < 0 {
		return errors.New("timing.line_pause_sec must not be negative")
	}
	if c.Timing.Intro < 0 {
		return errors.New("timing.intro_sec must not be negative")
	}
	if c.Timing.Outro < 0 {
		return errors.New("timing.outro_sec must not be negative")
	}
	return nil
}

func (c *Config) validateAudioMix() error {
	if c.AudioMix.MusicVolume < 0 {
		return errors.New("audio_mix.music_volume must not be negative")
	}
	if c.AudioMix.VoiceVolume <= 0 {
		return errors.New("audio_mix.voice_volume must be positive")
	}
	if c.AudioMix.MusicVolume >= c.AudioMix.VoiceVolume {
		return errors.New("audio_mix.music_volume must be below audio_mix.voice_volume")
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return errors.New("render.width and render.height must be positive")
	}
	if c.Render.CRF < 0 || c.Render.CRF > 51 {
		return errors.New("render.crf must be between 0 and 51")
	}
	if c.Render.SampleRate <= 0 {
		return errors.New("render.sample_rate must be positive")
	}
	if c.Render.EncodeTimeoutSeconds <= 0 {
		return errors.New("render.encode_timeout_sec must be positive")
	}
	if c.Render.DurationTolerance < 0 {
		return errors.New("render.duration_tolerance_sec must not be negative")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.ProbeConcurrency <= 0 {
		return errors.New("pipeline.probe_concurrency must be positive")
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.MinLines <= 0 {
		return errors.New("llm.min_lines must be positive")
	}
	if c.LLM.MaxLines < c.LLM.MinLines {
		return errors.New("llm.max_lines must not be below llm.min_lines")
	}
	if c.LLM.SampleSize < c.LLM.MaxLines {
		return fmt.Errorf("llm.sample_size must be at least llm.max_lines (%d)", c.LLM.MaxLines)
	}
	return nil
}
