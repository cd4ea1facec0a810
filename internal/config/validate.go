package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateTTS(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateVideo() error {
	if err := ensurePositiveMap(map[string]int{
		"video.screen_width":  c.Video.ScreenWidth,
		"video.screen_height": c.Video.ScreenHeight,
		"video.fps":           c.Video.FPS,
		"video.timescale":     c.Video.Timescale,
	}); err != nil {
		return err
	}
	if c.Video.PixFmt == "" {
		return errors.New("video.pix_fmt must be set")
	}
	if c.Video.Codec == "" {
		return errors.New("video.codec must be set")
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.SampleRate <= 0 {
		return errors.New("audio.sample_rate must be positive")
	}
	if c.Audio.Channels <= 0 {
		return errors.New("audio.channels must be positive")
	}
	if c.Audio.SilenceSec < 0 {
		return errors.New("audio.silence_sec must be >= 0")
	}
	if c.Audio.Codec == "" {
		return errors.New("audio.codec must be set")
	}
	return nil
}

func (c *Config) validateTTS() error {
	if c.TTS.Provider == "" {
		return errors.New("tts.provider must be set")
	}
	if c.TTS.Model == "" {
		return errors.New("tts.model must be set")
	}
	if c.TTS.Voice == "" {
		return errors.New("tts.voice must be set")
	}
	if c.TTS.Workers <= 0 {
		return errors.New("tts.workers must be positive")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
