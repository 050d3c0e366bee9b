package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cellux/mixcore"
	"github.com/mitchellh/go-homedir"
)

// AudioConfig describes the output device and the internal format
type AudioConfig struct {
	SampleRate   int    `json:"sampleRate"`
	BufferSize   int    `json:"bufferSize"`
	Channels     int    `json:"channels"`
	DeviceFormat string `json:"deviceFormat"`
	RenderFormat string `json:"renderFormat"`
}

// PlaybackConfig describes the sequencer clock and the signal pool
type PlaybackConfig struct {
	BPM          float64 `json:"bpm"`
	StepsPerBeat int     `json:"stepsPerBeat"`
	Length       int     `json:"length"`
	Loop         bool    `json:"loop,omitempty"`
	LoopStart    int     `json:"loopStart,omitempty"`
	LoopEnd      int     `json:"loopEnd,omitempty"`
	PoolSize     int     `json:"poolSize,omitempty"`
	PoolChunks   int     `json:"poolChunks,omitempty"`
}

// OscillatorConfig holds the default voice of a channel
type OscillatorConfig struct {
	Waveform    string  `json:"waveform"`
	Freq        float64 `json:"freq"`
	Volume      float64 `json:"volume"`
	Duration    float64 `json:"duration"` // seconds
	LFOWaveform string  `json:"lfoWaveform,omitempty"`
	LFOFreq     float64 `json:"lfoFreq,omitempty"`
	LFODepth    float64 `json:"lfoDepth,omitempty"`
	Tuning      float64 `json:"tuning,omitempty"` // cents
}

// Config is the main configuration structure
type Config struct {
	Audio      AudioConfig      `json:"audio"`
	Playback   PlaybackConfig   `json:"playback"`
	Oscillator OscillatorConfig `json:"oscillator"`
	// Steps holds one "x..." step string per line.
	Steps    []string `json:"steps,omitempty"`
	LogLevel string   `json:"logLevel,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Audio: AudioConfig{
			SampleRate:   44100,
			BufferSize:   512,
			Channels:     2,
			DeviceFormat: mixcore.FormatFloat.String(),
			RenderFormat: mixcore.FormatFloat.String(),
		},
		Playback: PlaybackConfig{
			BPM:          120,
			StepsPerBeat: 4,
			Length:       16,
			PoolSize:     64,
			PoolChunks:   16,
		},
		Oscillator: OscillatorConfig{
			Waveform: mixcore.Sine.String(),
			Freq:     440,
			Volume:   0.5,
			Duration: 0.1,
		},
		Steps:    []string{"x...x...x...x..."},
		LogLevel: "info",
	}
}

// Dir returns the config directory path
func Dir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "mixcore"), nil
}

// Path returns the full path to config.json
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from the default path, or returns defaults if
// not found
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the config at path. A leading ~ is expanded. Fields
// missing from the file keep their defaults.
func LoadFile(path string) (*Config, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path, creating its directory
func (c *Config) SaveFile(path string) error {
	path, err := homedir.Expand(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks that names parse and sizes are positive
func (c *Config) Validate() error {
	if _, err := mixcore.ParseFormat(c.Audio.DeviceFormat); err != nil {
		return fmt.Errorf("audio.deviceFormat: %w", err)
	}
	if _, err := mixcore.ParseFormat(c.Audio.RenderFormat); err != nil {
		return fmt.Errorf("audio.renderFormat: %w", err)
	}
	if _, err := mixcore.ParseOscillator(c.Oscillator.Waveform); err != nil {
		return fmt.Errorf("oscillator.waveform: %w", err)
	}
	if c.Oscillator.LFOWaveform != "" {
		if _, err := mixcore.ParseOscillator(c.Oscillator.LFOWaveform); err != nil {
			return fmt.Errorf("oscillator.lfoWaveform: %w", err)
		}
	}
	if _, err := mixcore.ResolveLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("logLevel: %w", err)
	}
	switch {
	case c.Audio.SampleRate <= 0:
		return fmt.Errorf("audio.sampleRate %d: %w", c.Audio.SampleRate, mixcore.ErrDegenerateParameters)
	case c.Audio.BufferSize <= 0:
		return fmt.Errorf("audio.bufferSize %d: %w", c.Audio.BufferSize, mixcore.ErrDegenerateParameters)
	case c.Audio.Channels <= 0:
		return fmt.Errorf("audio.channels %d: %w", c.Audio.Channels, mixcore.ErrDegenerateParameters)
	case c.Playback.BPM <= 0:
		return fmt.Errorf("playback.bpm %g: %w", c.Playback.BPM, mixcore.ErrDegenerateParameters)
	case c.Playback.Length <= 0:
		return fmt.Errorf("playback.length %d: %w", c.Playback.Length, mixcore.ErrInvalidPattern)
	}
	return nil
}

// EngineConfig converts the audio and playback sections. lines is the
// number of pattern channels.
func (c *Config) EngineConfig(name string, lines int) (mixcore.EngineConfig, error) {
	device, err := mixcore.ParseFormat(c.Audio.DeviceFormat)
	if err != nil {
		return mixcore.EngineConfig{}, err
	}
	render, err := mixcore.ParseFormat(c.Audio.RenderFormat)
	if err != nil {
		return mixcore.EngineConfig{}, err
	}
	p := c.Playback
	return mixcore.EngineConfig{
		Name:         name,
		Lines:        lines,
		Format:       render,
		DeviceFormat: device,
		Channels:     c.Audio.Channels,
		SampleRate:   c.Audio.SampleRate,
		BufferSize:   c.Audio.BufferSize,
		BPM:          p.BPM,
		StepsPerBeat: p.StepsPerBeat,
		Length:       p.Length,
		Loop:         p.Loop,
		LoopStart:    p.LoopStart,
		LoopEnd:      p.LoopEnd,
		PoolSize:     p.PoolSize,
		PoolChunks:   p.PoolChunks,
	}, nil
}

// Params converts the oscillator section into synth parameters for a
// voice lasting Duration seconds.
func (c *Config) Params() (mixcore.Oscillator, mixcore.Params, error) {
	o := c.Oscillator
	osc, err := mixcore.ParseOscillator(o.Waveform)
	if err != nil {
		return 0, mixcore.Params{}, err
	}
	lfo := mixcore.Sine
	if o.LFOWaveform != "" {
		if lfo, err = mixcore.ParseOscillator(o.LFOWaveform); err != nil {
			return 0, mixcore.Params{}, err
		}
	}
	return osc, mixcore.Params{
		Freq:       o.Freq,
		Volume:     o.Volume,
		SampleRate: c.Audio.SampleRate,
		Frames:     int(o.Duration * float64(c.Audio.SampleRate)),
		LFOOsc:     lfo,
		LFOFreq:    o.LFOFreq,
		LFODepth:   o.LFODepth,
		Tuning:     o.Tuning,
	}, nil
}
