package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pattern303/p303/tb303"
	"gopkg.in/yaml.v2"
)

type (
	Config struct {
		Audio Audio
		Voice Voice

		// YmlError is set when the user config file exists but could not be
		// used. The defaults are used instead.
		YmlError error `yaml:"-"`
	}

	Audio struct {
		SampleRate int
		BufferMs   int
		BlockSize  int
		PCM16      bool `yaml:"pcm16"`
	}

	Voice struct {
		Voicing   string
		GlideMs   float64
		AttackMs  float64
		ReleaseMs float64
		Tuning    float64 // semitones
		Gain      float64
	}
)

//go:embed default.yml
var defaultConfigYaml []byte

// FileName is the name of the user config file under the p303 directory
// of os.UserConfigDir.
const FileName = "config.yml"

var ErrInvalid = errors.New("invalid config")

// Default returns the built-in configuration.
func Default() Config {
	var config Config
	if err := yaml.UnmarshalStrict(defaultConfigYaml, &config); err != nil {
		panic(fmt.Errorf("failed to unmarshal default config: %w", err))
	}
	return config
}

// Load returns the default configuration overridden by the user config
// file, if there is one. Problems with the user file are reported in
// YmlError.
func Load() Config {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return Default()
	}
	return LoadFile(filepath.Join(configDir, "p303", FileName))
}

// LoadFile is like Load but reads the override from path.
func LoadFile(path string) Config {
	config := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			config.YmlError = err
		}
		return config
	}
	custom, err := Parse(data)
	if err != nil {
		config.YmlError = fmt.Errorf("%s: %w", path, err)
		return config
	}
	return custom
}

// Parse decodes data on top of the defaults and validates the result.
// Unknown keys are errors.
func Parse(data []byte) (Config, error) {
	config := Default()
	if err := yaml.UnmarshalStrict(data, &config); err != nil {
		return Default(), fmt.Errorf("could not parse config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return Default(), err
	}
	return config, nil
}

func (c Config) Validate() error {
	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 384000 {
		return fmt.Errorf("%w: sample rate %d Hz, want 8000..384000", ErrInvalid, c.Audio.SampleRate)
	}
	if c.Audio.BufferMs < 0 || c.Audio.BufferMs > 1000 {
		return fmt.Errorf("%w: buffer %d ms, want 0..1000", ErrInvalid, c.Audio.BufferMs)
	}
	if c.Audio.BlockSize < 1 || c.Audio.BlockSize > 65536 {
		return fmt.Errorf("%w: block size %d, want 1..65536", ErrInvalid, c.Audio.BlockSize)
	}
	if _, err := tb303.ParseVoicing(c.Voice.Voicing); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"glidems", c.Voice.GlideMs},
		{"attackms", c.Voice.AttackMs},
		{"releasems", c.Voice.ReleaseMs},
	} {
		if !(f.value > 0 && f.value <= 10000) {
			return fmt.Errorf("%w: %s = %v, want 0 < %s <= 10000", ErrInvalid, f.name, f.value, f.name)
		}
	}
	if !(c.Voice.Tuning >= -24 && c.Voice.Tuning <= 24) {
		return fmt.Errorf("%w: tuning %v semitones, want -24..24", ErrInvalid, c.Voice.Tuning)
	}
	if !(c.Voice.Gain > 0 && c.Voice.Gain <= 10) {
		return fmt.Errorf("%w: gain %v, want 0 < gain <= 10", ErrInvalid, c.Voice.Gain)
	}
	return nil
}

// Synther returns the voice described by the config.
func (c Config) Synther() (tb303.Synther, error) {
	voicing, err := tb303.ParseVoicing(c.Voice.Voicing)
	if err != nil {
		return tb303.Synther{}, err
	}
	options := tb303.DefaultOptions()
	options.GlideMs = c.Voice.GlideMs
	options.AttackMs = c.Voice.AttackMs
	options.ReleaseMs = c.Voice.ReleaseMs
	options.Tuning = c.Voice.Tuning
	options.Gain = c.Voice.Gain
	return tb303.Synther{Voicing: voicing, Options: options}, nil
}

func (a Audio) BufferDuration() time.Duration {
	return time.Duration(a.BufferMs) * time.Millisecond
}
