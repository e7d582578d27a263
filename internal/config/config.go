// Package config loads the YAML configuration used by the command-line tools.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	yomiage "github.com/ieee0824/yomiage-go"
	"github.com/ieee0824/yomiage-go/normalize"
)

// Config is the top-level CLI configuration.
type Config struct {
	Dictionary string          `yaml:"dictionary"`
	Voice      string          `yaml:"voice"`
	Log        LogConfig       `yaml:"log"`
	Synthesis  SynthesisConfig `yaml:"synthesis"`
	Cache      CacheConfig     `yaml:"cache"`
	// Workers bounds concurrent requests in batch mode.
	Workers int `yaml:"workers"`
	// MaxInputRunes rejects longer inputs before analysis.
	MaxInputRunes int `yaml:"max_input_runes"`
}

// LogConfig selects log level and optional rotating file output.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}

// SynthesisConfig holds per-request defaults.
type SynthesisConfig struct {
	SymbolHandling string  `yaml:"symbol_handling"`
	SampleRate     int     `yaml:"sample_rate"` // 0: voice default
	Speed          float64 `yaml:"speed"`
	PitchShift     float64 `yaml:"pitch_shift"` // semitones
}

// CacheConfig enables the SQLite synthesis cache when Path is set.
type CacheConfig struct {
	Path string `yaml:"path"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// Load reads path, expands ${VAR} references and decodes it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML document from r. Unknown keys are errors.
func LoadFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	expanded := os.Expand(string(data), os.Getenv)

	cfg := &Config{}
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	setDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Synthesis.SymbolHandling == "" {
		cfg.Synthesis.SymbolHandling = normalize.Lenient.String()
	}
	if cfg.Synthesis.Speed == 0 {
		cfg.Synthesis.Speed = 1
	}
	if cfg.Workers == 0 {
		cfg.Workers = 4
	}
	if cfg.MaxInputRunes == 0 {
		cfg.MaxInputRunes = 4096
	}
}

// Validate reports every invalid field at once.
func Validate(cfg *Config) error {
	var errs []error
	if _, err := normalize.ParsePolicy(cfg.Synthesis.SymbolHandling); err != nil {
		errs = append(errs, fmt.Errorf("synthesis.symbol_handling: %w", err))
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unsupported level %q", cfg.Log.Level))
	}
	if r := cfg.Synthesis.SampleRate; r != 0 && (r < yomiage.MinSampleRate || r > yomiage.MaxSampleRate) {
		errs = append(errs, fmt.Errorf("synthesis.sample_rate: must be 0 or in [%d, %d], got %d",
			yomiage.MinSampleRate, yomiage.MaxSampleRate, r))
	}
	if cfg.Synthesis.Speed <= 0 {
		errs = append(errs, fmt.Errorf("synthesis.speed: must be positive, got %g", cfg.Synthesis.Speed))
	}
	if cfg.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers: must not be negative, got %d", cfg.Workers))
	}
	if cfg.MaxInputRunes < 0 {
		errs = append(errs, fmt.Errorf("max_input_runes: must not be negative, got %d", cfg.MaxInputRunes))
	}
	return errors.Join(errs...)
}
