package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults, and
// validates the result. Useful in tests where configs are constructed from
// string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills unset fields with their documented defaults.
func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = LogInfo
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if cfg.Epsilon == 0 {
		cfg.Epsilon = 1e-4
	}
	if cfg.Lexicon.Store == "" {
		cfg.Lexicon.Store = StoreFile
	}
	if cfg.Lexicon.Dimensions == 0 {
		cfg.Lexicon.Dimensions = 300
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}
	if cfg.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers %d must not be negative", cfg.Workers))
	}
	if cfg.Epsilon < 0 {
		errs = append(errs, fmt.Errorf("epsilon %g must not be negative", cfg.Epsilon))
	}
	if cfg.Epsilon != 0 && cfg.Epsilon != 1e-4 {
		slog.Warn("epsilon differs from the value the frozen model was trained with",
			"epsilon", cfg.Epsilon,
		)
	}

	switch cfg.Lexicon.Store {
	case StoreFile:
		if cfg.Lexicon.VocabPath == "" {
			errs = append(errs, errors.New("lexicon.vocab_path is required for the file store"))
		}
		if cfg.Lexicon.VectorsPath == "" {
			errs = append(errs, errors.New("lexicon.vectors_path is required for the file store"))
		}
	case StorePostgres:
		if cfg.Lexicon.PostgresDSN == "" {
			errs = append(errs, errors.New("lexicon.postgres_dsn is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("lexicon.store %q is invalid; valid values: file, postgres", cfg.Lexicon.Store))
	}
	if cfg.Lexicon.Dimensions <= 0 {
		errs = append(errs, fmt.Errorf("lexicon.dimensions %d must be positive", cfg.Lexicon.Dimensions))
	}

	if cfg.Classifier.ModelPath == "" {
		errs = append(errs, errors.New("classifier.model_path is required"))
	}

	return errors.Join(errs...)
}
