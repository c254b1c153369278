package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/apiref/internal/foundation/errors"
)

// envFiles are loaded before the config file is expanded. Existing process
// variables are never overwritten.
var envFiles = []string{".env", ".env.local"}

// Load reads, expands, normalizes, defaults and validates the config at path.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	// #nosec G304 -- the path comes from the operator's command line.
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ferrors.ConfigError("configuration file not found").
				WithCause(err).
				WithContext("path", path).
				Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read config file").
			WithContext("path", path).
			Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		if classified, ok := ferrors.AsClassified(err); ok {
			return nil, classified.WithContext("path", path)
		}
		return nil, err
	}
	return cfg, nil
}

// Parse decodes raw YAML after ${VAR} expansion and runs the normalize, default
// and validate passes.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, ferrors.ConfigError("failed to parse config YAML").WithCause(err).Build()
	}
	if cfg.Version != CurrentVersion {
		return nil, ferrors.ConfigError("unsupported configuration version").
			WithContext("version", cfg.Version).
			WithContext("expected", CurrentVersion).
			Build()
	}
	if err := normalize(&cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadEnvFiles() {
	for _, name := range envFiles {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			slog.Warn("Failed to load environment file", "path", name, "error", err)
			continue
		}
		slog.Debug("Loaded environment file", "path", name)
	}
}

// normalize case-folds enumerations. Unknown values are configuration errors.
func normalize(cfg *Config) error {
	res, err := linkResolutionNormalizer.NormalizeWithError(string(cfg.Links.Resolution))
	if err != nil {
		return ferrors.ConfigError("invalid links.resolution").WithCause(err).Build()
	}
	cfg.Links.Resolution = res

	level, err := logLevelNormalizer.NormalizeWithError(string(cfg.Logging.Level))
	if err != nil {
		return ferrors.ConfigError("invalid logging.level").WithCause(err).Build()
	}
	cfg.Logging.Level = level

	format, err := logFormatNormalizer.NormalizeWithError(string(cfg.Logging.Format))
	if err != nil {
		return ferrors.ConfigError("invalid logging.format").WithCause(err).Build()
	}
	cfg.Logging.Format = format
	return nil
}
