package config

import (
	"os"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/apiref/internal/foundation/errors"
)

const initHeader = `# apiref configuration
# Values of the form ${VAR} are expanded from the environment (.env is loaded first).
`

// Init writes a default configuration file to path.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return ferrors.NewError(ferrors.CategoryValidation, "configuration file already exists (use --force to overwrite)").
			WithContext("path", path).
			Build()
	}

	cfg := Default()
	cfg.Cache.Path = "./.apiref/cache.db"
	cfg.Schedule.RefreshInterval = "15m"

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return ferrors.InternalError("failed to marshal default config").WithCause(err).Build()
	}
	if err := os.WriteFile(path, append([]byte(initHeader), data...), 0o600); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write config file").
			WithContext("path", path).
			Build()
	}
	return nil
}
