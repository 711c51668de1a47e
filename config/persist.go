package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/underthemoss/construction-taxonomy/errors"
	"github.com/underthemoss/construction-taxonomy/internal/fsutil"
)

// backupsKept is how many rotated copies Save keeps next to the file
const backupsKept = 3

// Save writes cfg to path as TOML, rotating up to three backups of the
// previous content first. Secrets are written as held in cfg.
func Save(path string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "refusing to save invalid config")
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.Wrapf(err, "create %s", filepath.Dir(path))
	}
	if err := fsutil.RotateBackups(path, backupsKept); err != nil {
		return errors.Wrap(err, "back up config")
	}
	if err := fsutil.WriteAtomic(path, data, DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

// Init writes a project file holding the defaults into dir, unless one is
// already there
func Init(dir string) (string, error) {
	path := filepath.Join(dir, ProjectFile)
	if _, err := os.Stat(path); err == nil {
		return path, errors.WithHint(
			errors.Newf("%s already exists", path),
			"edit it directly or remove it first",
		)
	}

	cfg, err := LoadWithViper(defaultViper())
	if err != nil {
		return "", err
	}
	return path, Save(path, cfg)
}
