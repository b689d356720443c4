package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"

	"github.com/maadhav-codes/diff2commit/internal/models"
)

const fileHeader = "# diff2commit configuration\n# Every key can be overridden with a D2C_<KEY> environment variable.\n\n"

// ErrConfigExists is returned by WriteDefault when the file is already there.
var ErrConfigExists = errors.New("configuration file already exists")

// loadFile merges the TOML file at path into c. A missing file is not an error.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "read config %s", path)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return errors.WithHintf(
				errors.Mark(errors.Newf("unknown keys in %s: %s", path, strict.String()), models.ErrConfiguration),
				"remove the keys or run 'diff2commit config init --force' to start over")
		}
		return errors.WithHint(
			errors.Mark(errors.Wrapf(err, "parse config %s", path), models.ErrConfiguration),
			"check the TOML syntax of the configuration file")
	}
	return nil
}

// Save writes the configuration as TOML to path with owner-only permissions.
func (c *Config) Save(path string) error {
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return errors.Wrap(err, "create config directory")
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}

	content := append([]byte(fileHeader), data...)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return errors.Wrapf(err, "write config %s", path)
	}
	return nil
}

// WriteDefault writes the default configuration to path. It refuses to
// replace an existing file unless force is set.
func WriteDefault(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.WithHint(
			errors.Wrapf(ErrConfigExists, "%s", path),
			"use --force to overwrite it")
	}

	cfg := Default()
	cfg.UsageDBPath = getDefaultUsageDBPath()
	return cfg.Save(path)
}
