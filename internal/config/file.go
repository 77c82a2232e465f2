package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

const defaultConfigPath = "~/.config/photein/config.toml"

type fileConfig struct {
	Source    string        `toml:"source"`
	Libraries fileLibraries `toml:"libraries"`
	Import    fileImport    `toml:"import"`
	Logging   fileLogging   `toml:"logging"`

	path string
}

type fileLibraries struct {
	Master  string `toml:"master"`
	Desktop string `toml:"desktop"`
	Web     string `toml:"web"`
}

type fileImport struct {
	Recursive      bool    `toml:"recursive"`
	Keep           bool    `toml:"keep"`
	Safe           bool    `toml:"safe"`
	ShiftTimestamp *string `toml:"shift_timestamp"`
	LocalTZ        string  `toml:"local_tz"`
}

type fileLogging struct {
	Format  string `toml:"format"`
	Verbose bool   `toml:"verbose"`
}

// loadFile reads the TOML config. An explicit path must exist; the default
// location is optional.
func loadFile(path string) (fileConfig, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}
	resolved, err := ExpandPath(path)
	if err != nil {
		return fileConfig{}, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return fileConfig{}, nil
		}
		return fileConfig{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg fileConfig
	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return fileConfig{}, fmt.Errorf("parse config %s: %w", resolved, err)
	}
	cfg.path = resolved
	return cfg, nil
}
