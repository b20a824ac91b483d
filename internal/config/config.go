/*
   Copyright (c) Utkan Güngördü <utkan@freeconsole.org>

   This program is free software; you can redistribute it and/or modify
   it under the terms of the GNU General Public License as
   published by the Free Software Foundation; either version 3 or
   (at your option) any later version.

   This program is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of

   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the

   GNU General Public License for more details


   You should have received a copy of the GNU General Public
   License along with this program; if not, write to the
   Free Software Foundation, Inc.,
   51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.
*/

// Package config loads converter settings from defaults, an optional YAML
// file, a .env file and TMX2B32_* environment variables. Command line flags
// are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hashicorp/go-hclog"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/salviati/tmx2b32/convert"
)

const envPrefix = "TMX2B32_"

type Config struct {
	Dir            string `yaml:"dir"`
	Ext            string `yaml:"ext"`
	Sort           bool   `yaml:"sort"`
	KeepGoing      bool   `yaml:"keep_going"`
	Jobs           int    `yaml:"jobs"`
	StripFlipFlags bool   `yaml:"strip_flip_flags"`
	Watch          bool   `yaml:"watch"`
	LogLevel       string `yaml:"log_level"`
}

func Default() Config {
	return Config{
		Ext:      convert.DefaultExt,
		Jobs:     1,
		LogLevel: "warn",
	}
}

// Load builds the configuration. path names a YAML file; when empty
// TMX2B32_CONFIG is consulted and a missing setting means no file.
// A missing .env in the working directory is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("config: load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv(envPrefix + "CONFIG")
	}
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return cfg, err
		}
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFile overlays the settings present in the YAML file at path.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays TMX2B32_* variables looked up through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(envPrefix + key); v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) error {
		v := getenv(envPrefix + key)
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", envPrefix, key, err)
		}
		*dst = b
		return nil
	}

	str("DIR", &c.Dir)
	str("EXT", &c.Ext)
	str("LOG_LEVEL", &c.LogLevel)

	if v := getenv(envPrefix + "JOBS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %sJOBS: %w", envPrefix, err)
		}
		c.Jobs = n
	}

	return errors.Join(
		boolean("SORT", &c.Sort),
		boolean("KEEP_GOING", &c.KeepGoing),
		boolean("STRIP_FLIP_FLAGS", &c.StripFlipFlags),
		boolean("WATCH", &c.Watch),
	)
}

func (c Config) Validate() error {
	if c.Ext == "" {
		return errors.New("config: ext must not be empty")
	}
	if c.Jobs < 1 {
		return fmt.Errorf("config: jobs must be at least 1, got %d", c.Jobs)
	}
	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}
	return nil
}

// ExecutableDir returns the directory holding the running binary, the
// default place to look for maps.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}
