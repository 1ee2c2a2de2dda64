// Copyright (C) 2025 moltbook
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoaderOptions controls how Load resolves a Config.
type LoaderOptions struct {
	// ConfigPath is the YAML file to load, if any. Empty skips file loading
	// and starts from defaults.
	ConfigPath string
	// DotenvPath is the .env file to load into the process environment
	// before reading overrides. Empty tries ".env" and ignores a missing
	// file.
	DotenvPath string
	// SkipDotenv disables .env loading entirely (tests, CI).
	SkipDotenv bool
}

// DefaultLoaderOptions returns the options privacyd uses when none are
// given explicitly on the command line.
func DefaultLoaderOptions() LoaderOptions {
	return LoaderOptions{
		ConfigPath: os.Getenv("MOLTBOOK_CONFIG_FILE"),
		DotenvPath: ".env",
	}
}

// Load resolves a Config by layering, lowest priority first: built-in
// defaults, an optional YAML file, then environment variable overrides.
func Load(opts LoaderOptions) (*Config, error) {
	if !opts.SkipDotenv {
		path := opts.DotenvPath
		if path == "" {
			path = ".env"
		}
		// A missing .env is not an error - it's the common case outside
		// of local development.
		_ = godotenv.Load(path)
	}

	var cfg *Config
	if opts.ConfigPath != "" {
		loaded, err := LoadFromFile(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = &Config{}
		setDefaults(cfg)
	}

	applyEnvironmentOverrides(cfg)
	return cfg, nil
}

// MustLoad calls Load with the default options and panics on error.
func MustLoad() *Config {
	cfg, err := Load(DefaultLoaderOptions())
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForEnvironment loads configPath and forces the Environment field,
// useful for tests that need a deterministic "production"/"development"
// config regardless of MOLTBOOK_ENV.
func LoadForEnvironment(configPath, environment string) (*Config, error) {
	cfg, err := Load(LoaderOptions{ConfigPath: configPath, SkipDotenv: true})
	if err != nil {
		return nil, err
	}
	cfg.Environment = environment
	return cfg, nil
}
