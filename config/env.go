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
	"strconv"
	"strings"
)

// GetEnvironment returns the deployment environment from MOLTBOOK_ENV, or
// "development" if unset.
func GetEnvironment() string {
	env := os.Getenv("MOLTBOOK_ENV")
	if env == "" {
		env = "development"
	}
	return strings.ToLower(env)
}

// IsProduction reports whether GetEnvironment() == "production".
func IsProduction() bool { return GetEnvironment() == "production" }

// applyEnvironmentOverrides lets a small set of environment variables
// override whatever a config file set - the highest-priority layer,
// mirroring the teacher's override-after-file-load pattern.
func applyEnvironmentOverrides(cfg *Config) {
	if addr := os.Getenv("MOLTBOOK_LISTEN_ADDR"); addr != "" {
		cfg.Server.ListenAddr = addr
	}

	if backend := os.Getenv("MOLTBOOK_STORAGE_BACKEND"); backend != "" {
		cfg.Storage.Backend = backend
	}
	if host := os.Getenv("MOLTBOOK_POSTGRES_HOST"); host != "" {
		cfg.Storage.Postgres.Host = host
	}
	if port := os.Getenv("MOLTBOOK_POSTGRES_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			cfg.Storage.Postgres.Port = n
		}
	}
	if user := os.Getenv("MOLTBOOK_POSTGRES_USER"); user != "" {
		cfg.Storage.Postgres.User = user
	}
	if password := os.Getenv("MOLTBOOK_POSTGRES_PASSWORD"); password != "" {
		cfg.Storage.Postgres.Password = password
	}
	if db := os.Getenv("MOLTBOOK_POSTGRES_DATABASE"); db != "" {
		cfg.Storage.Postgres.Database = db
	}

	if dir := os.Getenv("MOLTBOOK_KEYSTORE_DIR"); dir != "" {
		cfg.KeyStore.Directory = dir
	}

	if level := os.Getenv("MOLTBOOK_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if format := os.Getenv("MOLTBOOK_LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}

	switch os.Getenv("MOLTBOOK_METRICS_ENABLED") {
	case "true":
		cfg.Metrics.Enabled = true
	case "false":
		cfg.Metrics.Enabled = false
	}
}
