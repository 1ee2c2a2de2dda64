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

// Package config loads the typed configuration tree for privacyd (the
// service façade) and privacy-cli/client tooling from YAML with
// environment-variable overrides, mirroring the teacher's
// deployments/config package.
package config

import "time"

// Config is the top-level configuration tree.
type Config struct {
	Environment string         `yaml:"environment" json:"environment"`
	Server      ServerConfig   `yaml:"server" json:"server"`
	Storage     StorageConfig  `yaml:"storage" json:"storage"`
	KeyStore    KeyStoreConfig `yaml:"keystore" json:"keystore"`
	Logging     LoggingConfig  `yaml:"logging" json:"logging"`
	Metrics     MetricsConfig  `yaml:"metrics" json:"metrics"`
	Health      HealthConfig   `yaml:"health" json:"health"`
}

// ServerConfig configures the HTTP service façade.
type ServerConfig struct {
	ListenAddr      string        `yaml:"listen_addr" json:"listen_addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// StorageConfig selects and configures the storage backend.
type StorageConfig struct {
	Backend  string         `yaml:"backend" json:"backend"` // "memory" or "postgres"
	Postgres PostgresConfig `yaml:"postgres" json:"postgres"`
}

// PostgresConfig holds PostgreSQL connection parameters, used only when
// Storage.Backend == "postgres".
type PostgresConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	User     string `yaml:"user" json:"user"`
	Password string `yaml:"password" json:"password"`
	Database string `yaml:"database" json:"database"`
	SSLMode  string `yaml:"ssl_mode" json:"ssl_mode"`
}

// KeyStoreConfig configures where the client orchestrator persists its
// local identity credential across restarts.
type KeyStoreConfig struct {
	Type      string `yaml:"type" json:"type"` // "file" or "memory"
	Directory string `yaml:"directory" json:"directory"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	Output string `yaml:"output" json:"output"`
}

// MetricsConfig configures the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
}

// HealthConfig configures the liveness endpoint.
type HealthConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
}
