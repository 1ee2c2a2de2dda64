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

// privacyd runs the agent privacy layer's HTTP service façade.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/moltbook/agentprivacy/config"
	"github.com/moltbook/agentprivacy/internal/logger"
	"github.com/moltbook/agentprivacy/internal/service"
	"github.com/moltbook/agentprivacy/pkg/version"
	"github.com/moltbook/agentprivacy/storage"
	"github.com/moltbook/agentprivacy/storage/memory"
	"github.com/moltbook/agentprivacy/storage/postgres"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "privacyd",
	Short: "agentprivacy service façade",
	Long: `privacyd serves the agent privacy layer's HTTP API: agent registration
and discovery, credential-gated channel lifecycle management, and
encrypted message relay. It never sees plaintext message content or any
private key - those stay in the client orchestrator.`,
	RunE: runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.UserAgent())
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("MOLTBOOK_CONFIG_FILE"), "path to YAML config file")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.LoaderOptions{ConfigPath: configPath, DotenvPath: ".env"})
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := newLogger(cfg)
	log.Info("starting privacyd",
		logger.String("version", version.Version),
		logger.String("environment", cfg.Environment),
		logger.String("storage_backend", cfg.Storage.Backend),
	)

	blobs, err := openStorage(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	store := storage.New(blobs)

	srv := service.NewServer(cfg, store, log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func newLogger(cfg *config.Config) *logger.StructuredLogger {
	level := logger.InfoLevel
	switch cfg.Logging.Level {
	case "debug":
		level = logger.DebugLevel
	case "warn":
		level = logger.WarnLevel
	case "error":
		level = logger.ErrorLevel
	}
	log := logger.NewLogger(os.Stdout, level)
	log.SetPrettyPrint(cfg.Logging.Format == "pretty")
	return log
}

func openStorage(ctx context.Context, cfg *config.Config) (storage.Blobs, error) {
	switch cfg.Storage.Backend {
	case "postgres":
		pg, err := postgres.New(ctx, &postgres.Config{
			Host:     cfg.Storage.Postgres.Host,
			Port:     cfg.Storage.Postgres.Port,
			User:     cfg.Storage.Postgres.User,
			Password: cfg.Storage.Postgres.Password,
			Database: cfg.Storage.Postgres.Database,
			SSLMode:  cfg.Storage.Postgres.SSLMode,
		})
		if err != nil {
			return nil, err
		}
		return storage.Instrument("postgres", pg), nil
	case "memory", "":
		return storage.Instrument("memory", memory.New()), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
