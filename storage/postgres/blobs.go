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

// Package postgres implements storage.Blobs over a single PostgreSQL
// table. The flat blob namespace IS the schema: one key/value/timestamp
// table serves every entity spec.md §4.4 defines, so backup/restore
// tooling never has to track per-entity migrations.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moltbook/agentprivacy/storage"
)

// Config holds PostgreSQL connection parameters.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// Blobs implements storage.Blobs over a pgxpool.Pool.
type Blobs struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS blobs (
	key        TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// New connects to PostgreSQL, ensures the blobs table exists, and returns
// a ready Blobs.
func New(ctx context.Context, cfg *Config) (*Blobs, error) {
	connString := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure blobs table: %w", err)
	}

	return &Blobs{pool: pool}, nil
}

// Put upserts value (as a raw JSONB document) under key.
func (b *Blobs) Put(ctx context.Context, key string, value []byte) error {
	_, err := b.pool.Exec(ctx, `
		INSERT INTO blobs (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, key, value)
	return err
}

// Get returns the raw value at key, or storage.ErrNotFound.
func (b *Blobs) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.pool.QueryRow(ctx, `SELECT value FROM blobs WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Head reports whether key exists.
func (b *Blobs) Head(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := b.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM blobs WHERE key = $1)`, key).Scan(&exists)
	return exists, err
}

// Delete removes key, if present.
func (b *Blobs) Delete(ctx context.Context, key string) error {
	_, err := b.pool.Exec(ctx, `DELETE FROM blobs WHERE key = $1`, key)
	return err
}

// ListByPrefix returns every key with the given prefix, ordered.
func (b *Blobs) ListByPrefix(ctx context.Context, prefix string) ([]string, error) {
	rows, err := b.pool.Query(ctx, `SELECT key FROM blobs WHERE key LIKE $1 || '%' ORDER BY key`, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Ping checks the connection pool.
func (b *Blobs) Ping(ctx context.Context) error { return b.pool.Ping(ctx) }

// Close releases the connection pool.
func (b *Blobs) Close() error {
	b.pool.Close()
	return nil
}
