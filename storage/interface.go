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

// Package storage maps the privacy layer's entities onto a flat blob
// namespace (spec.md §4.4) with secondary indices, over a choice of two
// backends (storage/memory, storage/postgres) implementing the same Blobs
// interface.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Blobs.Get for an absent key.
var ErrNotFound = errors.New("blob not found")

// Blobs is the minimal backend contract: put/get/head/delete by exact key,
// plus prefix listing. Everything else in this package is built on top of
// it and is backend-agnostic.
type Blobs interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Head(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	ListByPrefix(ctx context.Context, prefix string) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}
