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

// Package memory implements storage.Blobs over an in-process map, for
// tests and single-instance deployments.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/moltbook/agentprivacy/storage"
)

// Blobs is a mutex-guarded map implementing storage.Blobs.
type Blobs struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New returns an empty in-memory blob store.
func New() *Blobs {
	return &Blobs{data: make(map[string][]byte)}
}

// Put stores value under key, replacing any prior value. The stored copy
// is independent of the caller's slice.
func (b *Blobs) Put(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	b.data[key] = stored
	return nil
}

// Get returns the value stored at key, or storage.ErrNotFound.
func (b *Blobs) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	value, ok := b.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Head reports whether key exists.
func (b *Blobs) Head(_ context.Context, key string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.data[key]
	return ok, nil
}

// Delete removes key, if present. Deleting an absent key is not an error.
func (b *Blobs) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, key)
	return nil
}

// ListByPrefix returns every key with the given prefix, sorted.
func (b *Blobs) ListByPrefix(_ context.Context, prefix string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var keys []string
	for key := range b.data {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Ping always succeeds for the in-memory backend.
func (b *Blobs) Ping(context.Context) error { return nil }

// Close is a no-op for the in-memory backend.
func (b *Blobs) Close() error { return nil }
