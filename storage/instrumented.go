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

package storage

import (
	"context"
	"time"

	"github.com/moltbook/agentprivacy/internal/metrics"
)

// instrumentedBlobs wraps a Blobs backend with Prometheus counters and a
// latency histogram, labeled by backend name so memory and postgres
// deployments are distinguishable in the same dashboard.
type instrumentedBlobs struct {
	backend string
	inner   Blobs
}

// Instrument wraps a Blobs backend with metrics recording. backend is a
// label value ("memory" or "postgres").
func Instrument(backend string, b Blobs) Blobs {
	return &instrumentedBlobs{backend: backend, inner: b}
}

func (i *instrumentedBlobs) observe(verb string, start time.Time, err error) {
	metrics.StorageOperations.WithLabelValues(verb, i.backend).Inc()
	metrics.StorageOperationDuration.WithLabelValues(verb, i.backend).Observe(time.Since(start).Seconds())
	if err != nil && err != ErrNotFound {
		metrics.StorageErrors.WithLabelValues(verb, i.backend).Inc()
	}
}

func (i *instrumentedBlobs) Put(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := i.inner.Put(ctx, key, value)
	i.observe("put", start, err)
	return err
}

func (i *instrumentedBlobs) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	v, err := i.inner.Get(ctx, key)
	i.observe("get", start, err)
	return v, err
}

func (i *instrumentedBlobs) Head(ctx context.Context, key string) (bool, error) {
	start := time.Now()
	ok, err := i.inner.Head(ctx, key)
	i.observe("head", start, err)
	return ok, err
}

func (i *instrumentedBlobs) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := i.inner.Delete(ctx, key)
	i.observe("delete", start, err)
	return err
}

func (i *instrumentedBlobs) ListByPrefix(ctx context.Context, prefix string) ([]string, error) {
	start := time.Now()
	keys, err := i.inner.ListByPrefix(ctx, prefix)
	i.observe("list", start, err)
	return keys, err
}

func (i *instrumentedBlobs) Ping(ctx context.Context) error { return i.inner.Ping(ctx) }
func (i *instrumentedBlobs) Close() error                   { return i.inner.Close() }
