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

package health_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moltbook/agentprivacy/health"
)

func TestCheckAllReportsHealthyWithNoFailingChecks(t *testing.T) {
	checker := health.NewHealthChecker(time.Second)
	checker.RegisterCheck("storage", health.DatabaseHealthCheck(func(context.Context) error { return nil }))

	system := checker.GetSystemHealth(context.Background())
	assert.Equal(t, health.StatusHealthy, system.Status)
	require.Contains(t, system.Checks, "storage")
	assert.Equal(t, health.StatusHealthy, system.Checks["storage"].Status)
}

func TestCheckAllReportsUnhealthyWhenAPingFails(t *testing.T) {
	checker := health.NewHealthChecker(time.Second)
	checker.RegisterCheck("storage", health.DatabaseHealthCheck(func(context.Context) error {
		return errors.New("connection refused")
	}))

	system := checker.GetSystemHealth(context.Background())
	assert.Equal(t, health.StatusUnhealthy, system.Status)
	assert.Equal(t, health.StatusUnhealthy, system.Checks["storage"].Status)
	assert.Contains(t, system.Checks["storage"].Message, "connection refused")
}

func TestUnregisterCheckRemovesItFromResults(t *testing.T) {
	checker := health.NewHealthChecker(time.Second)
	checker.RegisterCheck("storage", health.DatabaseHealthCheck(func(context.Context) error { return nil }))
	checker.UnregisterCheck("storage")

	results := checker.CheckAll(context.Background())
	assert.NotContains(t, results, "storage")
}

func TestCheckReturnsCachedResultWithinTTL(t *testing.T) {
	checker := health.NewHealthChecker(time.Second)
	checker.SetCacheTTL(time.Minute)

	var calls int
	checker.RegisterCheck("counter", func(context.Context) error {
		calls++
		return nil
	})

	_, err := checker.Check(context.Background(), "counter")
	require.NoError(t, err)
	_, err = checker.Check(context.Background(), "counter")
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "second call within the TTL window should hit the cache")
}

func TestDatabaseHealthCheckRejectsNilPing(t *testing.T) {
	check := health.DatabaseHealthCheck(nil)
	err := check(context.Background())
	require.Error(t, err)
}
