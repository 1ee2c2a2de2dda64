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

// Package metrics exposes Prometheus instrumentation for the privacy
// service: crypto operations, channel and invitation lifecycle, storage
// access, and inbound HTTP requests.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "agentprivacy"

// Registry is the Prometheus registry all package metrics attach to.
// Using a dedicated registry instead of prometheus.DefaultRegisterer
// keeps tests hermetic and lets privacyd mount it under a single
// /metrics handler without pulling in process-wide collectors it
// didn't ask for.
var Registry = prometheus.NewRegistry()
