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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChannelOperations tracks channel lifecycle events: created, joined,
	// left, deleted, rotated, message_sent.
	ChannelOperations = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "channel",
			Name:      "operations_total",
			Help:      "Total number of channel lifecycle operations",
		},
		[]string{"operation"},
	)

	// InvitationsIssued tracks invitations created by channel creation.
	InvitationsIssued = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "channel",
			Name:      "invitations_issued_total",
			Help:      "Total number of invitations issued",
		},
	)

	// InvitationDecisions tracks accept/reject/expire outcomes.
	InvitationDecisions = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "channel",
			Name:      "invitation_decisions_total",
			Help:      "Total number of invitation status transitions",
		},
		[]string{"decision"}, // accepted/rejected/expired
	)
)
