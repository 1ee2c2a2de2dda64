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

package channel

import (
	"time"

	"github.com/moltbook/agentprivacy/did"
)

// Stats summarizes a channel's current state for the service façade's
// GET /channels and GET /channels/:id responses.
type Stats struct {
	ParticipantCount int            `json:"participantCount"`
	ParticipantDIDs  []did.AgentDID `json:"participantDids"`
	MessageCount     int            `json:"messageCount"`
	LastActivityMS   *int64         `json:"lastActivityMs,omitempty"`
	CredentialGated  bool           `json:"credentialGated"`
}

// ComputeStats filters messages by the channel's TTL before counting, per
// SPEC_FULL.md §4.3.7: expired messages never appear in statistics.
func ComputeStats(c *Channel, messages []*Message, now time.Time) Stats {
	ttl := c.TTLSeconds()

	stats := Stats{
		ParticipantCount: len(c.Participants),
		ParticipantDIDs:  append([]did.AgentDID(nil), c.Participants...),
		CredentialGated:  c.Access.Kind == PolicyCredentialGated,
	}

	var last int64
	seen := false
	for _, m := range messages {
		if m.Expired(ttl, now) {
			continue
		}
		stats.MessageCount++
		if !seen || m.TimestampMS > last {
			last = m.TimestampMS
			seen = true
		}
	}
	if seen {
		stats.LastActivityMS = &last
	}
	return stats
}
