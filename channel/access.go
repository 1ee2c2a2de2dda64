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
	"fmt"

	"github.com/moltbook/agentprivacy/did"
)

// Decision is the outcome of an access-control check: Allowed, or denied
// with an advisory Reason text.
type Decision struct {
	Allowed bool
	Reason  string
}

// DecideAccess implements the decision table in SPEC_FULL.md §4.3.3.
// Participants are always allowed regardless of policy; non-participants
// are evaluated against the channel's current AccessPolicy.
func DecideAccess(c *Channel, candidate *did.Agent) Decision {
	if c.IsParticipant(candidate.DID) {
		return Decision{Allowed: true}
	}

	switch c.Access.Kind {
	case PolicyOpen:
		return Decision{Allowed: true}

	case PolicyInviteOnly:
		for _, d := range c.Access.AllowList {
			if d == candidate.DID {
				return Decision{Allowed: true}
			}
		}
		return Decision{Reason: "Invite required"}

	case PolicyCredentialGated:
		minimum := c.Access.MinimumCount
		if minimum <= 0 {
			minimum = 1
		}
		count := candidate.CountVerifiedCredentials(c.Access.CredentialContract, c.Access.CredentialSchema)
		if count == 0 {
			return Decision{Reason: "Required credential not found"}
		}
		if count < minimum {
			return Decision{Reason: fmt.Sprintf("requires at least %d verified credentials, found %d", minimum, count)}
		}
		return Decision{Allowed: true}

	default:
		return Decision{Reason: "Not a participant"}
	}
}
