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

import "github.com/moltbook/agentprivacy/did"

// AddParticipant is idempotent on an already-present DID and fails if
// adding one more would exceed the channel's configured max participants.
func (c *Channel) AddParticipant(d did.AgentDID) error {
	if c.IsParticipant(d) {
		return nil
	}
	if c.AtCapacity() {
		return ErrMaxParticipants
	}
	c.Participants = append(c.Participants, d)
	return nil
}

// RemoveParticipant authorizes the removal per SPEC_FULL.md §4.3.4: the
// remover must be the target (self-leave) or the channel creator
// (moderator removal); the creator can never be removed through this path.
func (c *Channel) RemoveParticipant(remover, target did.AgentDID) error {
	if target == c.Creator {
		return ErrCannotRemoveCreator
	}
	if remover != target && remover != c.Creator {
		return ErrNotAuthorized
	}
	for i, p := range c.Participants {
		if p == target {
			c.Participants = append(c.Participants[:i], c.Participants[i+1:]...)
			return nil
		}
	}
	return ErrNotParticipant
}

// UpdateAccessPolicy replaces the channel's access policy atomically. Only
// the creator may perform this.
func (c *Channel) UpdateAccessPolicy(requester did.AgentDID, policy AccessPolicy) error {
	if requester != c.Creator {
		return ErrNotAuthorized
	}
	if err := policy.Validate(); err != nil {
		return err
	}
	c.Access = policy
	return nil
}
