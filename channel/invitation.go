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

	"github.com/moltbook/agentprivacy/crypto"
	"github.com/moltbook/agentprivacy/did"
)

// InvitationTTL is the fixed, non-configurable invitation lifetime
// (SPEC_FULL.md §9 decides this is a hard contract, not a channel-level
// setting).
const InvitationTTL = 7 * 24 * time.Hour

// Status is one of the four invitation lifecycle states.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

// Invitation conveys a wrapped channel key from an inviter to an invitee
// and tracks acceptance state. WrappedKey is opaque to this package and to
// storage; only the invitee can open it.
type Invitation struct {
	ID         string                `json:"id"`
	ChannelID  string                `json:"channelId"`
	Inviter    did.AgentDID          `json:"inviter"`
	Invitee    did.AgentDID          `json:"invitee"`
	CreatedAt  time.Time             `json:"createdAt"`
	ExpiresAt  time.Time             `json:"expiresAt"`
	WrappedKey crypto.WrappedKey `json:"wrappedKey"`
	Status     Status                `json:"status"`
}

// NewInvitation constructs a pending invitation expiring InvitationTTL
// after now.
func NewInvitation(channelID string, inviter, invitee did.AgentDID, wrapped crypto.WrappedKey, now time.Time) *Invitation {
	return &Invitation{
		ID:         crypto.NewID("inv"),
		ChannelID:  channelID,
		Inviter:    inviter,
		Invitee:    invitee,
		CreatedAt:  now,
		ExpiresAt:  now.Add(InvitationTTL),
		WrappedKey: wrapped,
		Status:     StatusPending,
	}
}

// LazyExpire flips a pending invitation observed past its expiry to
// expired, reporting whether it changed. Callers that read an invitation
// MUST call this before acting on its status.
func (i *Invitation) LazyExpire(now time.Time) bool {
	if i.Status == StatusPending && now.After(i.ExpiresAt) {
		i.Status = StatusExpired
		return true
	}
	return false
}

// Accept transitions pending to accepted, unless now is already past
// expiry, in which case it transitions to expired instead and returns
// ErrInvitationExpired - the caller still observes the (now expired)
// record, it just was not accepted. Any non-pending starting state fails
// with ErrIllegalState.
func (i *Invitation) Accept(now time.Time) error {
	if i.Status != StatusPending {
		return ErrIllegalState
	}
	if now.After(i.ExpiresAt) {
		i.Status = StatusExpired
		return ErrInvitationExpired
	}
	i.Status = StatusAccepted
	return nil
}

// Reject transitions pending to rejected. Any non-pending starting state
// fails with ErrIllegalState.
func (i *Invitation) Reject() error {
	if i.Status != StatusPending {
		return ErrIllegalState
	}
	i.Status = StatusRejected
	return nil
}
