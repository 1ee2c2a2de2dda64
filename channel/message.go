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

// SendRequest is the untrusted input to a message send: the server never
// inspects Nonce or Ciphertext beyond checking they are present. Content
// framing (text/file/action/system) lives entirely inside the ciphertext
// and is opaque here, per SPEC_FULL.md §9.
type SendRequest struct {
	ChannelID          string
	Nonce              []byte
	Ciphertext         []byte
	EphemeralPublicKey []byte
}

// Message is a stored encrypted message envelope.
type Message struct {
	ID                 string       `json:"id"`
	ChannelID          string       `json:"channelId"`
	Sender             did.AgentDID `json:"sender"`
	TimestampMS        int64        `json:"timestampMs"`
	Nonce              []byte       `json:"nonce"`
	Ciphertext         []byte       `json:"ciphertext"`
	EphemeralPublicKey []byte       `json:"ephemeralPublicKey,omitempty"`
}

// ValidateSend runs the ordered checks SPEC_FULL.md §4.3.5 requires,
// stopping at the first failure.
func ValidateSend(c *Channel, sender did.AgentDID, req SendRequest) error {
	if !c.IsParticipant(sender) {
		return ErrNotParticipant
	}
	if req.ChannelID == "" || len(req.Nonce) == 0 || len(req.Ciphertext) == 0 {
		return ErrMissingField
	}
	if req.ChannelID != c.ID {
		return ErrChannelIDMismatch
	}
	return nil
}

// NewMessage stamps a fresh message envelope. Callers MUST run
// ValidateSend first; NewMessage performs no validation of its own.
func NewMessage(c *Channel, sender did.AgentDID, req SendRequest, now time.Time) *Message {
	return &Message{
		ID:                 crypto.NewID("msg"),
		ChannelID:          c.ID,
		Sender:             sender,
		TimestampMS:        now.UnixMilli(),
		Nonce:              req.Nonce,
		Ciphertext:         req.Ciphertext,
		EphemeralPublicKey: req.EphemeralPublicKey,
	}
}

// Expired reports whether m has aged out of a channel with the given TTL
// (seconds; 0 means no TTL, never expires) as of now.
func (m *Message) Expired(ttlSeconds int, now time.Time) bool {
	if ttlSeconds <= 0 {
		return false
	}
	return now.UnixMilli()-m.TimestampMS > int64(ttlSeconds)*1000
}
