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
	"encoding/json"
	"time"

	"github.com/moltbook/agentprivacy/did"
)

// PolicyKind tags the variant of AccessPolicy in force.
type PolicyKind string

const (
	PolicyOpen            PolicyKind = "open"
	PolicyInviteOnly      PolicyKind = "invite_only"
	PolicyCredentialGated PolicyKind = "credential_gated"
)

// AccessPolicy is a tagged variant, not an open record: unknown Kind values
// are rejected at decode time rather than silently falling through to a
// default at decision time (see SPEC_FULL.md §9).
type AccessPolicy struct {
	Kind PolicyKind `json:"kind"`

	// invite_only
	AllowList []did.AgentDID `json:"allowList,omitempty"`

	// credential_gated
	CredentialContract string `json:"credentialContract,omitempty"`
	CredentialSchema   string `json:"credentialSchema,omitempty"`
	MinimumCount       int    `json:"minimumCount,omitempty"`
}

// Validate rejects a policy whose Kind is not one of the known variants.
func (p AccessPolicy) Validate() error {
	switch p.Kind {
	case PolicyOpen, PolicyInviteOnly, PolicyCredentialGated:
		return nil
	default:
		return ErrUnknownAccessPolicy
	}
}

// UnmarshalJSON enforces AccessPolicy's tagged-variant contract on every
// record read back from storage, not just ones built fresh in process.
func (p *AccessPolicy) UnmarshalJSON(data []byte) error {
	type alias AccessPolicy
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	candidate := AccessPolicy(decoded)
	if err := candidate.Validate(); err != nil {
		return err
	}
	*p = candidate
	return nil
}

// Algorithm tags the symmetric AEAD algorithm an EncryptionConfig names.
type Algorithm string

// AlgorithmAES256GCM is the only algorithm this implementation emits; the
// tag exists so a future algorithm can be added without an in-place schema
// migration, and so unknown tags already on disk are refused rather than
// silently treated as this one (SPEC_FULL.md §9).
const AlgorithmAES256GCM Algorithm = "aes-256-gcm"

// EncryptionConfig is immutable once a channel is created (aside from the
// RotatedAt stamp a rotation leaves behind - rotation replaces the key
// material, never the scheme or algorithm tag).
type EncryptionConfig struct {
	Scheme           string     `json:"scheme"`
	Algorithm        Algorithm  `json:"algorithm"`
	RotationInterval *Duration  `json:"rotationInterval,omitempty"`
	RotatedAt        *time.Time `json:"rotatedAt,omitempty"`
}

// Duration is a JSON-friendly wrapper over time.Duration so rotation
// intervals round-trip through storage as plain seconds.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).Seconds())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var seconds float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return err
	}
	*d = Duration(time.Duration(seconds * float64(time.Second)))
	return nil
}

// Validate rejects an encryption config naming an algorithm this build
// does not implement.
func (c EncryptionConfig) Validate() error {
	switch c.Algorithm {
	case AlgorithmAES256GCM:
		return nil
	default:
		return ErrUnknownAlgorithm
	}
}

func (c *EncryptionConfig) UnmarshalJSON(data []byte) error {
	type alias EncryptionConfig
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	candidate := EncryptionConfig(decoded)
	if err := candidate.Validate(); err != nil {
		return err
	}
	*c = candidate
	return nil
}

// Metadata is optional channel configuration. Zero values mean "unset":
// MaxParticipants == 0 means unlimited, MessageTTLSeconds == 0 means
// messages never expire.
type Metadata struct {
	Name              string `json:"name,omitempty"`
	Description       string `json:"description,omitempty"`
	MaxParticipants   int    `json:"maxParticipants,omitempty"`
	MessageTTLSeconds int    `json:"messageTtlSeconds,omitempty"`
}

// Channel is a channel record as persisted by storage.
type Channel struct {
	ID           string         `json:"id"`
	Participants []did.AgentDID `json:"participants"`
	Creator      did.AgentDID   `json:"creator"`
	CreatedAt    time.Time      `json:"createdAt"`
	Encryption   EncryptionConfig `json:"encryption"`
	Access       AccessPolicy   `json:"access"`
	Metadata     *Metadata      `json:"metadata,omitempty"`
}

// IsParticipant reports whether d is currently a member of the channel.
func (c *Channel) IsParticipant(d did.AgentDID) bool {
	for _, p := range c.Participants {
		if p == d {
			return true
		}
	}
	return false
}

// AtCapacity reports whether the channel has reached its configured
// maximum participant count. An unset (zero) max means no cap.
func (c *Channel) AtCapacity() bool {
	return c.Metadata != nil && c.Metadata.MaxParticipants > 0 &&
		len(c.Participants) >= c.Metadata.MaxParticipants
}

// TTLSeconds returns the channel's configured message TTL, or 0 if unset.
func (c *Channel) TTLSeconds() int {
	if c.Metadata == nil {
		return 0
	}
	return c.Metadata.MessageTTLSeconds
}
