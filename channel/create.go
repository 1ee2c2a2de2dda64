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

// AgentLookup resolves a DID to its registered agent record, or returns
// (nil, nil) if no such agent exists.
type AgentLookup func(d did.AgentDID) (*did.Agent, error)

// CreateRequest is the server-side input to Create. WrappedKeys holds one
// already-wrapped channel key per non-creator participant, produced by the
// client orchestrator before this call - Create never sees a private key
// or the raw channel key, closing the flaw SPEC_FULL.md §4.6 corrects.
type CreateRequest struct {
	Invitees    []did.AgentDID
	Access      *AccessPolicy
	Metadata    *Metadata
	WrappedKeys map[did.AgentDID]crypto.WrappedKey
}

// CreateResult bundles a newly created channel with its invitations, to be
// persisted together (channel first, then invitations, per SPEC_FULL.md
// §4.3.1 step 6).
type CreateResult struct {
	Channel     *Channel
	Invitations []*Invitation
}

// Create builds the final participant set, validates every participant
// resolves to a registered agent, and emits one invitation per non-creator
// participant carrying its pre-wrapped channel key.
func Create(creatorDID did.AgentDID, req CreateRequest, lookup AgentLookup, now time.Time) (*CreateResult, error) {
	if len(req.Invitees) == 0 {
		return nil, ErrEmptyInviteeList
	}

	participants := unionParticipants(creatorDID, req.Invitees)

	for _, p := range participants {
		agent, err := lookup(p)
		if err != nil {
			return nil, err
		}
		if agent == nil {
			return nil, ErrAgentNotFound
		}
	}

	access := AccessPolicy{Kind: PolicyInviteOnly}
	if req.Access != nil {
		access = *req.Access
	}
	if err := access.Validate(); err != nil {
		return nil, err
	}

	c := &Channel{
		ID:           crypto.NewID("ch"),
		Participants: participants,
		Creator:      creatorDID,
		CreatedAt:    now,
		Encryption:   EncryptionConfig{Scheme: "pairwise-wrap", Algorithm: AlgorithmAES256GCM},
		Access:       access,
		Metadata:     req.Metadata,
	}

	invitations := make([]*Invitation, 0, len(participants)-1)
	for _, invitee := range participants {
		if invitee == creatorDID {
			continue
		}
		wrapped, ok := req.WrappedKeys[invitee]
		if !ok {
			return nil, ErrMissingWrappedKey
		}
		invitations = append(invitations, NewInvitation(c.ID, creatorDID, invitee, wrapped, now))
	}

	return &CreateResult{Channel: c, Invitations: invitations}, nil
}

// unionParticipants forms {creator} ∪ invitees, with the creator always
// first and duplicates removed while preserving first-seen order.
func unionParticipants(creatorDID did.AgentDID, invitees []did.AgentDID) []did.AgentDID {
	seen := map[did.AgentDID]bool{creatorDID: true}
	participants := []did.AgentDID{creatorDID}
	for _, invitee := range invitees {
		if seen[invitee] {
			continue
		}
		seen[invitee] = true
		participants = append(participants, invitee)
	}
	return participants
}
