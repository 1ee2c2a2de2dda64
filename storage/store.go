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

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/moltbook/agentprivacy/channel"
	"github.com/moltbook/agentprivacy/did"
	"github.com/moltbook/agentprivacy/storage/keylock"
)

// Store is the typed layer over Blobs: it marshals/unmarshals entities,
// maintains the per-agent secondary indices, and serializes index
// mutations with a per-key lock (resolving the concurrency flaw spec.md §9
// names).
type Store struct {
	blobs Blobs
	locks *keylock.Table
}

// New wraps a Blobs backend.
func New(blobs Blobs) *Store {
	return &Store{blobs: blobs, locks: keylock.NewTable()}
}

// Ping checks the underlying backend.
func (s *Store) Ping(ctx context.Context) error { return s.blobs.Ping(ctx) }

// Close releases the underlying backend.
func (s *Store) Close() error { return s.blobs.Close() }

// --- Agents ---

// SaveAgent persists an agent record.
func (s *Store) SaveAgent(ctx context.Context, agent *did.Agent) error {
	data, err := json.Marshal(agent)
	if err != nil {
		return err
	}
	return s.blobs.Put(ctx, AgentKey(agent.DID), data)
}

// GetAgent returns an agent record, or (nil, nil) if none exists.
func (s *Store) GetAgent(ctx context.Context, d did.AgentDID) (*did.Agent, error) {
	data, err := s.blobs.Get(ctx, AgentKey(d))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var agent did.Agent
	if err := json.Unmarshal(data, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// AgentExists reports whether an agent record exists for d.
func (s *Store) AgentExists(ctx context.Context, d did.AgentDID) (bool, error) {
	return s.blobs.Head(ctx, AgentKey(d))
}

// SearchFilter narrows SearchAgents results. Zero values are "unset".
type SearchFilter struct {
	Capabilities  []string
	MinReputation int
	NFTContract   string
	NFTSchema     string
}

// SearchAgents prefix-lists the agent namespace, skips index blobs, and
// filters by every non-empty criterion in filter, per spec.md §4.4.
func (s *Store) SearchAgents(ctx context.Context, filter SearchFilter) ([]*did.Agent, error) {
	keys, err := s.blobs.ListByPrefix(ctx, agentsPrefix)
	if err != nil {
		return nil, err
	}

	var matches []*did.Agent
	for _, key := range keys {
		if isIndexKey(key) {
			continue
		}
		data, err := s.blobs.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		var agent did.Agent
		if err := json.Unmarshal(data, &agent); err != nil {
			return nil, err
		}
		if matchesFilter(&agent, filter) {
			matches = append(matches, &agent)
		}
	}
	return matches, nil
}

func matchesFilter(agent *did.Agent, filter SearchFilter) bool {
	for _, want := range filter.Capabilities {
		found := false
		for _, have := range agent.Profile.Capabilities {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.MinReputation > 0 && agent.Reputation < filter.MinReputation {
		return false
	}
	if filter.NFTContract != "" && !agent.HasVerifiedCredential(filter.NFTContract, filter.NFTSchema) {
		return false
	}
	return true
}

// --- Channels ---

// SaveChannel persists a channel record and idempotently appends its id to
// every participant's channel-id index.
func (s *Store) SaveChannel(ctx context.Context, c *channel.Channel) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if err := s.blobs.Put(ctx, ChannelKey(c.ID), data); err != nil {
		return err
	}
	for _, participant := range c.Participants {
		if err := s.appendIndex(ctx, AgentChannelsIndexKey(participant), c.ID); err != nil {
			return err
		}
	}
	return nil
}

// GetChannel returns a channel record, or (nil, nil) if none exists.
func (s *Store) GetChannel(ctx context.Context, channelID string) (*channel.Channel, error) {
	data, err := s.blobs.Get(ctx, ChannelKey(channelID))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var c channel.Channel
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteChannel removes the channel from every participant's index, then
// lists and deletes its message objects and every invitation record that
// references the channel, before deleting the channel record itself.
// Invitation ids stay in invitees' indices; PendingInvitations skips ids
// whose record is gone.
func (s *Store) DeleteChannel(ctx context.Context, c *channel.Channel) error {
	for _, participant := range c.Participants {
		if err := s.removeIndex(ctx, AgentChannelsIndexKey(participant), c.ID); err != nil {
			return err
		}
	}
	messageKeys, err := s.blobs.ListByPrefix(ctx, ChannelMessagePrefix(c.ID))
	if err != nil {
		return err
	}
	for _, key := range messageKeys {
		if err := s.blobs.Delete(ctx, key); err != nil {
			return err
		}
	}
	invitationKeys, err := s.blobs.ListByPrefix(ctx, invitationsPrefix)
	if err != nil {
		return err
	}
	for _, key := range invitationKeys {
		inv, err := s.GetInvitation(ctx, key[len(invitationsPrefix):len(key)-len(".json")])
		if err != nil {
			return err
		}
		if inv != nil && inv.ChannelID == c.ID {
			if err := s.blobs.Delete(ctx, key); err != nil {
				return err
			}
		}
	}
	return s.blobs.Delete(ctx, ChannelKey(c.ID))
}

// ListChannelsForAgent returns the channel ids in an agent's index.
func (s *Store) ListChannelsForAgent(ctx context.Context, d did.AgentDID) ([]string, error) {
	return s.loadIndex(ctx, AgentChannelsIndexKey(d))
}

// --- Invitations ---

// SaveInvitation persists an invitation and appends its id to the
// invitee's invitation-id index.
func (s *Store) SaveInvitation(ctx context.Context, inv *channel.Invitation) error {
	data, err := json.Marshal(inv)
	if err != nil {
		return err
	}
	if err := s.blobs.Put(ctx, InvitationKey(inv.ID), data); err != nil {
		return err
	}
	return s.appendIndex(ctx, AgentInvitationsIndexKey(inv.Invitee), inv.ID)
}

// GetInvitation returns an invitation record, or (nil, nil) if none
// exists. It does not perform lazy expiry; callers that need the current
// status should call PendingInvitations or apply LazyExpire themselves.
func (s *Store) GetInvitation(ctx context.Context, invitationID string) (*channel.Invitation, error) {
	data, err := s.blobs.Get(ctx, InvitationKey(invitationID))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var inv channel.Invitation
	if err := json.Unmarshal(data, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// SaveInvitationStatus rewrites an already-indexed invitation after a
// status transition (accept/reject/lazy-expire).
func (s *Store) SaveInvitationStatus(ctx context.Context, inv *channel.Invitation) error {
	data, err := json.Marshal(inv)
	if err != nil {
		return err
	}
	return s.blobs.Put(ctx, InvitationKey(inv.ID), data)
}

// PendingInvitations walks the invitee's invitation index, fetches each
// record, lazily flips any pending-but-expired invitation to expired
// (writing the transition back), and returns only those still pending.
func (s *Store) PendingInvitations(ctx context.Context, invitee did.AgentDID, now time.Time) ([]*channel.Invitation, error) {
	ids, err := s.loadIndex(ctx, AgentInvitationsIndexKey(invitee))
	if err != nil {
		return nil, err
	}

	var pending []*channel.Invitation
	for _, id := range ids {
		inv, err := s.GetInvitation(ctx, id)
		if err != nil {
			return nil, err
		}
		if inv == nil {
			continue
		}
		if inv.LazyExpire(now) {
			if err := s.SaveInvitationStatus(ctx, inv); err != nil {
				return nil, err
			}
		}
		if inv.Status == channel.StatusPending {
			pending = append(pending, inv)
		}
	}
	return pending, nil
}

// --- Messages ---

// SaveMessage persists a channel message.
func (s *Store) SaveMessage(ctx context.Context, msg *channel.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.blobs.Put(ctx, ChannelMessageKey(msg.ChannelID, msg.ID), data)
}

// MessageFilter narrows ListMessages results. A zero Before/After means
// unset; Limit is clamped to [1,100] by the caller (service façade) before
// reaching here. TTLSeconds/Now, if TTLSeconds is non-zero, drop messages
// that have aged out of the channel's TTL before Limit is applied, so the
// limit is spent on live messages rather than ones the caller discards
// after the fact.
type MessageFilter struct {
	Limit      int
	Before     *int64
	After      *int64
	TTLSeconds int
	Now        time.Time
}

// ListMessages returns a channel's messages ordered by timestamp
// descending, filtered by filter and then limited. It enumerates naively
// (one Get per message), which spec.md §4.4 explicitly permits for this
// corpus's scale.
func (s *Store) ListMessages(ctx context.Context, channelID string, filter MessageFilter) ([]*channel.Message, error) {
	keys, err := s.blobs.ListByPrefix(ctx, ChannelMessagePrefix(channelID))
	if err != nil {
		return nil, err
	}

	var messages []*channel.Message
	for _, key := range keys {
		data, err := s.blobs.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		var msg channel.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, err
		}
		if filter.Before != nil && msg.TimestampMS >= *filter.Before {
			continue
		}
		if filter.After != nil && msg.TimestampMS <= *filter.After {
			continue
		}
		if msg.Expired(filter.TTLSeconds, filter.Now) {
			continue
		}
		messages = append(messages, &msg)
	}

	sort.Slice(messages, func(i, j int) bool {
		return messages[i].TimestampMS > messages[j].TimestampMS
	})

	if filter.Limit > 0 && len(messages) > filter.Limit {
		messages = messages[:filter.Limit]
	}
	return messages, nil
}

// --- Index helpers ---

func (s *Store) loadIndex(ctx context.Context, key string) ([]string, error) {
	data, err := s.blobs.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Store) saveIndex(ctx context.Context, key string, ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return s.blobs.Put(ctx, key, data)
}

// appendIndex idempotently adds id to the index blob at key, serialized
// behind a per-key lock so concurrent appends cannot lose an update.
func (s *Store) appendIndex(ctx context.Context, key, id string) error {
	unlock := s.locks.Lock(key)
	defer unlock()

	ids, err := s.loadIndex(ctx, key)
	if err != nil {
		return err
	}
	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}
	return s.saveIndex(ctx, key, append(ids, id))
}

// removeIndex removes id from the index blob at key, serialized behind
// the same per-key lock as appendIndex.
func (s *Store) removeIndex(ctx context.Context, key, id string) error {
	unlock := s.locks.Lock(key)
	defer unlock()

	ids, err := s.loadIndex(ctx, key)
	if err != nil {
		return err
	}
	filtered := ids[:0]
	for _, existing := range ids {
		if existing != id {
			filtered = append(filtered, existing)
		}
	}
	return s.saveIndex(ctx, key, filtered)
}
