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
	"net/url"

	"github.com/moltbook/agentprivacy/did"
)

// Exact key-string shapes from spec.md §4.4. Backup and migration tooling
// depends on these never changing.
const (
	agentsPrefix      = "privacy/agents/"
	channelsPrefix    = "privacy/channels/"
	invitationsPrefix = "privacy/invitations/"

	channelsIndexSuffix    = "/channels.json"
	invitationsIndexSuffix = "/invitations.json"
)

// AgentKey is the blob key for an agent record.
func AgentKey(d did.AgentDID) string {
	return agentsPrefix + url.QueryEscape(string(d)) + ".json"
}

// AgentChannelsIndexKey is the blob key for an agent's channel-id index.
func AgentChannelsIndexKey(d did.AgentDID) string {
	return agentsPrefix + url.QueryEscape(string(d)) + channelsIndexSuffix
}

// AgentInvitationsIndexKey is the blob key for an agent's invitation-id
// index.
func AgentInvitationsIndexKey(d did.AgentDID) string {
	return agentsPrefix + url.QueryEscape(string(d)) + invitationsIndexSuffix
}

// ChannelKey is the blob key for a channel's metadata record.
func ChannelKey(channelID string) string {
	return channelsPrefix + channelID + "/metadata.json"
}

// ChannelMessagePrefix is the blob-key prefix under which every message of
// a channel lives, usable for prefix listing and cascading deletes.
func ChannelMessagePrefix(channelID string) string {
	return channelsPrefix + channelID + "/messages/"
}

// ChannelMessageKey is the blob key for one message within a channel.
func ChannelMessageKey(channelID, messageID string) string {
	return ChannelMessagePrefix(channelID) + messageID + ".json"
}

// InvitationKey is the blob key for an invitation record.
func InvitationKey(invitationID string) string {
	return invitationsPrefix + invitationID + ".json"
}

// isIndexKey reports whether key is one of the per-agent secondary-index
// blobs rather than an agent record, so agent-namespace prefix listing can
// skip them.
func isIndexKey(key string) bool {
	return hasSuffix(key, channelsIndexSuffix) || hasSuffix(key, invitationsIndexSuffix)
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}
