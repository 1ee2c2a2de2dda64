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

package service

import (
	"net/http"
	"time"

	"github.com/moltbook/agentprivacy/channel"
	"github.com/moltbook/agentprivacy/crypto"
	"github.com/moltbook/agentprivacy/did"
	"github.com/moltbook/agentprivacy/internal/logger"
	"github.com/moltbook/agentprivacy/internal/metrics"
	"github.com/moltbook/agentprivacy/storage"
)

// createChannelRequest is the wire shape of POST /channels. WrappedKeys is
// keyed by invitee DID string (JSON object keys cannot be a named type);
// each value is the already-wrapped channel key produced client-side per
// SPEC_FULL.md §4.6 - no private key or raw channel key ever appears here.
type createChannelRequest struct {
	Invitees    []did.AgentDID                   `json:"invitees"`
	Access      *channel.AccessPolicy            `json:"access,omitempty"`
	Metadata    *channel.Metadata                `json:"metadata,omitempty"`
	WrappedKeys map[string]crypto.WrappedKey `json:"wrappedKeys"`
}

func (s *Server) handleCreateChannel(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	var req createChannelRequest
	if err := decodeBody(r, &req); err != nil {
		writeFail(w, http.StatusBadRequest, logger.ErrCodeInvalidInput, "malformed request body")
		return
	}

	wrapped := make(map[did.AgentDID]crypto.WrappedKey, len(req.WrappedKeys))
	for d, wk := range req.WrappedKeys {
		wrapped[did.AgentDID(d)] = wk
	}

	lookup := func(d did.AgentDID) (*did.Agent, error) { return s.store.GetAgent(r.Context(), d) }

	result, err := channel.Create(caller.DID, channel.CreateRequest{
		Invitees:    req.Invitees,
		Access:      req.Access,
		Metadata:    req.Metadata,
		WrappedKeys: wrapped,
	}, lookup, time.Now().UTC())
	if err != nil {
		writeComponentError(w, err)
		return
	}

	if err := s.store.SaveChannel(r.Context(), result.Channel); err != nil {
		s.logger.Error("save channel failed", logger.Error(err))
		writeFail(w, http.StatusInternalServerError, logger.ErrCodeStorageError, "internal error")
		return
	}
	for _, inv := range result.Invitations {
		if err := s.store.SaveInvitation(r.Context(), inv); err != nil {
			s.logger.Error("save invitation failed", logger.Error(err))
			writeFail(w, http.StatusInternalServerError, logger.ErrCodeStorageError, "internal error")
			return
		}
	}

	metrics.ChannelOperations.WithLabelValues("created").Inc()
	metrics.InvitationsIssued.Add(float64(len(result.Invitations)))

	writeData(w, http.StatusCreated, struct {
		Channel     *channel.Channel      `json:"channel"`
		Invitations []*channel.Invitation `json:"invitations"`
	}{result.Channel, result.Invitations})
}

func (s *Server) handleListChannels(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	ids, err := s.store.ListChannelsForAgent(r.Context(), caller.DID)
	if err != nil {
		s.logger.Error("list channels failed", logger.Error(err))
		writeFail(w, http.StatusInternalServerError, logger.ErrCodeStorageError, "internal error")
		return
	}

	now := time.Now().UTC()
	out := make([]channelWithStats, 0, len(ids))
	for _, id := range ids {
		c, err := s.store.GetChannel(r.Context(), id)
		if err != nil {
			s.logger.Error("get channel failed", logger.Error(err))
			writeFail(w, http.StatusInternalServerError, logger.ErrCodeStorageError, "internal error")
			return
		}
		if c == nil {
			continue
		}
		msgs, err := s.store.ListMessages(r.Context(), id, storage.MessageFilter{})
		if err != nil {
			s.logger.Error("list messages failed", logger.Error(err))
			writeFail(w, http.StatusInternalServerError, logger.ErrCodeStorageError, "internal error")
			return
		}
		out = append(out, channelWithStats{Channel: c, Stats: channel.ComputeStats(c, msgs, now)})
	}
	writeData(w, http.StatusOK, out)
}

type channelWithStats struct {
	Channel *channel.Channel `json:"channel"`
	Stats   channel.Stats    `json:"stats"`
}

func (s *Server) handleGetChannel(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	c, ok := s.loadChannelOrFail(w, r)
	if !ok {
		return
	}
	if decision := channel.DecideAccess(c, caller); !decision.Allowed {
		writeFailHint(w, http.StatusForbidden, logger.ErrCodeForbidden, "access denied", decision.Reason)
		return
	}

	msgs, err := s.store.ListMessages(r.Context(), c.ID, storage.MessageFilter{})
	if err != nil {
		s.logger.Error("list messages failed", logger.Error(err))
		writeFail(w, http.StatusInternalServerError, logger.ErrCodeStorageError, "internal error")
		return
	}
	writeData(w, http.StatusOK, channelWithStats{Channel: c, Stats: channel.ComputeStats(c, msgs, time.Now().UTC())})
}

func (s *Server) handleJoinChannel(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	c, ok := s.loadChannelOrFail(w, r)
	if !ok {
		return
	}
	if decision := channel.DecideAccess(c, caller); !decision.Allowed {
		writeFailHint(w, http.StatusForbidden, logger.ErrCodeForbidden, "access denied", decision.Reason)
		return
	}

	if err := c.AddParticipant(caller.DID); err != nil {
		writeComponentError(w, err)
		return
	}
	if err := s.store.SaveChannel(r.Context(), c); err != nil {
		s.logger.Error("save channel failed", logger.Error(err))
		writeFail(w, http.StatusInternalServerError, logger.ErrCodeStorageError, "internal error")
		return
	}
	metrics.ChannelOperations.WithLabelValues("joined").Inc()
	writeData(w, http.StatusOK, c)
}

func (s *Server) handleLeaveChannel(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	c, ok := s.loadChannelOrFail(w, r)
	if !ok {
		return
	}
	if err := c.RemoveParticipant(caller.DID, caller.DID); err != nil {
		writeComponentError(w, err)
		return
	}
	if err := s.store.SaveChannel(r.Context(), c); err != nil {
		s.logger.Error("save channel failed", logger.Error(err))
		writeFail(w, http.StatusInternalServerError, logger.ErrCodeStorageError, "internal error")
		return
	}
	metrics.ChannelOperations.WithLabelValues("left").Inc()
	writeOK(w)
}

// handleDeleteChannel removes a channel and cascades the deletion to its
// messages, invitations, and per-agent indices. Only the creator may
// delete a channel, mirroring the creator-only rotation guard.
func (s *Server) handleDeleteChannel(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	c, ok := s.loadChannelOrFail(w, r)
	if !ok {
		return
	}
	if caller.DID != c.Creator {
		writeFail(w, http.StatusForbidden, logger.ErrCodeForbidden, "only the channel creator may delete it")
		return
	}

	if err := s.store.DeleteChannel(r.Context(), c); err != nil {
		s.logger.Error("delete channel failed", logger.Error(err))
		writeFail(w, http.StatusInternalServerError, logger.ErrCodeStorageError, "internal error")
		return
	}

	metrics.ChannelOperations.WithLabelValues("deleted").Inc()
	writeOK(w)
}

// rotateChannelRequest is the wire shape of POST /channels/{id}/rotate: a
// fresh channel key wrapped client-side for every current participant.
type rotateChannelRequest struct {
	WrappedKeys map[string]crypto.WrappedKey `json:"wrappedKeys"`
}

// handleRotateChannel replaces a channel's key material. Only the creator
// may trigger a rotation. The new wrapped keys are stored as fresh,
// already-accepted invitation records - rotation targets participants who
// already belong to the channel, so there is nothing left to accept.
func (s *Server) handleRotateChannel(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	c, ok := s.loadChannelOrFail(w, r)
	if !ok {
		return
	}
	if caller.DID != c.Creator {
		writeFail(w, http.StatusForbidden, logger.ErrCodeForbidden, "only the channel creator may rotate its key")
		return
	}

	var req rotateChannelRequest
	if err := decodeBody(r, &req); err != nil {
		writeFail(w, http.StatusBadRequest, logger.ErrCodeInvalidInput, "malformed request body")
		return
	}
	wrapped := make(map[did.AgentDID]crypto.WrappedKey, len(req.WrappedKeys))
	for d, wk := range req.WrappedKeys {
		wrapped[did.AgentDID(d)] = wk
	}

	now := time.Now().UTC()
	rewrapped, err := s.rotator.Rotate(c, channel.RotateRequest{WrappedKeys: wrapped}, now)
	if err != nil {
		writeComponentError(w, err)
		return
	}

	if err := s.store.SaveChannel(r.Context(), c); err != nil {
		s.logger.Error("save channel failed", logger.Error(err))
		writeFail(w, http.StatusInternalServerError, logger.ErrCodeStorageError, "internal error")
		return
	}
	for participant, wk := range rewrapped {
		inv := channel.NewInvitation(c.ID, caller.DID, participant, wk, now)
		inv.Status = channel.StatusAccepted
		if err := s.store.SaveInvitation(r.Context(), inv); err != nil {
			s.logger.Error("save invitation failed", logger.Error(err))
			writeFail(w, http.StatusInternalServerError, logger.ErrCodeStorageError, "internal error")
			return
		}
	}

	metrics.ChannelOperations.WithLabelValues("rotated").Inc()
	writeData(w, http.StatusOK, c)
}

// loadChannelOrFail resolves the {id} path parameter to a channel,
// writing a 404 and returning ok=false if it does not exist.
func (s *Server) loadChannelOrFail(w http.ResponseWriter, r *http.Request) (*channel.Channel, bool) {
	id := r.PathValue("id")
	c, err := s.store.GetChannel(r.Context(), id)
	if err != nil {
		s.logger.Error("get channel failed", logger.Error(err))
		writeFail(w, http.StatusInternalServerError, logger.ErrCodeStorageError, "internal error")
		return nil, false
	}
	if c == nil {
		writeFail(w, http.StatusNotFound, logger.ErrCodeNotFound, "channel not found")
		return nil, false
	}
	return c, true
}
