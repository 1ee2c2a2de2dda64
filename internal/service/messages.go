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
	"strconv"
	"time"

	"github.com/moltbook/agentprivacy/channel"
	"github.com/moltbook/agentprivacy/internal/logger"
	"github.com/moltbook/agentprivacy/internal/metrics"
	"github.com/moltbook/agentprivacy/storage"
)

// sendMessageRequest is the wire shape of POST /channels/{id}/messages. The
// envelope is opaque ciphertext produced client-side; the server never sees
// plaintext or the channel key.
type sendMessageRequest struct {
	ChannelID          string `json:"channelId"`
	Nonce              []byte `json:"nonce"`
	Ciphertext         []byte `json:"ciphertext"`
	EphemeralPublicKey []byte `json:"ephemeralPublicKey,omitempty"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	c, ok := s.loadChannelOrFail(w, r)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := decodeBody(r, &req); err != nil {
		writeFail(w, http.StatusBadRequest, logger.ErrCodeInvalidInput, "malformed request body")
		return
	}

	sendReq := channel.SendRequest{
		ChannelID:          req.ChannelID,
		Nonce:              req.Nonce,
		Ciphertext:         req.Ciphertext,
		EphemeralPublicKey: req.EphemeralPublicKey,
	}
	if err := channel.ValidateSend(c, caller.DID, sendReq); err != nil {
		writeComponentError(w, err)
		return
	}

	now := time.Now().UTC()
	msg := channel.NewMessage(c, caller.DID, sendReq, now)
	if err := s.store.SaveMessage(r.Context(), msg); err != nil {
		s.logger.Error("save message failed", logger.Error(err))
		writeFail(w, http.StatusInternalServerError, logger.ErrCodeStorageError, "internal error")
		return
	}

	metrics.ChannelOperations.WithLabelValues("message_sent").Inc()
	writeData(w, http.StatusCreated, msg)
}

const maxListMessagesLimit = 100

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
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

	now := time.Now().UTC()
	q := r.URL.Query()
	filter := storage.MessageFilter{Limit: maxListMessagesLimit, TTLSeconds: c.TTLSeconds(), Now: now}
	if limit := q.Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 && n <= maxListMessagesLimit {
			filter.Limit = n
		}
	}
	if before := q.Get("before"); before != "" {
		if n, err := strconv.ParseInt(before, 10, 64); err == nil {
			filter.Before = &n
		}
	}
	if after := q.Get("after"); after != "" {
		if n, err := strconv.ParseInt(after, 10, 64); err == nil {
			filter.After = &n
		}
	}

	msgs, err := s.store.ListMessages(r.Context(), c.ID, filter)
	if err != nil {
		s.logger.Error("list messages failed", logger.Error(err))
		writeFail(w, http.StatusInternalServerError, logger.ErrCodeStorageError, "internal error")
		return
	}
	writeData(w, http.StatusOK, msgs)
}
