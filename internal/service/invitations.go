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
	"github.com/moltbook/agentprivacy/internal/logger"
	"github.com/moltbook/agentprivacy/internal/metrics"
)

func (s *Server) handleListInvitations(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	invs, err := s.store.PendingInvitations(r.Context(), caller.DID, time.Now().UTC())
	if err != nil {
		s.logger.Error("list invitations failed", logger.Error(err))
		writeFail(w, http.StatusInternalServerError, logger.ErrCodeStorageError, "internal error")
		return
	}
	if invs == nil {
		invs = []*channel.Invitation{}
	}
	writeData(w, http.StatusOK, invs)
}

func (s *Server) handleAcceptInvitation(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	inv, ok := s.loadInvitationOrFail(w, r)
	if !ok {
		return
	}
	if inv.Invitee != caller.DID {
		writeComponentError(w, channel.ErrNotInvitee)
		return
	}

	acceptErr := inv.Accept(time.Now().UTC())
	if err := s.store.SaveInvitationStatus(r.Context(), inv); err != nil {
		s.logger.Error("save invitation status failed", logger.Error(err))
		writeFail(w, http.StatusInternalServerError, logger.ErrCodeStorageError, "internal error")
		return
	}
	if acceptErr != nil {
		if inv.Status == channel.StatusExpired {
			metrics.InvitationDecisions.WithLabelValues("expired").Inc()
		}
		writeComponentError(w, acceptErr)
		return
	}

	metrics.InvitationDecisions.WithLabelValues("accepted").Inc()
	writeData(w, http.StatusOK, struct {
		Invitation *channel.Invitation `json:"invitation"`
	}{inv})
}

func (s *Server) handleRejectInvitation(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	inv, ok := s.loadInvitationOrFail(w, r)
	if !ok {
		return
	}
	if inv.Invitee != caller.DID {
		writeComponentError(w, channel.ErrNotInvitee)
		return
	}

	if err := inv.Reject(); err != nil {
		writeComponentError(w, err)
		return
	}
	if err := s.store.SaveInvitationStatus(r.Context(), inv); err != nil {
		s.logger.Error("save invitation status failed", logger.Error(err))
		writeFail(w, http.StatusInternalServerError, logger.ErrCodeStorageError, "internal error")
		return
	}

	metrics.InvitationDecisions.WithLabelValues("rejected").Inc()
	writeOK(w)
}

// loadInvitationOrFail resolves the {id} path parameter to an invitation,
// lazily expiring it if its TTL has passed.
func (s *Server) loadInvitationOrFail(w http.ResponseWriter, r *http.Request) (*channel.Invitation, bool) {
	id := r.PathValue("id")
	inv, err := s.store.GetInvitation(r.Context(), id)
	if err != nil {
		s.logger.Error("get invitation failed", logger.Error(err))
		writeFail(w, http.StatusInternalServerError, logger.ErrCodeStorageError, "internal error")
		return nil, false
	}
	if inv == nil {
		writeFail(w, http.StatusNotFound, logger.ErrCodeNotFound, "invitation not found")
		return nil, false
	}
	inv.LazyExpire(time.Now().UTC())
	return inv, true
}
