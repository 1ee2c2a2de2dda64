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

	"github.com/moltbook/agentprivacy/did"
	"github.com/moltbook/agentprivacy/internal/logger"
)

// AuthHeader is the sole authentication header spec.md §6 defines.
const AuthHeader = "X-Agent-DID"

// authenticate extracts and validates the caller's DID, resolving it to a
// registered agent record. It writes the appropriate error response and
// returns (nil, false) on any failure, so handlers can simply `return` on
// a false ok.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (*did.Agent, bool) {
	raw := r.Header.Get(AuthHeader)
	if raw == "" {
		writeFail(w, http.StatusUnauthorized, logger.ErrCodeUnauthorized, "missing "+AuthHeader+" header")
		return nil, false
	}

	callerDID := did.AgentDID(raw)
	if err := did.Validate(callerDID); err != nil {
		writeFail(w, http.StatusUnauthorized, logger.ErrCodeUnauthorized, "invalid DID format")
		return nil, false
	}

	agent, err := s.store.GetAgent(r.Context(), callerDID)
	if err != nil {
		s.logger.Error("lookup caller agent failed", logger.Error(err))
		writeFail(w, http.StatusInternalServerError, logger.ErrCodeInternal, "internal error")
		return nil, false
	}
	if agent == nil {
		writeFail(w, http.StatusUnauthorized, logger.ErrCodeUnauthorized, "no such registered agent")
		return nil, false
	}

	return agent, true
}
