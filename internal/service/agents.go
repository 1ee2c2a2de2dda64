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
	"strings"

	"github.com/moltbook/agentprivacy/did"
	"github.com/moltbook/agentprivacy/internal/logger"
	"github.com/moltbook/agentprivacy/storage"
)

func (s *Server) handleRegisterAgent(w http.ResponseWriter, r *http.Request) {
	var req did.RegistrationRequest
	if err := decodeBody(r, &req); err != nil {
		writeFail(w, http.StatusBadRequest, logger.ErrCodeInvalidInput, "malformed request body")
		return
	}

	exists := func(agentDID did.AgentDID) (bool, error) {
		return s.store.AgentExists(r.Context(), agentDID)
	}

	agent, err := did.Register(&req, exists)
	if err != nil {
		writeComponentError(w, err)
		return
	}

	if err := s.store.SaveAgent(r.Context(), agent); err != nil {
		s.logger.Error("save agent failed", logger.Error(err))
		writeFail(w, http.StatusInternalServerError, logger.ErrCodeStorageError, "internal error")
		return
	}

	writeData(w, http.StatusCreated, struct {
		DID   did.AgentDID `json:"did"`
		Agent *did.Agent   `json:"agent"`
	}{agent.DID, agent})
}

func (s *Server) handleSearchAgents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := storage.SearchFilter{
		NFTContract: q.Get("nftContract"),
		NFTSchema:   q.Get("nftSchema"),
	}
	if caps := q.Get("capabilities"); caps != "" {
		filter.Capabilities = strings.Split(caps, ",")
	}
	if minRep := q.Get("minReputation"); minRep != "" {
		if n, err := strconv.Atoi(minRep); err == nil {
			filter.MinReputation = n
		}
	}

	agents, err := s.store.SearchAgents(r.Context(), filter)
	if err != nil {
		s.logger.Error("search agents failed", logger.Error(err))
		writeFail(w, http.StatusInternalServerError, logger.ErrCodeStorageError, "internal error")
		return
	}
	if agents == nil {
		agents = []*did.Agent{}
	}
	writeData(w, http.StatusOK, agents)
}

func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	target := did.AgentDID(r.PathValue("did"))
	if err := did.Validate(target); err != nil {
		writeComponentError(w, err)
		return
	}

	agent, err := s.store.GetAgent(r.Context(), target)
	if err != nil {
		s.logger.Error("get agent failed", logger.Error(err))
		writeFail(w, http.StatusInternalServerError, logger.ErrCodeStorageError, "internal error")
		return
	}
	if agent == nil {
		writeFail(w, http.StatusNotFound, logger.ErrCodeNotFound, "agent not found")
		return
	}
	writeData(w, http.StatusOK, agent)
}

func (s *Server) handleUpdateAgent(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	target := did.AgentDID(r.PathValue("did"))
	if target != caller.DID {
		writeFail(w, http.StatusForbidden, logger.ErrCodeForbidden, "can only update own profile")
		return
	}

	var profile did.Profile
	if err := decodeBody(r, &profile); err != nil {
		writeFail(w, http.StatusBadRequest, logger.ErrCodeInvalidInput, "malformed request body")
		return
	}

	caller.UpdateProfile(profile)
	if err := s.store.SaveAgent(r.Context(), caller); err != nil {
		s.logger.Error("save agent failed", logger.Error(err))
		writeFail(w, http.StatusInternalServerError, logger.ErrCodeStorageError, "internal error")
		return
	}
	writeData(w, http.StatusOK, caller)
}

type addCredentialRequest struct {
	Contract string `json:"contract"`
	AssetID  string `json:"assetId"`
	Schema   string `json:"schema,omitempty"`
}

func (s *Server) handleAddCredential(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	target := did.AgentDID(r.PathValue("did"))
	if target != caller.DID {
		writeFail(w, http.StatusForbidden, logger.ErrCodeForbidden, "can only modify own credentials")
		return
	}

	var req addCredentialRequest
	if err := decodeBody(r, &req); err != nil || req.Contract == "" || req.AssetID == "" {
		writeFail(w, http.StatusBadRequest, logger.ErrCodeInvalidInput, "contract and assetId are required")
		return
	}

	caller.AddCredential(req.Contract, req.AssetID, req.Schema)
	if err := s.store.SaveAgent(r.Context(), caller); err != nil {
		s.logger.Error("save agent failed", logger.Error(err))
		writeFail(w, http.StatusInternalServerError, logger.ErrCodeStorageError, "internal error")
		return
	}
	writeData(w, http.StatusOK, caller)
}
