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

package did

// ExistsFunc reports whether an agent is already registered under did.
// Implementations are backed by storage; the did package stays
// storage-agnostic and only calls the function it is handed.
type ExistsFunc func(agentDID AgentDID) (bool, error)

// Register performs the full registration orchestration: it validates the
// request and signature via New, then - if exists is non-nil - rejects
// re-registration of a DID that already has an agent record. Callers that
// do not need the duplicate check (e.g. offline tooling) may pass a nil
// exists.
func Register(req *RegistrationRequest, exists ExistsFunc) (*Agent, error) {
	agent, err := New(req)
	if err != nil {
		return nil, err
	}

	if exists == nil {
		return agent, nil
	}

	found, err := exists(agent.DID)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, ErrAgentExists
	}

	return agent, nil
}
