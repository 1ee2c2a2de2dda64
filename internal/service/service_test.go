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

package service_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/moltbook/agentprivacy/config"
	"github.com/moltbook/agentprivacy/crypto"
	"github.com/moltbook/agentprivacy/did"
	"github.com/moltbook/agentprivacy/internal/logger"
	"github.com/moltbook/agentprivacy/internal/service"
	"github.com/moltbook/agentprivacy/storage"
	"github.com/moltbook/agentprivacy/storage/memory"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Hint string `json:"hint"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := storage.New(memory.New())
	log := logger.NewLogger(io.Discard, logger.ErrorLevel)
	srv := service.NewServer(&config.Config{}, store, log)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts
}

// registerAgent drives the real registration flow (keypair, signature, DID
// derivation) so tests exercise authentication the same way a real caller
// would, rather than poking storage directly.
func registerAgent(t *testing.T, ts *httptest.Server, name string) did.AgentDID {
	t.Helper()
	identity, err := crypto.GenerateIdentityKeyPair()
	require.NoError(t, err)

	profile := did.Profile{DisplayName: name}
	payload, err := json.Marshal(struct {
		PublicKey string      `json:"publicKey"`
		Profile   did.Profile `json:"profile"`
	}{identity.PublicKeyBase64(), profile})
	require.NoError(t, err)

	sig, err := identity.Sign(payload)
	require.NoError(t, err)

	req := did.RegistrationRequest{
		PublicKey: identity.PublicKeyBase64(),
		Profile:   profile,
		Signature: crypto.EncodeBase64(sig),
	}
	body, err := json.Marshal(req)
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/api/v1/agents/register", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	require.True(t, env.Success)

	var out struct {
		DID did.AgentDID `json:"did"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out.DID
}

func TestListChannelsWithoutAuthHeaderReturnsUnauthorized(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/channels", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	require.False(t, env.Success)
	require.Equal(t, logger.ErrCodeUnauthorized, env.Error.Code)
}

func TestGetChannelDeniesNonParticipant(t *testing.T) {
	ts := newTestServer(t)

	creator := registerAgent(t, ts, "creator")
	invitee := registerAgent(t, ts, "invitee")
	outsider := registerAgent(t, ts, "outsider")

	inviteePubKey := fetchAgentPublicKey(t, ts, invitee)
	wrapped := wrapChannelKeyFor(t, ts, creator, inviteePubKey)

	createReq := struct {
		Invitees    []did.AgentDID                      `json:"invitees"`
		WrappedKeys map[string]crypto.WrappedKey `json:"wrappedKeys"`
	}{
		Invitees:    []did.AgentDID{invitee},
		WrappedKeys: map[string]crypto.WrappedKey{string(invitee): wrapped},
	}
	var created struct {
		Channel struct {
			ID string `json:"id"`
		} `json:"channel"`
	}
	doRequest(t, ts, http.MethodPost, "/api/v1/channels", string(creator), createReq, &created)

	var out struct{}
	status := doRequestStatus(t, ts, http.MethodGet, "/api/v1/channels/"+created.Channel.ID, string(outsider), nil, &out)
	require.Equal(t, http.StatusForbidden, status)
}

// fetchAgentPublicKey and wrapChannelKeyFor stand in for the client
// package's key lookup and wrap step, kept minimal here since this suite
// tests façade access control, not the orchestration loop itself.
func fetchAgentPublicKey(t *testing.T, ts *httptest.Server, d did.AgentDID) string {
	t.Helper()
	var agent did.Agent
	doRequest(t, ts, http.MethodGet, "/api/v1/agents/"+string(d), "", nil, &agent)
	return agent.PublicKey
}

func wrapChannelKeyFor(t *testing.T, ts *httptest.Server, creator did.AgentDID, inviteePubKeyB64 string) crypto.WrappedKey {
	t.Helper()
	// The façade has no creator identity to wrap with in this test; instead
	// we exercise the real crypto package directly with a throwaway identity
	// standing in for the creator's, mirroring how client.CreateChannel
	// wraps before ever calling the façade.
	senderIdentity, err := crypto.GenerateIdentityKeyPair()
	require.NoError(t, err)

	pubKey, err := crypto.ImportPublicKey(inviteePubKeyB64)
	require.NoError(t, err)

	channelKey, err := crypto.GenerateChannelKey()
	require.NoError(t, err)

	wk, err := senderIdentity.WrapChannelKey(pubKey, channelKey)
	require.NoError(t, err)
	return *wk
}

func doRequest(t *testing.T, ts *httptest.Server, method, path, callerDID string, body, out interface{}) {
	t.Helper()
	status := doRequestStatus(t, ts, method, path, callerDID, body, out)
	require.True(t, status >= 200 && status < 300, "unexpected status %d for %s %s", status, method, path)
}

func doRequestStatus(t *testing.T, ts *httptest.Server, method, path, callerDID string, body, out interface{}) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if callerDID != "" {
		req.Header.Set("X-Agent-DID", callerDID)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	if env.Success && out != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return resp.StatusCode
}
