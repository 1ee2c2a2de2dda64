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

package client_test

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/moltbook/agentprivacy/channel"
	"github.com/moltbook/agentprivacy/client"
	"github.com/moltbook/agentprivacy/config"
	"github.com/moltbook/agentprivacy/did"
	"github.com/moltbook/agentprivacy/internal/logger"
	"github.com/moltbook/agentprivacy/internal/service"
	"github.com/moltbook/agentprivacy/storage"
	"github.com/moltbook/agentprivacy/storage/memory"
)

// newTestServer wires a full façade over an in-memory backend, the same
// stack privacyd runs, so the client is exercised against real component
// logic rather than a hand-rolled fake.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &config.Config{}
	store := storage.New(memory.New())
	log := logger.NewLogger(io.Discard, logger.ErrorLevel)
	srv := service.NewServer(cfg, store, log)

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T, ts *httptest.Server) *client.Client {
	t.Helper()
	transport := client.NewTransport(ts.URL + "/api/v1")
	return client.NewClient(transport, client.NewMemoryKeyStore())
}

func TestRegisterPersistsIdentityAndDID(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t, ts)

	err := c.Register(context.Background(), did.Profile{DisplayName: "alice"})
	require.NoError(t, err)
	require.NotEmpty(t, c.DID())
}

func TestCreateChannelAcceptSendFetchRoundTrips(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	alice := newClient(t, ts)
	require.NoError(t, alice.Register(ctx, did.Profile{DisplayName: "alice"}))

	bob := newClient(t, ts)
	require.NoError(t, bob.Register(ctx, did.Profile{DisplayName: "bob"}))

	ch, invitations, err := alice.CreateChannel(ctx, []did.AgentDID{bob.DID()}, &channel.AccessPolicy{Kind: channel.PolicyInviteOnly}, nil)
	require.NoError(t, err)
	require.Len(t, invitations, 1)
	require.Equal(t, invitations[0].Invitee, bob.DID())

	require.NoError(t, bob.AcceptInvitation(ctx, invitations[0].ID))

	msg, err := alice.SendMessage(ctx, ch.ID, []byte("hello bob"))
	require.NoError(t, err)
	require.NotEmpty(t, msg.ID)

	fetched, err := bob.FetchMessages(ctx, ch.ID)
	require.NoError(t, err)
	require.Len(t, fetched, 1)
	require.Equal(t, []byte("hello bob"), fetched[0].Plaintext)
}

func TestRejectInvitationPreventsKeyUnwrap(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	alice := newClient(t, ts)
	require.NoError(t, alice.Register(ctx, did.Profile{DisplayName: "alice"}))
	bob := newClient(t, ts)
	require.NoError(t, bob.Register(ctx, did.Profile{DisplayName: "bob"}))

	_, invitations, err := alice.CreateChannel(ctx, []did.AgentDID{bob.DID()}, nil, nil)
	require.NoError(t, err)
	require.Len(t, invitations, 1)

	require.NoError(t, bob.RejectInvitation(ctx, invitations[0].ID))
	err = bob.AcceptInvitation(ctx, invitations[0].ID)
	require.Error(t, err)
}

func TestDeleteChannelRemovesItForParticipants(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	alice := newClient(t, ts)
	require.NoError(t, alice.Register(ctx, did.Profile{DisplayName: "alice"}))
	bob := newClient(t, ts)
	require.NoError(t, bob.Register(ctx, did.Profile{DisplayName: "bob"}))

	ch, invitations, err := alice.CreateChannel(ctx, []did.AgentDID{bob.DID()}, nil, nil)
	require.NoError(t, err)
	require.NoError(t, bob.AcceptInvitation(ctx, invitations[0].ID))

	require.NoError(t, alice.DeleteChannel(ctx, ch.ID))

	_, err = bob.FetchMessages(ctx, ch.ID)
	require.Error(t, err)
}

func TestDeleteChannelRejectsNonCreator(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	alice := newClient(t, ts)
	require.NoError(t, alice.Register(ctx, did.Profile{DisplayName: "alice"}))
	bob := newClient(t, ts)
	require.NoError(t, bob.Register(ctx, did.Profile{DisplayName: "bob"}))

	ch, invitations, err := alice.CreateChannel(ctx, []did.AgentDID{bob.DID()}, nil, nil)
	require.NoError(t, err)
	require.NoError(t, bob.AcceptInvitation(ctx, invitations[0].ID))

	err = bob.DeleteChannel(ctx, ch.ID)
	require.Error(t, err)
}

func TestLogoutPurgesChannelKeyCache(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	alice := newClient(t, ts)
	require.NoError(t, alice.Register(ctx, did.Profile{DisplayName: "alice"}))
	bob := newClient(t, ts)
	require.NoError(t, bob.Register(ctx, did.Profile{DisplayName: "bob"}))

	ch, _, err := alice.CreateChannel(ctx, []did.AgentDID{bob.DID()}, nil, nil)
	require.NoError(t, err)

	_, err = alice.SendMessage(ctx, ch.ID, []byte("hi"))
	require.NoError(t, err)

	alice.Logout()
	_, err = alice.SendMessage(ctx, ch.ID, []byte("hi again"))
	require.Error(t, err)
}
