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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moltbook/agentprivacy/client"
	"github.com/moltbook/agentprivacy/did"
)

func TestFileKeyStoreLoadWithNoCredentialsReturnsErrNoCredentials(t *testing.T) {
	store := client.NewFileKeyStore(t.TempDir())
	_, err := store.Load()
	assert.ErrorIs(t, err, client.ErrNoCredentials)
}

func TestFileKeyStoreSaveLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	store := client.NewFileKeyStore(dir)

	creds := &client.Credentials{
		PublicKey:  []byte{1, 2, 3},
		PrivateKey: []byte{4, 5, 6, 7},
		Agent:      &did.Agent{DID: "did:moltbook:deadbeef"},
	}
	require.NoError(t, store.Save(creds))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, creds.PublicKey, loaded.PublicKey)
	assert.Equal(t, creds.PrivateKey, loaded.PrivateKey)
	assert.Equal(t, creds.Agent.DID, loaded.Agent.DID)

	info, err := filepath.Glob(filepath.Join(dir, "*.json"))
	require.NoError(t, err)
	assert.Len(t, info, 1)
}

func TestMemoryKeyStoreSaveLoadRoundTrips(t *testing.T) {
	store := client.NewMemoryKeyStore()

	_, err := store.Load()
	assert.ErrorIs(t, err, client.ErrNoCredentials)

	creds := &client.Credentials{PublicKey: []byte{9}, PrivateKey: []byte{8}}
	require.NoError(t, store.Save(creds))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, creds, loaded)
}
