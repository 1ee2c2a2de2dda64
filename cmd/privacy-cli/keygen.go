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

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moltbook/agentprivacy/client"
	"github.com/moltbook/agentprivacy/crypto"
	"github.com/moltbook/agentprivacy/did"
)

var keygenDir string

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a new agent identity key pair",
	Long: `Generates a fresh Ed25519 identity key pair and writes it to the local
key store. The same key doubles as the agent's X25519 channel-key
agreement key - there is only one key to manage.`,
	RunE: runKeygen,
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	keygenCmd.Flags().StringVar(&keygenDir, "dir", ".moltbook/keys", "key store directory")
}

func runKeygen(cmd *cobra.Command, args []string) error {
	identity, err := crypto.GenerateIdentityKeyPair()
	if err != nil {
		return fmt.Errorf("generate identity: %w", err)
	}

	store := client.NewFileKeyStore(keygenDir)
	if err := store.Save(&client.Credentials{
		PublicKey:  identity.PublicKey(),
		PrivateKey: identity.PrivateKey(),
	}); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}

	agentDID := did.Derive(identity.PublicKeyBase64())
	fmt.Printf("Identity written to %s\n", keygenDir)
	fmt.Printf("DID:        %s\n", agentDID)
	fmt.Printf("Public key: %s\n", identity.PublicKeyBase64())
	return nil
}
