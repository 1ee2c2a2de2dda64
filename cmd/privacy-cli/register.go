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
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moltbook/agentprivacy/client"
	"github.com/moltbook/agentprivacy/did"
)

var (
	registerServerURL    string
	registerDir          string
	registerName         string
	registerCapabilities string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new agent against a running privacyd instance",
	Long: `Generates a fresh identity key pair, signs a registration request,
and submits it to a privacyd service façade. An identity already in the
key store is not reused: the new agent record and key pair are written
to the key store directory in its place, for later commands.`,
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().StringVar(&registerServerURL, "server", "http://localhost:8443/api/v1", "privacyd base URL")
	registerCmd.Flags().StringVar(&registerDir, "dir", ".moltbook/keys", "key store directory")
	registerCmd.Flags().StringVar(&registerName, "name", "", "agent display name")
	registerCmd.Flags().StringVar(&registerCapabilities, "capabilities", "", "comma-separated capability list")
}

func runRegister(cmd *cobra.Command, args []string) error {
	transport := client.NewTransport(registerServerURL)
	store := client.NewFileKeyStore(registerDir)
	c := client.NewClient(transport, store)

	profile := did.Profile{DisplayName: registerName}
	if registerCapabilities != "" {
		profile.Capabilities = strings.Split(registerCapabilities, ",")
	}

	if err := c.Register(context.Background(), profile); err != nil {
		return fmt.Errorf("register: %w", err)
	}

	fmt.Printf("Registered agent %s\n", c.DID())
	return nil
}
