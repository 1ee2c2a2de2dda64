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
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moltbook/agentprivacy/client"
	"github.com/moltbook/agentprivacy/did"
)

var didServerURL string

var didCmd = &cobra.Command{
	Use:   "did",
	Short: "Inspect and resolve DIDs",
}

var didDeriveCmd = &cobra.Command{
	Use:   "derive <publicKeyBase64>",
	Short: "Derive the DID for a base64 public key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(did.Derive(args[0]))
		return nil
	},
}

var didDocumentCmd = &cobra.Command{
	Use:   "document <publicKeyBase64>",
	Short: "Print the DID document for a base64 public key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		agentDID := did.Derive(args[0])
		doc := did.BuildDocument(agentDID, args[0])
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

var didResolveCmd = &cobra.Command{
	Use:   "resolve <did>",
	Short: "Resolve an agent record from a running service façade",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		agentDID := did.AgentDID(args[0])
		if err := did.Validate(agentDID); err != nil {
			return fmt.Errorf("invalid did: %w", err)
		}

		transport := client.NewTransport(didServerURL)
		var agent did.Agent
		if err := transport.Get(context.Background(), "/agents/"+args[0], &agent); err != nil {
			return err
		}
		out, err := json.MarshalIndent(agent, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(didCmd)
	didCmd.AddCommand(didDeriveCmd, didDocumentCmd, didResolveCmd)
	didCmd.PersistentFlags().StringVar(&didServerURL, "server", "http://localhost:8443/api/v1", "privacyd base URL")
}
