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

// privacy-cli is the client-side command line tool for local key
// generation, DID inspection, and agent registration against a running
// privacyd instance.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/moltbook/agentprivacy/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:   "privacy-cli",
	Short: "agentprivacy client tooling",
	Long: `privacy-cli generates and inspects agent identities and talks to a
privacyd service façade on the caller's behalf. Private keys never leave
this process - they are generated, persisted to a local key store, and
used to sign requests, but are never transmitted.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.UserAgent())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(versionCmd)
}
