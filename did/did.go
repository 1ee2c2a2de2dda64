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

// Package did provides decentralized identifier construction, parsing, and
// validation for agent identities, plus the Agent record built on top of a
// DID (profile, reputation, verified credentials, DID document emission).
package did

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/moltbook/agentprivacy/crypto"
)

// Method is the sole DID method this package issues and accepts.
const Method = "moltbook"

var identifierPattern = regexp.MustCompile(`^[a-f0-9]{32}$`)

// AgentDID is a decentralized identifier of the shape did:moltbook:<32 hex>.
type AgentDID string

// Derive computes the deterministic DID for a base64-encoded public key:
// did:moltbook: followed by the first 32 lowercase hex characters of
// SHA-256(publicKey).
func Derive(publicKeyBase64 string) AgentDID {
	full := crypto.HashHex([]byte(publicKeyBase64))
	return AgentDID(fmt.Sprintf("did:%s:%s", Method, full[:32]))
}

// Parse splits a DID into its method and identifier. It requires exactly
// three colon-separated parts with literal prefix "did".
func Parse(did AgentDID) (method, identifier string, err error) {
	parts := strings.Split(string(did), ":")
	if len(parts) != 3 {
		return "", "", ErrMalformedDID
	}
	if parts[0] != "did" {
		return "", "", ErrMalformedDID
	}
	return parts[1], parts[2], nil
}

// Validate reports whether did parses, uses the moltbook method, and has a
// 32-character lowercase-hex identifier.
func Validate(did AgentDID) error {
	method, identifier, err := Parse(did)
	if err != nil {
		return err
	}
	if method != Method {
		return ErrUnsupportedMethod
	}
	if !identifierPattern.MatchString(identifier) {
		return ErrMalformedDID
	}
	return nil
}
