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

import (
	"encoding/json"
	"time"

	"github.com/moltbook/agentprivacy/crypto"
)

// Credential is an external verifiable credential (the reference
// implementation models NFT ownership on a named contract; the core never
// queries a chain itself, it only records what an external verifier
// asserts).
type Credential struct {
	Contract   string     `json:"contract"`
	AssetID    string     `json:"assetId"`
	Schema     string     `json:"schema,omitempty"`
	Verified   bool       `json:"verified"`
	VerifiedAt *time.Time `json:"verifiedAt,omitempty"`
}

// key identifies a credential uniquely by (contract, asset).
func (c Credential) key() string { return c.Contract + "\x00" + c.AssetID }

// Profile holds the mutable, agent-owned parts of an Agent record.
type Profile struct {
	DisplayName  string            `json:"displayName,omitempty"`
	Capabilities []string          `json:"capabilities,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Agent is a registered agent identity.
type Agent struct {
	DID          AgentDID     `json:"did"`
	PublicKey    string       `json:"publicKey"` // base64
	Profile      Profile      `json:"profile"`
	Reputation   int          `json:"reputation"`
	Credentials  []Credential `json:"credentials"`
	CreatedAt    time.Time    `json:"createdAt"`
}

const (
	initialReputation = 50
	minReputation      = 0
	maxReputation      = 100
)

// RegistrationRequest is the input to New: a public key, an initial
// profile (without reputation - reputation is never caller-supplied), and
// a signature over the canonical payload of {publicKey, profile}.
type RegistrationRequest struct {
	PublicKey string  `json:"publicKey"`
	Profile   Profile `json:"profile"`
	Signature string  `json:"signature"` // base64
}

// signaturePayload is the exact struct whose JSON encoding is signed by the
// registering client and re-derived here for verification. Field order is
// fixed by the struct definition, making json.Marshal deterministic across
// runs without a separate canonicalization pass.
type signaturePayload struct {
	PublicKey string  `json:"publicKey"`
	Profile   Profile `json:"profile"`
}

// New validates a registration request, verifies its signature, derives
// the agent's DID, and returns a fresh Agent record with reputation
// initialized to 50.
func New(req *RegistrationRequest) (*Agent, error) {
	if req.PublicKey == "" || req.Signature == "" {
		return nil, ErrMissingField
	}

	pubKey, err := crypto.ImportPublicKey(req.PublicKey)
	if err != nil {
		return nil, crypto.ErrCryptoFailure
	}

	payload, err := json.Marshal(signaturePayload{PublicKey: req.PublicKey, Profile: req.Profile})
	if err != nil {
		return nil, crypto.ErrCryptoFailure
	}

	sig, err := crypto.DecodeBase64(req.Signature)
	if err != nil {
		return nil, crypto.ErrCryptoFailure
	}

	if err := crypto.Verify(pubKey, payload, sig); err != nil {
		return nil, ErrInvalidSignature
	}

	agent := &Agent{
		DID:         Derive(req.PublicKey),
		PublicKey:   req.PublicKey,
		Profile:     req.Profile,
		Reputation:  initialReputation,
		Credentials: nil,
		CreatedAt:   time.Now().UTC(),
	}
	return agent, nil
}

// UpdateProfile merges update into the stored profile: a zero-value field
// (empty display name, nil capabilities, nil metadata) means the caller
// left it unset and the existing value survives, so a display-name-only
// PATCH can never wipe out Capabilities or Metadata. Reputation is never
// touched by this path regardless of what the caller supplies - there is
// no reputation field on Profile to even attempt to smuggle a value
// through.
func (a *Agent) UpdateProfile(update Profile) {
	if update.DisplayName != "" {
		a.Profile.DisplayName = update.DisplayName
	}
	if update.Capabilities != nil {
		a.Profile.Capabilities = update.Capabilities
	}
	if update.Metadata != nil {
		a.Profile.Metadata = update.Metadata
	}
}

// AdjustReputation applies delta, clamped to [0,100].
func (a *Agent) AdjustReputation(delta int) {
	r := a.Reputation + delta
	if r < minReputation {
		r = minReputation
	}
	if r > maxReputation {
		r = maxReputation
	}
	a.Reputation = r
}

// AddCredential is idempotent on (contract, assetId): adding the same pair
// twice leaves the credential set unchanged in length. New entries start
// unverified.
func (a *Agent) AddCredential(contract, assetID, schema string) {
	key := Credential{Contract: contract, AssetID: assetID}.key()
	for _, c := range a.Credentials {
		if c.key() == key {
			return
		}
	}
	a.Credentials = append(a.Credentials, Credential{
		Contract: contract,
		AssetID:  assetID,
		Schema:   schema,
	})
}

// MarkCredentialVerified sets verified=true and stamps verifiedAt for the
// credential matching (contract, assetId). It is monotonic: verifying an
// already-verified credential is a no-op, never un-verifying it.
func (a *Agent) MarkCredentialVerified(contract, assetID string) {
	key := Credential{Contract: contract, AssetID: assetID}.key()
	for i := range a.Credentials {
		if a.Credentials[i].key() == key && !a.Credentials[i].Verified {
			now := time.Now().UTC()
			a.Credentials[i].Verified = true
			a.Credentials[i].VerifiedAt = &now
		}
	}
}

// HasVerifiedCredential reports whether any credential matches contract
// (and schema, if non-empty) and is verified.
func (a *Agent) HasVerifiedCredential(contract, schema string) bool {
	return a.CountVerifiedCredentials(contract, schema) > 0
}

// CountVerifiedCredentials counts verified credentials matching contract
// (and schema, if non-empty) - used by credential-gated access policies
// that require a minimum holding count.
func (a *Agent) CountVerifiedCredentials(contract, schema string) int {
	count := 0
	for _, c := range a.Credentials {
		if !c.Verified || c.Contract != contract {
			continue
		}
		if schema != "" && c.Schema != schema {
			continue
		}
		count++
	}
	return count
}
