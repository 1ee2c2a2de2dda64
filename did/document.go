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

// VerificationMethod is a single key entry in a Document, following the
// shape of the W3C DID Core verificationMethod object.
type VerificationMethod struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	Controller      string `json:"controller"`
	PublicKeyBase64 string `json:"publicKeyBase64"`
}

// Document is a minimal W3C-shaped DID document for an agent. Both
// verification methods publish the same underlying Ed25519 public key
// material: #auth-key is used directly for signature verification, and
// #agreement-key is the same bytes tagged for X25519 conversion by a
// peer performing key agreement (see crypto.DeriveSharedSecret).
type Document struct {
	Context            []string             `json:"@context"`
	ID                 string               `json:"id"`
	VerificationMethod []VerificationMethod `json:"verificationMethod"`
	Authentication     []string             `json:"authentication"`
	KeyAgreement       []string             `json:"keyAgreement"`
}

const (
	authKeyFragment    = "#auth-key"
	agreementKeyFragment = "#agreement-key"
)

// BuildDocument renders the DID document for an agent's DID and base64
// public key.
func BuildDocument(agentDID AgentDID, publicKeyBase64 string) Document {
	id := string(agentDID)
	authID := id + authKeyFragment
	agreeID := id + agreementKeyFragment

	return Document{
		Context: []string{"https://www.w3.org/ns/did/v1"},
		ID:      id,
		VerificationMethod: []VerificationMethod{
			{ID: authID, Type: "Ed25519VerificationKey2020", Controller: id, PublicKeyBase64: publicKeyBase64},
			{ID: agreeID, Type: "X25519KeyAgreementKey2020", Controller: id, PublicKeyBase64: publicKeyBase64},
		},
		Authentication: []string{authID},
		KeyAgreement:   []string{agreeID},
	}
}
