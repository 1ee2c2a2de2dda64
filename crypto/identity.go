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

package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// IdentityKeyPair is the long-term Ed25519 key pair bound to an agent's DID.
// The same key doubles as an X25519 agreement key via DeriveSharedSecret,
// which converts it to its Montgomery form on demand (see agreement.go) -
// an agent therefore publishes exactly one public key.
type IdentityKeyPair struct {
	public  ed25519.PublicKey
	private ed25519.PrivateKey
}

// GenerateIdentityKeyPair creates a new long-term Ed25519 identity key pair.
// The private key never leaves the caller's process.
func GenerateIdentityKeyPair() (*IdentityKeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, ErrCryptoFailure
	}
	return &IdentityKeyPair{public: pub, private: priv}, nil
}

// ImportIdentityKeyPair reconstructs a key pair from raw key bytes, for
// restoring an identity a client persisted across restarts.
func ImportIdentityKeyPair(publicKey, privateKey []byte) *IdentityKeyPair {
	return &IdentityKeyPair{
		public:  ed25519.PublicKey(publicKey),
		private: ed25519.PrivateKey(privateKey),
	}
}

// PublicKey returns the raw 32-byte Ed25519 public key.
func (kp *IdentityKeyPair) PublicKey() ed25519.PublicKey { return kp.public }

// PrivateKey returns the raw 64-byte Ed25519 private key.
func (kp *IdentityKeyPair) PrivateKey() ed25519.PrivateKey { return kp.private }

// PublicKeyBase64 returns the public key base64-encoded, the text form used
// on the wire and in registration requests.
func (kp *IdentityKeyPair) PublicKeyBase64() string {
	return EncodeBase64(kp.public)
}

// ID returns a short fingerprint of the public key, used for logging and
// metrics labels without re-deriving the full DID each time.
func (kp *IdentityKeyPair) ID() string {
	sum := sha256.Sum256(kp.public)
	return hex.EncodeToString(sum[:8])
}

// Sign signs a message with the identity's private key.
func (kp *IdentityKeyPair) Sign(message []byte) ([]byte, error) {
	if kp.private == nil {
		return nil, ErrCryptoFailure
	}
	return ed25519.Sign(kp.private, message), nil
}

// Verify checks a signature against a raw 32-byte Ed25519 public key. It
// never reports which check failed.
func Verify(publicKey []byte, message, signature []byte) error {
	if len(publicKey) != ed25519.PublicKeySize || len(signature) != ed25519.SignatureSize {
		return ErrCryptoFailure
	}
	if !ed25519.Verify(publicKey, message, signature) {
		return ErrCryptoFailure
	}
	return nil
}

// ImportPublicKey parses a base64-encoded Ed25519 public key.
func ImportPublicKey(publicKeyB64 string) (ed25519.PublicKey, error) {
	raw, err := DecodeBase64(publicKeyB64)
	if err != nil || len(raw) != ed25519.PublicKeySize {
		return nil, ErrCryptoFailure
	}
	return ed25519.PublicKey(raw), nil
}
