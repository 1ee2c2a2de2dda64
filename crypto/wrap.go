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
	"io"

	"golang.org/x/crypto/hkdf"
)

// wrapInfo is the fixed HKDF info string separating channel-key-wrap keys
// from any other use of a pairwise ECDH secret.
var wrapInfo = []byte("moltbook-channel-key-wrap-v1")

// GenerateChannelKey returns a fresh 256-bit symmetric key for a channel.
func GenerateChannelKey() ([]byte, error) {
	key := make([]byte, ChannelKeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, ErrCryptoFailure
	}
	return key, nil
}

// WrappedKey is the opaque, server-stored payload an invitation carries:
// only the named invitee can unwrap it.
type WrappedKey struct {
	Ciphertext []byte
	Nonce      []byte
}

// WrapChannelKey encrypts channelKey under the pairwise shared secret
// between the sender's identity key and the recipient's public key. The
// server only ever stores the result; it cannot unwrap it.
func (kp *IdentityKeyPair) WrapChannelKey(recipientPublicKey ed25519.PublicKey, channelKey []byte) (*WrappedKey, error) {
	secret, err := kp.DeriveSharedSecret(recipientPublicKey)
	if err != nil {
		return nil, err
	}
	wrapKey, err := deriveWrapKey(secret)
	if err != nil {
		return nil, err
	}
	nonce, ciphertext, err := Seal(wrapKey, channelKey, nil)
	if err != nil {
		return nil, err
	}
	return &WrappedKey{Ciphertext: ciphertext, Nonce: nonce}, nil
}

// UnwrapChannelKey reverses WrapChannelKey: it re-derives the same pairwise
// secret from the recipient's private key and the original sender's public
// key, then opens the wrapped blob.
func (kp *IdentityKeyPair) UnwrapChannelKey(senderPublicKey ed25519.PublicKey, wrapped *WrappedKey) ([]byte, error) {
	secret, err := kp.DeriveSharedSecret(senderPublicKey)
	if err != nil {
		return nil, err
	}
	wrapKey, err := deriveWrapKey(secret)
	if err != nil {
		return nil, err
	}
	return Open(wrapKey, wrapped.Nonce, wrapped.Ciphertext, nil)
}

// deriveWrapKey expands a raw ECDH secret into a 32-byte AES key via
// HKDF-SHA256 with a fixed info string, per the optional expansion
// SPEC_FULL.md §4.1 allows.
func deriveWrapKey(secret []byte) ([]byte, error) {
	h := hkdf.New(sha256.New, secret, nil, wrapInfo)
	key := make([]byte, ChannelKeySize)
	if _, err := io.ReadFull(h, key); err != nil {
		return nil, ErrCryptoFailure
	}
	return key, nil
}
