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
	"crypto/ecdh"
	"crypto/ed25519"
	"crypto/sha512"
	"crypto/subtle"

	"filippo.io/edwards25519"
)

// DeriveSharedSecret computes a 256-bit key agreement secret between my
// long-term Ed25519 identity key and a peer's Ed25519 public key. Both keys
// are converted to their X25519 (Montgomery) form per RFC 8032 §5.1.5 and
// run through X25519 ECDH; the raw 32-byte shared point is returned
// directly (the spec does not require HKDF expansion for this to be a
// valid agreement secret - see SPEC_FULL.md §4.1).
func (kp *IdentityKeyPair) DeriveSharedSecret(peerPublicKey ed25519.PublicKey) ([]byte, error) {
	myX, err := ed25519PrivToX25519(kp.private)
	if err != nil {
		return nil, ErrCryptoFailure
	}
	peerX, err := ed25519PubToX25519(peerPublicKey)
	if err != nil {
		return nil, ErrCryptoFailure
	}

	curve := ecdh.X25519()
	myPriv, err := curve.NewPrivateKey(myX)
	if err != nil {
		return nil, ErrCryptoFailure
	}
	peerPub, err := curve.NewPublicKey(peerX)
	if err != nil {
		return nil, ErrCryptoFailure
	}

	raw, err := myPriv.ECDH(peerPub)
	if err != nil {
		return nil, ErrCryptoFailure
	}

	var zero [32]byte
	if subtle.ConstantTimeCompare(raw, zero[:]) == 1 {
		return nil, ErrCryptoFailure
	}

	return raw, nil
}

// ed25519PrivToX25519 converts an Ed25519 private key into the X25519
// scalar used for ECDH, by hashing its seed and clamping per RFC 8032.
func ed25519PrivToX25519(priv ed25519.PrivateKey) ([]byte, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, ErrCryptoFailure
	}
	seed := priv.Seed()
	h := sha512.Sum512(seed)
	h[0] &= 248
	h[31] &= 127
	h[31] |= 64

	var xPriv [32]byte
	copy(xPriv[:], h[:32])
	return xPriv[:], nil
}

// ed25519PubToX25519 converts an Ed25519 public key point into its
// Montgomery (X25519) u-coordinate.
func ed25519PubToX25519(pub ed25519.PublicKey) ([]byte, error) {
	if len(pub) != ed25519.PublicKeySize {
		return nil, ErrCryptoFailure
	}
	point, err := new(edwards25519.Point).SetBytes(pub)
	if err != nil {
		return nil, ErrCryptoFailure
	}
	return point.BytesMontgomery(), nil
}
