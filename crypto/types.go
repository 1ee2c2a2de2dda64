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

// Package crypto provides the cryptographic primitives the privacy layer is
// built on: long-term Ed25519 identity keys, X25519 key agreement derived
// from those same keys, AES-256-GCM AEAD, channel-key wrapping, hashing,
// and identifier generation. Every failure collapses to ErrCryptoFailure at
// the package boundary; callers never learn which step failed.
package crypto

import "errors"

// ErrCryptoFailure is the single opaque error surfaced for any cryptographic
// failure. Internal causes are logged by the caller, never returned, so no
// side channel (which byte of a tag mismatched, which key was malformed)
// reaches the caller.
var ErrCryptoFailure = errors.New("cryptographic failure")

// ErrSignNotSupported is returned by key types that cannot sign.
var ErrSignNotSupported = errors.New("signing not supported by this key type")

// ErrVerifyNotSupported is returned by key types that cannot verify.
var ErrVerifyNotSupported = errors.New("signature verification not supported by this key type")

// PublicKeySize and PrivateKeySize are the Ed25519 key sizes in bytes.
const (
	PublicKeySize  = 32
	PrivateKeySize = 64
	ChannelKeySize = 32 // 256-bit symmetric channel key
	NonceSize      = 12 // 96-bit AEAD nonce
)
