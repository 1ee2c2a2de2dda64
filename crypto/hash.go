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
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// HashBase64 returns the base64 encoding of SHA-256(input).
func HashBase64(input []byte) string {
	sum := sha256.Sum256(input)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// HashStringBase64 hashes a UTF-8 string and returns it base64-encoded.
func HashStringBase64(input string) string {
	return HashBase64([]byte(input))
}

// HashHex returns the lowercase hex encoding of SHA-256(input).
func HashHex(input []byte) string {
	sum := sha256.Sum256(input)
	return hex.EncodeToString(sum[:])
}

// EncodeBase64 round-trips bytes to base64 text, tolerating empty input.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeBase64 round-trips base64 text back to bytes, tolerating empty
// input.
func DecodeBase64(text string) ([]byte, error) {
	if text == "" {
		return []byte{}, nil
	}
	data, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, ErrCryptoFailure
	}
	return data, nil
}
