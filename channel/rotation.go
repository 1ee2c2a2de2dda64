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

package channel

import (
	"errors"
	"sync"
	"time"

	"github.com/moltbook/agentprivacy/crypto"
	"github.com/moltbook/agentprivacy/did"
)

// ErrRotationInProgress is returned when a rotation is already underway
// for a channel and a second one is requested before it finishes.
var ErrRotationInProgress = errors.New("channel key rotation already in progress")

// RotateRequest carries a fresh channel key already wrapped for every
// current participant. As with CreateRequest, the wrapping happens in the
// client orchestrator; Rotate never sees a private key or the raw key.
type RotateRequest struct {
	WrappedKeys map[did.AgentDID]crypto.WrappedKey
}

// Rotator tracks channels with a rotation in flight, guarding against a
// second concurrent rotation racing the first - the same in-flight-map
// pattern used for identity key rotation, applied per channel instead of
// per key id.
type Rotator struct {
	mu       sync.Mutex
	rotating map[string]bool
}

// NewRotator returns an empty Rotator.
func NewRotator() *Rotator {
	return &Rotator{rotating: make(map[string]bool)}
}

// Rotate validates that req supplies a wrapped key for every current
// participant, stamps the channel's RotatedAt, and returns the per-
// participant wrapped keys for the caller to persist (e.g. as refreshed
// invitation records). Channel id and participant set are untouched.
func (r *Rotator) Rotate(c *Channel, req RotateRequest, now time.Time) (map[did.AgentDID]crypto.WrappedKey, error) {
	if !r.tryStart(c.ID) {
		return nil, ErrRotationInProgress
	}
	defer r.finish(c.ID)

	for _, p := range c.Participants {
		if _, ok := req.WrappedKeys[p]; !ok {
			return nil, ErrMissingWrappedKey
		}
	}

	stamp := now
	c.Encryption.RotatedAt = &stamp
	return req.WrappedKeys, nil
}

func (r *Rotator) tryStart(channelID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rotating[channelID] {
		return false
	}
	r.rotating[channelID] = true
	return true
}

func (r *Rotator) finish(channelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rotating, channelID)
}
