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

// Package channel implements channel lifecycle, access control, the
// invitation state machine, and message-envelope handling for the privacy
// layer. None of it touches storage or transport; callers supply lookups
// and persist the records this package produces.
package channel

import "errors"

// Sentinel errors for the channel module. The service façade maps each to
// an HTTP status; error text here is never the wire format.
var (
	ErrEmptyInviteeList     = errors.New("invitee list must not be empty")
	ErrAgentNotFound        = errors.New("agent not found")
	ErrMissingWrappedKey    = errors.New("missing wrapped channel key for invitee")
	ErrUnknownAccessPolicy  = errors.New("unknown access-control policy")
	ErrUnknownAlgorithm     = errors.New("unknown encryption algorithm")
	ErrMaxParticipants      = errors.New("channel is at maximum participants")
	ErrNotParticipant       = errors.New("not a channel participant")
	ErrNotAuthorized        = errors.New("not authorized")
	ErrCannotRemoveCreator  = errors.New("cannot remove channel creator")
	ErrMissingField         = errors.New("missing required field")
	ErrChannelIDMismatch    = errors.New("channel id mismatch")
	ErrIllegalState         = errors.New("illegal invitation state transition")
	ErrInvitationExpired    = errors.New("invitation expired")
	ErrNotInvitee           = errors.New("invitation not addressed to caller")
)
