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

package service

import (
	"errors"
	"net/http"

	"github.com/moltbook/agentprivacy/channel"
	"github.com/moltbook/agentprivacy/crypto"
	"github.com/moltbook/agentprivacy/did"
	"github.com/moltbook/agentprivacy/internal/logger"
)

// writeComponentError maps a sentinel error from did/channel/crypto to an
// HTTP status and the opaque {code,message} the façade exposes, per
// spec.md §7's taxonomy. Unrecognized errors are treated as internal and
// logged with full context server-side; the caller only ever sees
// ErrCodeInternal.
func writeComponentError(w http.ResponseWriter, err error) {
	var didErr did.Error
	if errors.As(err, &didErr) {
		writeFail(w, didStatus(didErr), didErr.Code, didErr.Message)
		return
	}

	switch {
	case errors.Is(err, channel.ErrEmptyInviteeList),
		errors.Is(err, channel.ErrMissingWrappedKey),
		errors.Is(err, channel.ErrUnknownAccessPolicy),
		errors.Is(err, channel.ErrUnknownAlgorithm),
		errors.Is(err, channel.ErrMissingField),
		errors.Is(err, channel.ErrChannelIDMismatch):
		writeFail(w, http.StatusBadRequest, logger.ErrCodeInvalidInput, err.Error())

	case errors.Is(err, channel.ErrAgentNotFound):
		writeFail(w, http.StatusBadRequest, logger.ErrCodeInvalidInput, err.Error())

	case errors.Is(err, channel.ErrNotParticipant),
		errors.Is(err, channel.ErrNotAuthorized),
		errors.Is(err, channel.ErrCannotRemoveCreator),
		errors.Is(err, channel.ErrNotInvitee):
		writeFail(w, http.StatusForbidden, logger.ErrCodeForbidden, err.Error())

	case errors.Is(err, channel.ErrMaxParticipants),
		errors.Is(err, channel.ErrIllegalState):
		writeFail(w, http.StatusConflict, logger.ErrCodeConflict, err.Error())

	case errors.Is(err, channel.ErrInvitationExpired):
		writeFail(w, http.StatusConflict, logger.ErrCodeConflict, err.Error())

	case errors.Is(err, channel.ErrRotationInProgress):
		writeFail(w, http.StatusConflict, logger.ErrCodeConflict, err.Error())

	case errors.Is(err, crypto.ErrCryptoFailure):
		writeFail(w, http.StatusInternalServerError, logger.ErrCodeCryptoError, "cryptographic failure")

	default:
		writeFail(w, http.StatusInternalServerError, logger.ErrCodeInternal, "internal error")
	}
}

func didStatus(e did.Error) int {
	switch e.Code {
	case did.ErrMalformedDID.Code, did.ErrMissingField.Code:
		return http.StatusBadRequest
	case did.ErrUnsupportedMethod.Code:
		return http.StatusBadRequest
	case did.ErrAgentNotFound.Code:
		return http.StatusNotFound
	case did.ErrAgentExists.Code:
		return http.StatusConflict
	case did.ErrInvalidSignature.Code:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
