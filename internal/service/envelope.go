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

// Package service implements the HTTP façade over the privacy layer's
// component packages (did, channel, storage): request parsing, DID-header
// authentication, access-control enforcement, and the {success,data,error}
// response envelope. It performs no cryptography beyond the signature
// verification did.New already does.
package service

import (
	"encoding/json"
	"net/http"
)

// Envelope is the wire shape of every non-empty HTTP response.
type Envelope struct {
	Success bool            `json:"success"`
	Data    interface{}      `json:"data,omitempty"`
	Error   *EnvelopeError  `json:"error,omitempty"`
	Hint    string          `json:"hint,omitempty"`
}

// EnvelopeError is the error body inside a failed Envelope.
type EnvelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, Envelope{Success: true, Data: data})
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, Envelope{Success: true})
}

func writeFail(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Envelope{Success: false, Error: &EnvelopeError{Code: code, Message: message}})
}

func writeFailHint(w http.ResponseWriter, status int, code, message, hint string) {
	writeJSON(w, status, Envelope{Success: false, Error: &EnvelopeError{Code: code, Message: message}, Hint: hint})
}

func decodeBody(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	return dec.Decode(dst)
}
