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

// Package client implements the register -> create channel -> accept
// invitation -> encrypt -> send -> fetch -> decrypt orchestration loop
// that runs where private keys live. Nothing in this package ever sends
// a private key or a raw channel key over the wire; channel-key wrapping
// happens here, before any HTTP call.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// envelope mirrors internal/service's wire response shape.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *envelopeError  `json:"error,omitempty"`
	Hint    string          `json:"hint,omitempty"`
}

type envelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Transport is a thin HTTP client over the service façade. It holds no
// cryptographic material; the orchestrator decides what to encrypt and
// wrap before handing bytes to it.
type Transport struct {
	baseURL    string
	httpClient *http.Client
}

// NewTransport creates a transport client against baseURL (e.g.
// "http://localhost:8443/api/v1").
func NewTransport(baseURL string) *Transport {
	return &Transport{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewTransportWithClient allows callers to supply a customized *http.Client
// (timeouts, TLS config, transport-level retries).
func NewTransportWithClient(baseURL string, httpClient *http.Client) *Transport {
	return &Transport{baseURL: baseURL, httpClient: httpClient}
}

// Get issues an unauthenticated GET request against a public endpoint,
// decoding its envelope data into out. CLI tools use this for lookups
// that need no caller identity (e.g. resolving another agent's record).
func (t *Transport) Get(ctx context.Context, path string, out interface{}) error {
	return t.do(ctx, "GET", path, "", nil, out)
}

// do issues an HTTP request with an optional JSON body and caller DID
// header, decoding the façade's envelope into out. An envelope with
// success=false surfaces its error message as a Go error.
func (t *Transport) do(ctx context.Context, method, path, callerDID string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if callerDID != "" {
		req.Header.Set("X-Agent-DID", callerDID)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("parse response (status %d): %s", resp.StatusCode, string(respBody))
	}
	if !env.Success {
		if env.Error != nil {
			return fmt.Errorf("%s: %s", env.Error.Code, env.Error.Message)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}
