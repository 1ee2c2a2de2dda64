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

package client

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/moltbook/agentprivacy/channel"
	"github.com/moltbook/agentprivacy/crypto"
	"github.com/moltbook/agentprivacy/did"
	"github.com/moltbook/agentprivacy/internal/metrics"
)

// Client is the composition root for the register -> create channel ->
// accept invitation -> encrypt -> send -> fetch -> decrypt loop. It is the
// only place in this repository that ever holds a private key.
type Client struct {
	identity  *crypto.IdentityKeyPair
	agent     *did.Agent
	transport *Transport
	keystore  KeyStore

	mu          sync.Mutex
	channelKeys map[string][]byte // channel id -> decrypted channel key
}

// NewClient wires a transport and a credential store together. Call
// Restore to resume a persisted identity, or Register to create one.
func NewClient(transport *Transport, keystore KeyStore) *Client {
	return &Client{
		transport:   transport,
		keystore:    keystore,
		channelKeys: make(map[string][]byte),
	}
}

// Restore loads a previously persisted identity from the key store. It
// returns ErrNoCredentials if none exists yet.
func (c *Client) Restore() error {
	creds, err := c.keystore.Load()
	if err != nil {
		return err
	}
	c.identity = crypto.ImportIdentityKeyPair(creds.PublicKey, creds.PrivateKey)
	c.agent = creds.Agent
	return nil
}

// DID returns the caller's own DID, once registered or restored.
func (c *Client) DID() did.AgentDID {
	if c.agent == nil {
		return ""
	}
	return c.agent.DID
}

// Register generates a fresh identity key pair, signs a registration
// request, submits it, and persists the result via the key store.
func (c *Client) Register(ctx context.Context, profile did.Profile) error {
	identity, err := crypto.GenerateIdentityKeyPair()
	if err != nil {
		return fmt.Errorf("generate identity: %w", err)
	}

	payload, err := json.Marshal(struct {
		PublicKey string      `json:"publicKey"`
		Profile   did.Profile `json:"profile"`
	}{identity.PublicKeyBase64(), profile})
	if err != nil {
		return fmt.Errorf("marshal signature payload: %w", err)
	}
	sig, err := identity.Sign(payload)
	if err != nil {
		return fmt.Errorf("sign registration: %w", err)
	}

	req := did.RegistrationRequest{
		PublicKey: identity.PublicKeyBase64(),
		Profile:   profile,
		Signature: crypto.EncodeBase64(sig),
	}

	var resp struct {
		DID   did.AgentDID `json:"did"`
		Agent *did.Agent   `json:"agent"`
	}
	if err := c.transport.do(ctx, "POST", "/agents/register", "", req, &resp); err != nil {
		return fmt.Errorf("register agent: %w", err)
	}

	c.identity = identity
	c.agent = resp.Agent
	return c.keystore.Save(&Credentials{
		PublicKey:  identity.PublicKey(),
		PrivateKey: identity.PrivateKey(),
		Agent:      resp.Agent,
	})
}

// lookupPublicKey resolves another agent's identity public key, needed to
// derive a pairwise ECDH secret with them.
func (c *Client) lookupPublicKey(ctx context.Context, d did.AgentDID) (ed25519.PublicKey, error) {
	var agent did.Agent
	if err := c.transport.do(ctx, "GET", "/agents/"+string(d), "", nil, &agent); err != nil {
		return nil, fmt.Errorf("lookup agent %s: %w", d, err)
	}
	return crypto.ImportPublicKey(agent.PublicKey)
}

type createChannelWire struct {
	Invitees    []did.AgentDID                   `json:"invitees"`
	Access      *channel.AccessPolicy            `json:"access,omitempty"`
	Metadata    *channel.Metadata                `json:"metadata,omitempty"`
	WrappedKeys map[string]crypto.WrappedKey `json:"wrappedKeys"`
}

type createChannelResult struct {
	Channel     *channel.Channel      `json:"channel"`
	Invitations []*channel.Invitation `json:"invitations"`
}

// CreateChannel wraps a fresh channel key for every invitee concurrently,
// then submits only the wrapped blobs - the server never sees the raw
// channel key or any private key, closing the flaw spec.md §4.6 flags in
// the reference implementation.
func (c *Client) CreateChannel(ctx context.Context, invitees []did.AgentDID, access *channel.AccessPolicy, metadata *channel.Metadata) (*channel.Channel, []*channel.Invitation, error) {
	if c.identity == nil {
		return nil, nil, fmt.Errorf("client: no identity loaded")
	}

	channelKey, err := crypto.GenerateChannelKey()
	if err != nil {
		return nil, nil, fmt.Errorf("generate channel key: %w", err)
	}

	wrapped := make(map[string]crypto.WrappedKey, len(invitees))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, invitee := range invitees {
		invitee := invitee
		g.Go(func() error {
			pubKey, err := c.lookupPublicKey(gctx, invitee)
			if err != nil {
				return err
			}
			start := time.Now()
			wk, err := c.identity.WrapChannelKey(pubKey, channelKey)
			metrics.CryptoOperationDuration.WithLabelValues("wrap", "x25519").Observe(time.Since(start).Seconds())
			if err != nil {
				metrics.CryptoErrors.WithLabelValues("wrap").Inc()
				return fmt.Errorf("wrap channel key for %s: %w", invitee, err)
			}
			metrics.CryptoOperations.WithLabelValues("wrap", "x25519").Inc()
			mu.Lock()
			wrapped[string(invitee)] = *wk
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var result createChannelResult
	req := createChannelWire{Invitees: invitees, Access: access, Metadata: metadata, WrappedKeys: wrapped}
	if err := c.transport.do(ctx, "POST", "/channels", string(c.DID()), req, &result); err != nil {
		return nil, nil, fmt.Errorf("create channel: %w", err)
	}

	c.mu.Lock()
	c.channelKeys[result.Channel.ID] = channelKey
	c.mu.Unlock()

	return result.Channel, result.Invitations, nil
}

type rotateChannelWire struct {
	WrappedKeys map[string]crypto.WrappedKey `json:"wrappedKeys"`
}

// RotateChannel generates a fresh channel key, wraps it for every current
// participant, and submits the wrapped blobs to replace the channel's
// key material. Only the channel creator may call this successfully.
func (c *Client) RotateChannel(ctx context.Context, channelID string, participants []did.AgentDID) (*channel.Channel, error) {
	if c.identity == nil {
		return nil, fmt.Errorf("client: no identity loaded")
	}

	channelKey, err := crypto.GenerateChannelKey()
	if err != nil {
		return nil, fmt.Errorf("generate channel key: %w", err)
	}

	wrapped := make(map[string]crypto.WrappedKey, len(participants))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, participant := range participants {
		participant := participant
		g.Go(func() error {
			pubKey, err := c.lookupPublicKey(gctx, participant)
			if err != nil {
				return err
			}
			start := time.Now()
			wk, err := c.identity.WrapChannelKey(pubKey, channelKey)
			metrics.CryptoOperationDuration.WithLabelValues("wrap", "x25519").Observe(time.Since(start).Seconds())
			if err != nil {
				metrics.CryptoErrors.WithLabelValues("wrap").Inc()
				return fmt.Errorf("wrap channel key for %s: %w", participant, err)
			}
			metrics.CryptoOperations.WithLabelValues("wrap", "x25519").Inc()
			mu.Lock()
			wrapped[string(participant)] = *wk
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var updated channel.Channel
	path := fmt.Sprintf("/channels/%s/rotate", channelID)
	if err := c.transport.do(ctx, "POST", path, string(c.DID()), rotateChannelWire{WrappedKeys: wrapped}, &updated); err != nil {
		return nil, fmt.Errorf("rotate channel: %w", err)
	}

	c.mu.Lock()
	c.channelKeys[channelID] = channelKey
	c.mu.Unlock()
	return &updated, nil
}

// DeleteChannel removes a channel and everything it carries (messages,
// invitations, per-agent indices). Only the channel creator may call this
// successfully; the façade enforces that.
func (c *Client) DeleteChannel(ctx context.Context, channelID string) error {
	return c.transport.do(ctx, "DELETE", "/channels/"+channelID, string(c.DID()), nil, nil)
}

type acceptInvitationResult struct {
	Invitation *channel.Invitation `json:"invitation"`
}

// AcceptInvitation accepts a pending invitation and unwraps the channel
// key it carries using the inviter's public key, caching the decrypted
// key for subsequent send/fetch calls on that channel.
func (c *Client) AcceptInvitation(ctx context.Context, invitationID string) error {
	if c.identity == nil {
		return fmt.Errorf("client: no identity loaded")
	}

	var result acceptInvitationResult
	path := fmt.Sprintf("/invitations/%s/accept", invitationID)
	if err := c.transport.do(ctx, "POST", path, string(c.DID()), nil, &result); err != nil {
		return fmt.Errorf("accept invitation: %w", err)
	}

	inviterKey, err := c.lookupPublicKey(ctx, result.Invitation.Inviter)
	if err != nil {
		return err
	}
	unwrapStart := time.Now()
	channelKey, err := c.identity.UnwrapChannelKey(inviterKey, &result.Invitation.WrappedKey)
	metrics.CryptoOperationDuration.WithLabelValues("unwrap", "x25519").Observe(time.Since(unwrapStart).Seconds())
	if err != nil {
		metrics.CryptoErrors.WithLabelValues("unwrap").Inc()
		return fmt.Errorf("unwrap channel key: %w", err)
	}
	metrics.CryptoOperations.WithLabelValues("unwrap", "x25519").Inc()

	c.mu.Lock()
	c.channelKeys[result.Invitation.ChannelID] = channelKey
	c.mu.Unlock()
	return nil
}

// RejectInvitation declines a pending invitation.
func (c *Client) RejectInvitation(ctx context.Context, invitationID string) error {
	path := fmt.Sprintf("/invitations/%s/reject", invitationID)
	return c.transport.do(ctx, "POST", path, string(c.DID()), nil, nil)
}

type sendMessageWire struct {
	ChannelID          string `json:"channelId"`
	Nonce              []byte `json:"nonce"`
	Ciphertext         []byte `json:"ciphertext"`
	EphemeralPublicKey []byte `json:"ephemeralPublicKey,omitempty"`
}

// SendMessage encrypts plaintext under the cached channel key and submits
// the resulting envelope. The channel key must already be known, either
// from CreateChannel or a prior AcceptInvitation.
func (c *Client) SendMessage(ctx context.Context, channelID string, plaintext []byte) (*channel.Message, error) {
	c.mu.Lock()
	key, ok := c.channelKeys[channelID]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("client: no channel key cached for %s", channelID)
	}

	sealStart := time.Now()
	nonce, ciphertext, err := crypto.Seal(key, plaintext, nil)
	metrics.CryptoOperationDuration.WithLabelValues("seal", "aes256gcm").Observe(time.Since(sealStart).Seconds())
	if err != nil {
		metrics.CryptoErrors.WithLabelValues("seal").Inc()
		return nil, fmt.Errorf("encrypt message: %w", err)
	}
	metrics.CryptoOperations.WithLabelValues("seal", "aes256gcm").Inc()

	var msg channel.Message
	req := sendMessageWire{ChannelID: channelID, Nonce: nonce, Ciphertext: ciphertext}
	path := fmt.Sprintf("/channels/%s/messages", channelID)
	if err := c.transport.do(ctx, "POST", path, string(c.DID()), req, &msg); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	return &msg, nil
}

// DecryptedMessage pairs a stored envelope with its plaintext.
type DecryptedMessage struct {
	*channel.Message
	Plaintext []byte
}

// FetchMessages retrieves a channel's messages and decrypts each using the
// cached channel key.
func (c *Client) FetchMessages(ctx context.Context, channelID string) ([]DecryptedMessage, error) {
	c.mu.Lock()
	key, ok := c.channelKeys[channelID]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("client: no channel key cached for %s", channelID)
	}

	var msgs []*channel.Message
	path := fmt.Sprintf("/channels/%s/messages", channelID)
	if err := c.transport.do(ctx, "GET", path, string(c.DID()), nil, &msgs); err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}

	out := make([]DecryptedMessage, 0, len(msgs))
	for _, m := range msgs {
		openStart := time.Now()
		plaintext, err := crypto.Open(key, m.Nonce, m.Ciphertext, nil)
		metrics.CryptoOperationDuration.WithLabelValues("open", "aes256gcm").Observe(time.Since(openStart).Seconds())
		if err != nil {
			metrics.CryptoErrors.WithLabelValues("open").Inc()
			return nil, fmt.Errorf("decrypt message %s: %w", m.ID, err)
		}
		metrics.CryptoOperations.WithLabelValues("open", "aes256gcm").Inc()
		out = append(out, DecryptedMessage{Message: m, Plaintext: plaintext})
	}
	return out, nil
}

// Logout purges the decrypted channel-key cache, per spec.md §4.6's
// "SHOULD be purged on logout" guidance. The persisted identity on disk
// is untouched.
func (c *Client) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channelKeys = make(map[string][]byte)
}
