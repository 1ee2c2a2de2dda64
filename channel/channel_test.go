package channel_test

import (
	"testing"
	"time"

	"github.com/moltbook/agentprivacy/channel"
	"github.com/moltbook/agentprivacy/crypto"
	"github.com/moltbook/agentprivacy/did"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	creatorDID  did.AgentDID = "did:moltbook:creator00000000000000000000000000"
	agent1DID   did.AgentDID = "did:moltbook:agent1111111111111111111111111111"
	outsiderDID did.AgentDID = "did:moltbook:outsider000000000000000000000000"
)

func agentRegistry(dids ...did.AgentDID) channel.AgentLookup {
	known := map[did.AgentDID]*did.Agent{}
	for _, d := range dids {
		known[d] = &did.Agent{DID: d, Reputation: 50}
	}
	return func(d did.AgentDID) (*did.Agent, error) {
		return known[d], nil
	}
}

func wrappedKeyFor(invitees ...did.AgentDID) map[did.AgentDID]crypto.WrappedKey {
	wraps := make(map[did.AgentDID]crypto.WrappedKey, len(invitees))
	for _, invitee := range invitees {
		wraps[invitee] = crypto.WrappedKey{Ciphertext: []byte("ct-" + string(invitee)), Nonce: []byte("nonce")}
	}
	return wraps
}

func TestCreateInviteOnlyChannel(t *testing.T) {
	now := time.Now()
	lookup := agentRegistry(creatorDID, agent1DID, outsiderDID)

	result, err := channel.Create(creatorDID, channel.CreateRequest{
		Invitees:    []did.AgentDID{agent1DID},
		WrappedKeys: wrappedKeyFor(agent1DID),
	}, lookup, now)
	require.NoError(t, err)

	require.Len(t, result.Invitations, 1)
	inv := result.Invitations[0]
	assert.Equal(t, channel.StatusPending, inv.Status)
	assert.Equal(t, now.Add(channel.InvitationTTL), inv.ExpiresAt)
	assert.Contains(t, result.Channel.Participants, creatorDID)
	assert.Contains(t, result.Channel.Participants, agent1DID)
	assert.Equal(t, channel.PolicyInviteOnly, result.Channel.Access.Kind)

	outsider := &did.Agent{DID: outsiderDID}
	decision := channel.DecideAccess(result.Channel, outsider)
	assert.False(t, decision.Allowed)
	assert.Equal(t, "Invite required", decision.Reason)
}

func TestCreateRejectsEmptyInviteeList(t *testing.T) {
	_, err := channel.Create(creatorDID, channel.CreateRequest{}, agentRegistry(creatorDID), time.Now())
	assert.ErrorIs(t, err, channel.ErrEmptyInviteeList)
}

func TestCreateRejectsUnknownAgent(t *testing.T) {
	_, err := channel.Create(creatorDID, channel.CreateRequest{
		Invitees:    []did.AgentDID{agent1DID},
		WrappedKeys: wrappedKeyFor(agent1DID),
	}, agentRegistry(creatorDID), time.Now())
	assert.ErrorIs(t, err, channel.ErrAgentNotFound)
}

func TestCreatorAlwaysParticipant(t *testing.T) {
	result, err := channel.Create(creatorDID, channel.CreateRequest{
		Invitees:    []did.AgentDID{agent1DID},
		WrappedKeys: wrappedKeyFor(agent1DID),
	}, agentRegistry(creatorDID, agent1DID), time.Now())
	require.NoError(t, err)
	assert.True(t, result.Channel.IsParticipant(creatorDID))
}

func TestCredentialGatedAccess(t *testing.T) {
	ch := &channel.Channel{
		Creator:      creatorDID,
		Participants: []did.AgentDID{creatorDID},
		Access: channel.AccessPolicy{
			Kind:                channel.PolicyCredentialGated,
			CredentialContract:  "atomicassets",
			CredentialSchema:    "moltbook.agent",
		},
	}

	holder := &did.Agent{DID: agent1DID}
	holder.AddCredential("atomicassets", "1", "moltbook.agent")
	holder.MarkCredentialVerified("atomicassets", "1")
	assert.True(t, channel.DecideAccess(ch, holder).Allowed)

	noCredential := &did.Agent{DID: outsiderDID}
	decision := channel.DecideAccess(ch, noCredential)
	assert.False(t, decision.Allowed)
	assert.Equal(t, "Required credential not found", decision.Reason)

	unverifiedHolder := &did.Agent{DID: "did:moltbook:unverified0000000000000000000000"}
	unverifiedHolder.AddCredential("atomicassets", "2", "moltbook.agent")
	assert.False(t, channel.DecideAccess(ch, unverifiedHolder).Allowed)
}

func TestTTLExpiryInStatistics(t *testing.T) {
	now := time.Now()
	ch := &channel.Channel{
		Creator:      creatorDID,
		Participants: []did.AgentDID{creatorDID},
		Metadata:     &channel.Metadata{MessageTTLSeconds: 60},
	}

	older := &channel.Message{ID: "m1", ChannelID: ch.ID, TimestampMS: now.Add(-120 * time.Second).UnixMilli()}
	newer := &channel.Message{ID: "m2", ChannelID: ch.ID, TimestampMS: now.UnixMilli()}

	stats := channel.ComputeStats(ch, []*channel.Message{older, newer}, now)
	assert.Equal(t, 1, stats.MessageCount)
	require.NotNil(t, stats.LastActivityMS)
	assert.Equal(t, newer.TimestampMS, *stats.LastActivityMS)
}

func TestAcceptExpiredInvitationTransitionsToExpired(t *testing.T) {
	now := time.Now()
	inv := channel.NewInvitation("ch-1", creatorDID, agent1DID, crypto.WrappedKey{}, now.Add(-8*24*time.Hour))
	require.Equal(t, channel.StatusPending, inv.Status)

	err := inv.Accept(now)
	assert.ErrorIs(t, err, channel.ErrInvitationExpired)
	assert.Equal(t, channel.StatusExpired, inv.Status)
}

func TestInvitationStatusNeverReturnsToPending(t *testing.T) {
	now := time.Now()
	inv := channel.NewInvitation("ch-1", creatorDID, agent1DID, crypto.WrappedKey{}, now)
	require.NoError(t, inv.Accept(now))

	assert.ErrorIs(t, inv.Accept(now), channel.ErrIllegalState)
	assert.ErrorIs(t, inv.Reject(), channel.ErrIllegalState)
	assert.Equal(t, channel.StatusAccepted, inv.Status)
}

func TestLazyExpireOnRead(t *testing.T) {
	now := time.Now()
	inv := channel.NewInvitation("ch-1", creatorDID, agent1DID, crypto.WrappedKey{}, now.Add(-8*24*time.Hour))
	changed := inv.LazyExpire(now)
	assert.True(t, changed)
	assert.Equal(t, channel.StatusExpired, inv.Status)
}

func TestParticipantRemovalAuthorization(t *testing.T) {
	other := did.AgentDID("did:moltbook:bystander0000000000000000000000")
	ch := &channel.Channel{
		Creator:      creatorDID,
		Participants: []did.AgentDID{creatorDID, agent1DID, other},
	}

	err := ch.RemoveParticipant(other, agent1DID)
	assert.ErrorIs(t, err, channel.ErrNotAuthorized)

	err = ch.RemoveParticipant(creatorDID, creatorDID)
	assert.ErrorIs(t, err, channel.ErrCannotRemoveCreator)

	require.NoError(t, ch.RemoveParticipant(agent1DID, agent1DID))
	assert.False(t, ch.IsParticipant(agent1DID))
}

func TestAddParticipantIdempotentAndCapped(t *testing.T) {
	ch := &channel.Channel{
		Creator:      creatorDID,
		Participants: []did.AgentDID{creatorDID},
		Metadata:     &channel.Metadata{MaxParticipants: 2},
	}

	require.NoError(t, ch.AddParticipant(agent1DID))
	require.NoError(t, ch.AddParticipant(agent1DID)) // idempotent
	assert.Len(t, ch.Participants, 2)

	err := ch.AddParticipant(outsiderDID)
	assert.ErrorIs(t, err, channel.ErrMaxParticipants)
}

func TestValidateSendOrderedChecks(t *testing.T) {
	ch := &channel.Channel{ID: "ch-1", Participants: []did.AgentDID{creatorDID}}

	err := channel.ValidateSend(ch, agent1DID, channel.SendRequest{ChannelID: "ch-1", Nonce: []byte("n"), Ciphertext: []byte("c")})
	assert.ErrorIs(t, err, channel.ErrNotParticipant)

	err = channel.ValidateSend(ch, creatorDID, channel.SendRequest{ChannelID: "ch-1"})
	assert.ErrorIs(t, err, channel.ErrMissingField)

	err = channel.ValidateSend(ch, creatorDID, channel.SendRequest{ChannelID: "ch-2", Nonce: []byte("n"), Ciphertext: []byte("c")})
	assert.ErrorIs(t, err, channel.ErrChannelIDMismatch)

	require.NoError(t, channel.ValidateSend(ch, creatorDID, channel.SendRequest{ChannelID: "ch-1", Nonce: []byte("n"), Ciphertext: []byte("c")}))
}

func TestRotateStampsRotatedAtAndRequiresEveryParticipantKey(t *testing.T) {
	ch := &channel.Channel{ID: "ch-1", Participants: []did.AgentDID{creatorDID, agent1DID}}
	rotator := channel.NewRotator()

	_, err := rotator.Rotate(ch, channel.RotateRequest{WrappedKeys: wrappedKeyFor(creatorDID, agent1DID)}, time.Now())
	require.NoError(t, err)
	assert.NotNil(t, ch.Encryption.RotatedAt)

	_, err = rotator.Rotate(ch, channel.RotateRequest{WrappedKeys: wrappedKeyFor(agent1DID)}, time.Now())
	assert.ErrorIs(t, err, channel.ErrMissingWrappedKey)
}

func TestUnknownAccessPolicyRejected(t *testing.T) {
	err := channel.AccessPolicy{Kind: "sometimes"}.Validate()
	assert.ErrorIs(t, err, channel.ErrUnknownAccessPolicy)
}

func TestUnknownAlgorithmRejected(t *testing.T) {
	err := channel.EncryptionConfig{Algorithm: "rot13"}.Validate()
	assert.ErrorIs(t, err, channel.ErrUnknownAlgorithm)
}
