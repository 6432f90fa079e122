package polls

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-vote-secret-not-for-production")

func TestDeriveVotingTokenDeterministic(t *testing.T) {
	a, err := DeriveVotingToken("user-1", "poll-1", testSecret)
	require.NoError(t, err)
	b, err := DeriveVotingToken("user-1", "poll-1", testSecret)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.Regexp(t, "^[0-9a-f]{64}$", a)
}

func TestDeriveVotingTokenUnlinkableAcrossPolls(t *testing.T) {
	a, err := DeriveVotingToken("user-1", "poll-1", testSecret)
	require.NoError(t, err)
	b, err := DeriveVotingToken("user-1", "poll-2", testSecret)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	// Tokens for the same user must diverge immediately, not just in
	// the tail - a shared prefix would leak a correlation.
	assert.NotEqual(t, a[:10], b[:10])
}

func TestDeriveVotingTokenDiffersPerUser(t *testing.T) {
	a, err := DeriveVotingToken("user-1", "poll-1", testSecret)
	require.NoError(t, err)
	b, err := DeriveVotingToken("user-2", "poll-1", testSecret)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestDeriveVotingTokenDiffersPerSecret(t *testing.T) {
	a, err := DeriveVotingToken("user-1", "poll-1", testSecret)
	require.NoError(t, err)
	b, err := DeriveVotingToken("user-1", "poll-1", []byte("another-secret"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestDeriveVotingTokenRejectsEmptyInputs(t *testing.T) {
	_, err := DeriveVotingToken("", "poll-1", testSecret)
	assert.Error(t, err)

	_, err = DeriveVotingToken("user-1", "", testSecret)
	assert.Error(t, err)

	_, err = DeriveVotingToken("user-1", "poll-1", nil)
	assert.Error(t, err)
}

func TestVerifyVotingToken(t *testing.T) {
	token, err := DeriveVotingToken("user-1", "poll-1", testSecret)
	require.NoError(t, err)

	assert.True(t, VerifyVotingToken(token, "user-1", "poll-1", testSecret))
	assert.False(t, VerifyVotingToken(token, "user-2", "poll-1", testSecret))
	assert.False(t, VerifyVotingToken(token, "user-1", "poll-2", testSecret))
	assert.False(t, VerifyVotingToken("deadbeef", "user-1", "poll-1", testSecret))
	assert.False(t, VerifyVotingToken("", "user-1", "poll-1", testSecret))
	assert.False(t, VerifyVotingToken(token, "", "poll-1", testSecret))
}

func TestDeriveAnonymousVoterID(t *testing.T) {
	token, err := DeriveVotingToken("user-1", "poll-1", testSecret)
	require.NoError(t, err)

	id, err := DeriveAnonymousVoterID(token)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, id, 0)
	assert.Less(t, id, AnonVoterIDSpace)

	// Same token, same number
	again, err := DeriveAnonymousVoterID(token)
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestDeriveAnonymousVoterIDRejectsMalformedTokens(t *testing.T) {
	_, err := DeriveAnonymousVoterID("")
	assert.Error(t, err)

	_, err = DeriveAnonymousVoterID("too-short")
	assert.Error(t, err)

	// Right length, not hex
	notHex := "zzzzzzzz" + "0000000000000000000000000000000000000000000000000000000000000000"[:56]
	_, err = DeriveAnonymousVoterID(notHex)
	assert.Error(t, err)
}
