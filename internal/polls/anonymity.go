// Package polls holds the poll-anonymity and result-calculation logic
// shared by the poll handlers and the vote flow.
package polls

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// AnonVoterIDSpace bounds DeriveAnonymousVoterID outputs to [0, AnonVoterIDSpace)
const AnonVoterIDSpace = 1_000_000

// DeriveVotingToken computes the anonymous voting identity for a
// (user, poll) pair: hex(HMAC-SHA256(secret, userID ":" pollID)).
//
// The token is deterministic for a fixed secret, so it deduplicates
// repeat votes, but without the secret it cannot be reversed to a user
// and tokens for the same user across different polls are unlinkable.
// The raw user ID never reaches the poll_votes table.
func DeriveVotingToken(userID, pollID string, secret []byte) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("voting token: user id is empty")
	}
	if pollID == "" {
		return "", fmt.Errorf("voting token: poll id is empty")
	}
	if len(secret) == 0 {
		return "", fmt.Errorf("voting token: secret is not configured")
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(userID))
	mac.Write([]byte(":"))
	mac.Write([]byte(pollID))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// VerifyVotingToken recomputes the token for (userID, pollID) and
// compares in constant time. Malformed inputs verify as false rather
// than erroring; a token that cannot be derived can never match.
func VerifyVotingToken(token, userID, pollID string, secret []byte) bool {
	expected, err := DeriveVotingToken(userID, pollID, secret)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(token), []byte(expected))
}

// DeriveAnonymousVoterID maps a voting token to a small display number
// in [0, AnonVoterIDSpace), e.g. "voter #4821". Deterministic: the same
// token always yields the same number.
func DeriveAnonymousVoterID(token string) (int, error) {
	if len(token) != sha256.Size*2 {
		return 0, fmt.Errorf("anonymous voter id: token must be %d hex characters, got %d", sha256.Size*2, len(token))
	}

	prefix, err := hex.DecodeString(token[:8])
	if err != nil {
		return 0, fmt.Errorf("anonymous voter id: malformed token: %w", err)
	}

	n := uint32(prefix[0])<<24 | uint32(prefix[1])<<16 | uint32(prefix[2])<<8 | uint32(prefix[3])
	return int(n % AnonVoterIDSpace), nil
}
