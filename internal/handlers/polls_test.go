package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/models"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/polls"
)

func TestCreatePollValidation(t *testing.T) {
	db, router, _ := setupHandlerTest(t)
	user := createTestUser(t, db)

	// Too few options
	w := doJSON(router, http.MethodPost, "/api/v1/polls", map[string]interface{}{
		"question": "Best chai spot?",
		"city":     "Indore",
		"options":  []string{"only one"},
	}, user)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Past expiry
	w = doJSON(router, http.MethodPost, "/api/v1/polls", map[string]interface{}{
		"question":   "Best chai spot?",
		"city":       "Indore",
		"options":    []string{"a", "b"},
		"expires_at": time.Now().Add(-time.Hour).Format(time.RFC3339),
	}, user)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(router, http.MethodPost, "/api/v1/polls", map[string]interface{}{
		"question": "Best chai spot?",
		"city":     "Indore",
		"options":  []string{"Sarafa", "56 Dukan", "Rajwada"},
	}, user)
	require.Equal(t, http.StatusCreated, w.Code)

	var poll models.Poll
	require.NoError(t, db.Preload("Options").First(&poll, "user_id = ?", user.ID).Error)
	assert.Len(t, poll.Options, 3)
	assert.Equal(t, 2, poll.Options[2].Position)
}

func TestVoteFlow(t *testing.T) {
	db, router, _ := setupHandlerTest(t)
	author := createTestUser(t, db)
	voter := createTestUser(t, db)
	poll := createTestPoll(t, db, author, nil, "Option A", "Option B")

	w := doJSON(router, http.MethodPost, "/api/v1/polls/"+poll.ID+"/vote",
		map[string]string{"option_id": poll.Options[0].ID}, voter)
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "voted", body["status"])

	// Anonymous voter id is the derived display number, deterministic
	// for the (user, poll) pair and inside its bounded range
	token, err := polls.DeriveVotingToken(voter.ID, poll.ID, []byte(testVoteSecret))
	require.NoError(t, err)
	expectedAnonID, err := polls.DeriveAnonymousVoterID(token)
	require.NoError(t, err)
	assert.Equal(t, float64(expectedAnonID), body["anon_voter_id"])

	// The ballot row carries the hash, never the voter's user id
	var vote models.PollVote
	require.NoError(t, db.First(&vote, "poll_id = ?", poll.ID).Error)
	assert.Equal(t, token, vote.VoterHash)
	assert.NotContains(t, vote.VoterHash, voter.ID)

	// Counters updated transactionally
	var fresh models.Poll
	require.NoError(t, db.Preload("Options", "id = ?", poll.Options[0].ID).First(&fresh, "id = ?", poll.ID).Error)
	assert.Equal(t, 1, fresh.TotalVotes)
	assert.Equal(t, 1, fresh.Options[0].VoteCount)
}

func TestVoteDuplicateConflict(t *testing.T) {
	db, router, _ := setupHandlerTest(t)
	author := createTestUser(t, db)
	voter := createTestUser(t, db)
	poll := createTestPoll(t, db, author, nil, "Option A", "Option B")

	w := doJSON(router, http.MethodPost, "/api/v1/polls/"+poll.ID+"/vote",
		map[string]string{"option_id": poll.Options[0].ID}, voter)
	require.Equal(t, http.StatusCreated, w.Code)

	// Second vote, even for a different option, hits the unique index
	w = doJSON(router, http.MethodPost, "/api/v1/polls/"+poll.ID+"/vote",
		map[string]string{"option_id": poll.Options[1].ID}, voter)
	assert.Equal(t, http.StatusConflict, w.Code)

	// The failed transaction left no counter drift
	var fresh models.Poll
	require.NoError(t, db.First(&fresh, "id = ?", poll.ID).Error)
	assert.Equal(t, 1, fresh.TotalVotes)
}

func TestVoteOnClosedPoll(t *testing.T) {
	db, router, _ := setupHandlerTest(t)
	author := createTestUser(t, db)
	voter := createTestUser(t, db)
	past := time.Now().Add(-time.Minute)
	poll := createTestPoll(t, db, author, &past, "Option A", "Option B")

	w := doJSON(router, http.MethodPost, "/api/v1/polls/"+poll.ID+"/vote",
		map[string]string{"option_id": poll.Options[0].ID}, voter)
	assert.Equal(t, http.StatusGone, w.Code)
}

func TestMyVoteAndRetract(t *testing.T) {
	db, router, _ := setupHandlerTest(t)
	author := createTestUser(t, db)
	voter := createTestUser(t, db)
	poll := createTestPoll(t, db, author, nil, "Option A", "Option B")

	w := doJSON(router, http.MethodGet, "/api/v1/polls/"+poll.ID+"/my-vote", nil, voter)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["voted"])

	w = doJSON(router, http.MethodPost, "/api/v1/polls/"+poll.ID+"/vote",
		map[string]string{"option_id": poll.Options[1].ID}, voter)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/polls/"+poll.ID+"/my-vote", nil, voter)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["voted"])
	assert.Equal(t, poll.Options[1].ID, body["option_id"])

	w = doJSON(router, http.MethodDelete, "/api/v1/polls/"+poll.ID+"/vote", nil, voter)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/polls/"+poll.ID+"/my-vote", nil, voter)
	assert.Equal(t, false, decodeBody(t, w)["voted"])

	var fresh models.Poll
	require.NoError(t, db.First(&fresh, "id = ?", poll.ID).Error)
	assert.Equal(t, 0, fresh.TotalVotes)

	// Retracting again finds nothing
	w = doJSON(router, http.MethodDelete, "/api/v1/polls/"+poll.ID+"/vote", nil, voter)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPollResultsPercentages(t *testing.T) {
	db, router, _ := setupHandlerTest(t)
	author := createTestUser(t, db)
	poll := createTestPoll(t, db, author, nil, "A", "B", "C")

	// 3 / 5 / 2 votes → 30 / 50 / 20
	counts := []int{3, 5, 2}
	total := 0
	for i, n := range counts {
		require.NoError(t, db.Model(&models.PollOption{}).
			Where("id = ?", poll.Options[i].ID).
			Update("vote_count", n).Error)
		total += n
	}
	require.NoError(t, db.Model(&models.Poll{}).
		Where("id = ?", poll.ID).
		Update("total_votes", total).Error)

	w := doJSON(router, http.MethodGet, "/api/v1/polls/"+poll.ID+"/results", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, float64(10), body["total_votes"])
	assert.Equal(t, true, body["is_active"])

	options := body["options"].([]interface{})
	require.Len(t, options, 3)
	expected := []float64{30, 50, 20}
	for i, raw := range options {
		opt := raw.(map[string]interface{})
		assert.Equal(t, expected[i], opt["percentage"], "option %d", i)
	}
}

func TestPollResultsNoVotes(t *testing.T) {
	db, router, _ := setupHandlerTest(t)
	author := createTestUser(t, db)
	poll := createTestPoll(t, db, author, nil, "A", "B")

	w := doJSON(router, http.MethodGet, "/api/v1/polls/"+poll.ID+"/results", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	for _, raw := range decodeBody(t, w)["options"].([]interface{}) {
		assert.Equal(t, float64(0), raw.(map[string]interface{})["percentage"])
	}
}

func TestVoteRequiresAuth(t *testing.T) {
	db, router, _ := setupHandlerTest(t)
	author := createTestUser(t, db)
	poll := createTestPoll(t, db, author, nil, "A", "B")

	w := doJSON(router, http.MethodPost, "/api/v1/polls/"+poll.ID+"/vote",
		map[string]string{"option_id": poll.Options[0].ID}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
