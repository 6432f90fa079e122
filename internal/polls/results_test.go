package polls

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/models"
)

func TestIsPollActive(t *testing.T) {
	assert.True(t, IsPollActive(nil), "no expiry means always active")

	future := time.Now().Add(time.Hour)
	assert.True(t, IsPollActive(&future))

	past := time.Now().Add(-time.Hour)
	assert.False(t, IsPollActive(&past))

	// A poll expiring at (or before) the current instant is closed -
	// the boundary is exclusive.
	now := time.Now()
	assert.False(t, IsPollActive(&now))
}

func TestCalculateResultsEvenSplit(t *testing.T) {
	options := []models.PollOption{
		{ID: "a", Text: "Morning", VoteCount: 30},
		{ID: "b", Text: "Afternoon", VoteCount: 50},
		{ID: "c", Text: "Evening", VoteCount: 20},
	}

	results := CalculateResults(options)
	assert.Len(t, results, 3)
	assert.Equal(t, 30, results[0].Percentage)
	assert.Equal(t, 50, results[1].Percentage)
	assert.Equal(t, 20, results[2].Percentage)
}

func TestCalculateResultsNoVotes(t *testing.T) {
	options := []models.PollOption{
		{ID: "a", Text: "Yes"},
		{ID: "b", Text: "No"},
	}

	results := CalculateResults(options)
	assert.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, 0, r.Percentage)
		assert.Equal(t, 0, r.VoteCount)
	}
}

func TestCalculateResultsRoundsHalfUpIndependently(t *testing.T) {
	options := []models.PollOption{
		{ID: "a", Text: "A", VoteCount: 1},
		{ID: "b", Text: "B", VoteCount: 2},
	}

	results := CalculateResults(options)
	assert.Equal(t, 33, results[0].Percentage)
	assert.Equal(t, 67, results[1].Percentage)
}

func TestCalculateResultsDriftIsAllowed(t *testing.T) {
	// Three-way tie rounds to 33 each; the sum drifting to 99 is the
	// documented behavior, not a bug to renormalize away.
	options := []models.PollOption{
		{ID: "a", Text: "A", VoteCount: 1},
		{ID: "b", Text: "B", VoteCount: 1},
		{ID: "c", Text: "C", VoteCount: 1},
	}

	results := CalculateResults(options)
	sum := 0
	for _, r := range results {
		assert.Equal(t, 33, r.Percentage)
		sum += r.Percentage
	}
	assert.Equal(t, 99, sum)
}

func TestCalculateResultsEmptyOptions(t *testing.T) {
	results := CalculateResults(nil)
	assert.Empty(t, results)
}
