package polls

import (
	"math"
	"time"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/models"
)

// OptionResult is one option's share of the vote for display
type OptionResult struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	VoteCount  int    `json:"vote_count"`
	Percentage int    `json:"percentage"`
}

// IsPollActive reports whether a poll still accepts votes.
// A nil expiry means the poll never closes. The boundary is exclusive:
// a poll expiring at exactly the current instant is already closed.
func IsPollActive(expiresAt *time.Time) bool {
	if expiresAt == nil {
		return true
	}
	return time.Now().Before(*expiresAt)
}

// CalculateResults computes each option's percentage of the total vote.
// Percentages are rounded half-up independently per option and are not
// renormalized, so 1/1/1 reports as 33/33/33 rather than forcing 100.
// A poll with no votes reports zero across the board.
func CalculateResults(options []models.PollOption) []OptionResult {
	total := 0
	for _, opt := range options {
		total += opt.VoteCount
	}

	results := make([]OptionResult, 0, len(options))
	for _, opt := range options {
		pct := 0
		if total > 0 {
			pct = int(math.Round(float64(opt.VoteCount) * 100 / float64(total)))
		}
		results = append(results, OptionResult{
			ID:         opt.ID,
			Text:       opt.Text,
			VoteCount:  opt.VoteCount,
			Percentage: pct,
		})
	}
	return results
}
