package game

import (
	"sort"

	"github.com/mystic-06/quik-type/internal/models"
)

// ComputeRankings orders submitted results by wpm descending and assigns
// 1-based ranks. The sort is stable: ties keep their roster order. Entries
// without results (should not happen by the time this runs) count as zero.
func ComputeRankings(participants []models.ParticipantSnapshot) []models.RankingEntry {
	rankings := make([]models.RankingEntry, 0, len(participants))

	for _, p := range participants {
		entry := models.RankingEntry{
			ID:       p.ID,
			Username: p.Username,
		}
		if p.FinalResults != nil {
			entry.Wpm = p.FinalResults.Wpm
			entry.RawWpm = p.FinalResults.RawWpm
			entry.Accuracy = p.FinalResults.Accuracy
			entry.CharactersTyped = p.FinalResults.CharactersTyped
			entry.CompletionPercentage = p.FinalResults.CompletionPercentage
		}
		rankings = append(rankings, entry)
	}

	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].Wpm > rankings[j].Wpm
	})

	for i := range rankings {
		rankings[i].Rank = i + 1
	}
	return rankings
}
