package stats

import (
	"sort"

	"github.com/ozzus/fulbito/internal/domain/models"
)

// CurrentStreak walks the player's matches from the most recent one. A draw
// resets the streak to zero even when it is the latest match. Matches that
// share a date keep their input order.
func CurrentStreak(matches []models.Match, id models.PlayerID) models.Streak {
	type played struct {
		match models.Match
		team  models.Team
	}

	relevant := make([]played, 0, len(matches))
	for _, m := range matches {
		if team, ok := m.Side(id); ok {
			relevant = append(relevant, played{match: m, team: team})
		}
	}
	sort.SliceStable(relevant, func(i, j int) bool {
		return relevant[i].match.Date > relevant[j].match.Date
	})

	var streak models.Streak
	for _, r := range relevant {
		var kind models.StreakKind
		switch Outcome(r.match, r.team) {
		case models.OutcomeDraw:
			return models.Streak{}
		case models.OutcomeWin:
			kind = models.StreakWin
		default:
			kind = models.StreakLoss
		}

		if streak.Kind == models.StreakNone {
			streak = models.Streak{Kind: kind, Count: 1}
			continue
		}
		if kind != streak.Kind {
			break
		}
		streak.Count++
	}

	return streak
}

// AllCurrentStreaks computes CurrentStreak for every player seen in matches.
func AllCurrentStreaks(matches []models.Match) map[models.PlayerID]models.Streak {
	out := make(map[models.PlayerID]models.Streak)
	for id := range PlayedBefore(matches) {
		out[id] = CurrentStreak(matches, id)
	}
	return out
}
