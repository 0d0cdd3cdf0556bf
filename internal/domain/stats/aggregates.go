// Package stats derives per-player aggregates, streaks and duty rotation
// pools from match history. Nothing here is cached; every call recomputes.
package stats

import (
	"sort"

	"github.com/ozzus/fulbito/internal/domain/models"
)

// Outcome is the result of m for a member of team.
func Outcome(m models.Match, team models.Team) models.Outcome {
	own, other := m.TeamAScore, m.TeamBScore
	if team == models.TeamB {
		own, other = other, own
	}
	switch {
	case own == other:
		return models.OutcomeDraw
	case own > other:
		return models.OutcomeWin
	default:
		return models.OutcomeLoss
	}
}

// Aggregate returns raw sums per player. Rates are left to the caller.
func Aggregate(matches []models.Match) map[models.PlayerID]models.PlayerStatRow {
	rows := make(map[models.PlayerID]models.PlayerStatRow)

	accumulate := func(m models.Match, team models.Team, participants []models.Participation) {
		outcome := Outcome(m, team)
		for _, p := range participants {
			row := rows[p.PlayerID]
			row.PlayerID = p.PlayerID
			row.Matches++
			row.Goals += p.Goals
			row.TotalPerformance += p.Performance
			switch outcome {
			case models.OutcomeWin:
				row.Wins++
			case models.OutcomeLoss:
				row.Losses++
			default:
				row.Draws++
			}
			rows[p.PlayerID] = row
		}
	}

	for _, m := range matches {
		accumulate(m, models.TeamA, m.TeamA)
		accumulate(m, models.TeamB, m.TeamB)
	}

	return rows
}

// ByGoals orders rows by goals descending, then by player id.
func ByGoals(rows map[models.PlayerID]models.PlayerStatRow) []models.PlayerStatRow {
	out := make([]models.PlayerStatRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Goals != out[j].Goals {
			return out[i].Goals > out[j].Goals
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out
}
