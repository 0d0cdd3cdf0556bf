package stats

import (
	"github.com/ozzus/fulbito/internal/domain/models"
	"github.com/samber/lo"
)

type PlayerSet map[models.PlayerID]struct{}

func (s PlayerSet) Has(id models.PlayerID) bool {
	_, ok := s[id]
	return ok
}

// PlayedBefore is the set of players appearing in any match.
func PlayedBefore(matches []models.Match) PlayerSet {
	set := make(PlayerSet)
	for _, m := range matches {
		for _, p := range m.TeamA {
			set[p.PlayerID] = struct{}{}
		}
		for _, p := range m.TeamB {
			set[p.PlayerID] = struct{}{}
		}
	}
	return set
}

// EligiblePlayerIDs keeps the candidates with match history. When none of
// them has played before, the full candidate list is returned.
func EligiblePlayerIDs(candidates []models.PlayerID, played PlayerSet) []models.PlayerID {
	eligible := lo.Filter(candidates, func(id models.PlayerID, _ int) bool {
		return played.Has(id)
	})
	if len(eligible) == 0 {
		return candidates
	}
	return eligible
}

// LeastAssignedPool returns the considered ids tied at the lowest duty count,
// and that count. Players missing from players count as zero.
func LeastAssignedPool(considered []models.PlayerID, players []models.Player) ([]models.PlayerID, int) {
	if len(considered) == 0 {
		return []models.PlayerID{}, 0
	}

	counts := lo.Associate(players, func(p models.Player) (models.PlayerID, int) {
		return p.ID, p.ShirtDutiesCount
	})

	minCount := counts[considered[0]]
	for _, id := range considered[1:] {
		if c := counts[id]; c < minCount {
			minCount = c
		}
	}

	pool := lo.Filter(considered, func(id models.PlayerID, _ int) bool {
		return counts[id] == minCount
	})
	return pool, minCount
}
