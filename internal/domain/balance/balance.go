// Package balance splits a pool of players into two teams that are close in
// total skill and, secondarily, in total physical rating.
package balance

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/ozzus/fulbito/internal/domain/models"
	"github.com/samber/lo"
)

// jitterSpread is the width of the random perturbation applied to each sort
// key, so keys move by at most ±jitterSpread/2.
const jitterSpread = 0.5

// RandomSource yields values in [0, 1). *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	Float64() float64
}

// GlobalSource draws from the process-wide math/rand/v2 generator.
type GlobalSource struct{}

func (GlobalSource) Float64() float64 { return rand.Float64() }

type Result struct {
	TeamA models.TeamAssignment `json:"teamA"`
	TeamB models.TeamAssignment `json:"teamB"`
}

type Balancer struct {
	rnd RandomSource
}

// NewBalancer uses the process-wide generator when rnd is nil.
func NewBalancer(rnd RandomSource) *Balancer {
	if rnd == nil {
		rnd = GlobalSource{}
	}
	return &Balancer{rnd: rnd}
}

type candidate struct {
	player   models.Player
	key      float64
	physical float64
}

// BalanceTeams sorts players by skill with a small random jitter, so repeated
// calls give different but still skill-ordered splits, and fills the team with
// the lower running physical total. A full team receives no more players.
func (b *Balancer) BalanceTeams(players []models.Player, teamSize int) Result {
	candidates := make([]candidate, 0, len(players))
	for _, p := range players {
		jitter := (b.rnd.Float64() - 0.5) * jitterSpread
		candidates = append(candidates, candidate{
			player:   p,
			key:      p.Skill.Normalized() + jitter,
			physical: p.Physical().Normalized(),
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].key > candidates[j].key
	})

	teamA, teamB := fill(nil, nil, candidates, teamSize)
	return finish(teamA, teamB)
}

// BalanceRemaining distributes unassigned players around the manual picks in
// preA and preB. The fill order is deterministic. The compensation pass runs
// over the complete rosters, so manual picks may be swapped too.
func BalanceRemaining(unassigned, preA, preB []models.Player, teamSize int) Result {
	candidates := make([]candidate, 0, len(unassigned))
	for _, p := range unassigned {
		candidates = append(candidates, candidate{
			player:   p,
			key:      p.Skill.Normalized(),
			physical: p.Physical().Normalized(),
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].key > candidates[j].key
	})

	teamA := append(make([]models.Player, 0, teamSize), preA...)
	teamB := append(make([]models.Player, 0, teamSize), preB...)
	teamA, teamB = fill(teamA, teamB, candidates, teamSize)
	return finish(teamA, teamB)
}

// Totals sums the normalized ratings of a roster without rebalancing it.
func Totals(players []models.Player) models.TeamAssignment {
	return models.TeamAssignment{
		Players:       players,
		TotalSkill:    totalSkill(players),
		TotalPhysical: totalPhysical(players),
	}
}

// WinProbability splits 100 percentage points in proportion to total skill.
func WinProbability(a, b models.TeamAssignment) (int, int) {
	combined := a.TotalSkill + b.TotalSkill
	if combined <= 0 {
		return 50, 50
	}
	probA := int(math.Round(a.TotalSkill / combined * 100))
	return probA, 100 - probA
}

func fill(teamA, teamB []models.Player, candidates []candidate, teamSize int) ([]models.Player, []models.Player) {
	physicalA := totalPhysical(teamA)
	physicalB := totalPhysical(teamB)

	for _, c := range candidates {
		switch {
		case len(teamA) >= teamSize:
			teamB = append(teamB, c.player)
			physicalB += c.physical
		case len(teamB) >= teamSize:
			teamA = append(teamA, c.player)
			physicalA += c.physical
		case physicalA <= physicalB:
			teamA = append(teamA, c.player)
			physicalA += c.physical
		default:
			teamB = append(teamB, c.player)
			physicalB += c.physical
		}
	}

	return teamA, teamB
}

func finish(teamA, teamB []models.Player) Result {
	compensate(teamA, teamB)
	if teamA == nil {
		teamA = []models.Player{}
	}
	if teamB == nil {
		teamB = []models.Player{}
	}
	return Result{TeamA: Totals(teamA), TeamB: Totals(teamB)}
}

func totalSkill(players []models.Player) float64 {
	return lo.SumBy(players, func(p models.Player) float64 { return p.Skill.Normalized() })
}

func totalPhysical(players []models.Player) float64 {
	return lo.SumBy(players, func(p models.Player) float64 { return p.Physical().Normalized() })
}
