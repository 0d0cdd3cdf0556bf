package balance

import "github.com/ozzus/fulbito/internal/domain/models"

// compensate swaps players in place until the team behind on skill is not
// also behind on physical. It returns the number of loop iterations used,
// which never exceeds len(teamA)*len(teamB)+1.
func compensate(teamA, teamB []models.Player) int {
	if len(teamA) == 0 || len(teamB) == 0 {
		return 0
	}

	maxIterations := len(teamA)*len(teamB) + 1
	iter := 0
	for ; iter < maxIterations; iter++ {
		skillA, skillB := totalSkill(teamA), totalSkill(teamB)
		physicalA, physicalB := totalPhysical(teamA), totalPhysical(teamB)

		aBehind := skillA < skillB && physicalA < physicalB
		bBehind := skillB < skillA && physicalB < physicalA
		if !aBehind && !bBehind {
			break
		}

		swapped := false
		if aBehind {
			swapped = swapWeakestForStrongest(teamA, teamB)
		}
		if !swapped && bBehind {
			swapped = swapWeakestForStrongest(teamB, teamA)
		}
		if !swapped {
			break
		}
	}

	return iter
}

// swapWeakestForStrongest trades the lowest-physical player of behind for the
// highest-physical player of ahead, only when that raises behind's physical.
func swapWeakestForStrongest(behind, ahead []models.Player) bool {
	i := lowestPhysical(behind)
	j := highestPhysical(ahead)
	if ahead[j].Physical().Normalized() <= behind[i].Physical().Normalized() {
		return false
	}
	behind[i], ahead[j] = ahead[j], behind[i]
	return true
}

func lowestPhysical(team []models.Player) int {
	best := 0
	for i, p := range team {
		if p.Physical().Normalized() < team[best].Physical().Normalized() {
			best = i
		}
	}
	return best
}

func highestPhysical(team []models.Player) int {
	best := 0
	for i, p := range team {
		if p.Physical().Normalized() > team[best].Physical().Normalized() {
			best = i
		}
	}
	return best
}
