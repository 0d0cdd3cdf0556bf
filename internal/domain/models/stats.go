package models

import (
	"encoding/json"
	"fmt"
)

type PlayerStatRow struct {
	PlayerID         PlayerID `json:"playerId"`
	Matches          int      `json:"matches"`
	Goals            int      `json:"goals"`
	TotalPerformance float64  `json:"totalPerformance"`
	Wins             int      `json:"wins"`
	Losses           int      `json:"losses"`
	Draws            int      `json:"draws"`
}

func (r PlayerStatRow) AveragePerformance() float64 {
	if r.Matches == 0 {
		return 0
	}
	return r.TotalPerformance / float64(r.Matches)
}

func (r PlayerStatRow) GoalsPerMatch() float64 {
	if r.Matches == 0 {
		return 0
	}
	return float64(r.Goals) / float64(r.Matches)
}

// WinRate is a percentage in [0, 100].
func (r PlayerStatRow) WinRate() float64 {
	if r.Matches == 0 {
		return 0
	}
	return float64(r.Wins) / float64(r.Matches) * 100
}

type Outcome int

const (
	OutcomeDraw Outcome = iota
	OutcomeWin
	OutcomeLoss
)

type StreakKind string

const (
	StreakNone StreakKind = ""
	StreakWin  StreakKind = "win"
	StreakLoss StreakKind = "loss"
)

type Streak struct {
	Kind  StreakKind
	Count int
}

// String renders W3, L2 or a dash when there is no streak.
func (s Streak) String() string {
	if s.Count <= 0 {
		return "—"
	}
	switch s.Kind {
	case StreakWin:
		return fmt.Sprintf("W%d", s.Count)
	case StreakLoss:
		return fmt.Sprintf("L%d", s.Count)
	default:
		return "—"
	}
}

type streakJSON struct {
	Kind  *StreakKind `json:"kind"`
	Count int         `json:"count"`
}

func (s Streak) MarshalJSON() ([]byte, error) {
	out := streakJSON{Count: s.Count}
	if s.Kind != StreakNone {
		kind := s.Kind
		out.Kind = &kind
	}
	return json.Marshal(out)
}
