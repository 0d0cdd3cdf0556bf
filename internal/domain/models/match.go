package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type MatchID string

// DateLayout is the wire and sort format of a match date.
const DateLayout = "2006-01-02"

type Team string

const (
	TeamA Team = "A"
	TeamB Team = "B"
)

type Participation struct {
	PlayerID    PlayerID `json:"id"`
	Name        string   `json:"name,omitempty"`
	Goals       int      `json:"goals"`
	Performance float64  `json:"performance"`
}

type Match struct {
	ID                  MatchID         `json:"id"`
	Date                string          `json:"date"`
	Format              Format          `json:"type"`
	Name                string          `json:"name,omitempty"`
	TeamAScore          int             `json:"teamAScore"`
	TeamBScore          int             `json:"teamBScore"`
	TeamA               []Participation `json:"teamA"`
	TeamB               []Participation `json:"teamB"`
	ShirtsResponsibleID PlayerID        `json:"shirtsResponsibleId,omitempty"`
}

// Side reports which team the player was on.
func (m Match) Side(id PlayerID) (Team, bool) {
	for _, p := range m.TeamA {
		if p.PlayerID == id {
			return TeamA, true
		}
	}
	for _, p := range m.TeamB {
		if p.PlayerID == id {
			return TeamB, true
		}
	}
	return "", false
}

type MatchUpdate struct {
	Date                *string
	Format              *Format
	Name                *string
	TeamAScore          *int
	TeamBScore          *int
	TeamA               []Participation
	TeamB               []Participation
	ReplaceTeams        bool
	ShirtsResponsibleID *PlayerID
}

// Format is a match format such as "5v5".
type Format string

const (
	MinPlayersPerTeam = 5
	MaxPlayersPerTeam = 9
)

func ParseFormat(raw string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(raw)))
	if _, err := f.PlayersPerTeam(); err != nil {
		return "", err
	}
	return f, nil
}

func (f Format) PlayersPerTeam() (int, error) {
	left, right, ok := strings.Cut(string(f), "v")
	if !ok || left != right {
		return 0, fmt.Errorf("invalid match format %q", f)
	}
	n, err := strconv.Atoi(left)
	if err != nil || n < MinPlayersPerTeam || n > MaxPlayersPerTeam {
		return 0, fmt.Errorf("invalid match format %q", f)
	}
	return n, nil
}

// ParseDate accepts a plain date or an RFC 3339 timestamp and returns the
// normalized YYYY-MM-DD form.
func ParseDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t.Format(DateLayout), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return "", fmt.Errorf("invalid date %q", raw)
	}
	return t.UTC().Format(DateLayout), nil
}
