package models

type TeamAssignment struct {
	Players       []Player `json:"players"`
	TotalSkill    float64  `json:"totalSkill"`
	TotalPhysical float64  `json:"totalPhysical"`
}

// PlayerIDs returns the roster ids in order.
func (t TeamAssignment) PlayerIDs() []PlayerID {
	ids := make([]PlayerID, 0, len(t.Players))
	for _, p := range t.Players {
		ids = append(ids, p.ID)
	}
	return ids
}
