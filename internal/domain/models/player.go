package models

import "time"

type PlayerID string

type Attributes struct {
	Physical      Rating `json:"physical"`
	Technical     Rating `json:"technical"`
	Tactical      Rating `json:"tactical"`
	Psychological Rating `json:"psychological"`
}

// Average returns the mean of the four attributes when all of them are known.
func (a Attributes) Average() (Rating, bool) {
	values := []Rating{a.Physical, a.Technical, a.Tactical, a.Psychological}
	sum := 0.0
	for _, v := range values {
		n, ok := v.Value()
		if !ok {
			return Unknown(), false
		}
		sum += n
	}
	return Known(sum / float64(len(values))), true
}

type Player struct {
	ID               PlayerID    `json:"id"`
	Name             string      `json:"name"`
	Position         string      `json:"position,omitempty"`
	Skill            Rating      `json:"skill"`
	Attributes       *Attributes `json:"skills,omitempty"`
	PhotoURL         string      `json:"photoUrl,omitempty"`
	ShirtDutiesCount int         `json:"shirtDutiesCount"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// Physical is unknown when the player carries no attributes.
func (p Player) Physical() Rating {
	if p.Attributes == nil {
		return Unknown()
	}
	return p.Attributes.Physical
}

type PlayerUpdate struct {
	Name       *string
	Position   *string
	Skill      *Rating
	Attributes *Attributes
	PhotoURL   *string
}
