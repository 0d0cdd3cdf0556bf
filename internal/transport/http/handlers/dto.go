package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ozzus/fulbito/internal/domain/models"
	"github.com/samber/lo"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON reads a single JSON document into dst and validates it. Failures
// wrap invalid so they map to a client error.
func decodeJSON(r *http.Request, dst interface{}, invalid error) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", invalid)
		}
		return fmt.Errorf("%w: malformed json: %v", invalid, err)
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := lo.Map(verrs, func(fe validator.FieldError, _ int) string {
				return strings.TrimPrefix(fe.Namespace(), reflect.TypeOf(dst).Elem().Name()+".")
			})
			return fmt.Errorf("%w: invalid fields %s", invalid, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", invalid, err)
	}
	return nil
}

type playerRequest struct {
	Name     string             `json:"name" validate:"required,max=100"`
	Position string             `json:"position" validate:"max=50"`
	Skill    models.Rating      `json:"skill"`
	Skills   *models.Attributes `json:"skills"`
	PhotoURL string             `json:"photoUrl"`
}

func (p playerRequest) toModel() models.Player {
	return models.Player{
		Name:       p.Name,
		Position:   p.Position,
		Skill:      p.Skill,
		Attributes: p.Skills,
		PhotoURL:   p.PhotoURL,
	}
}

type playerUpdateRequest struct {
	Name     *string            `json:"name" validate:"omitempty,max=100"`
	Position *string            `json:"position" validate:"omitempty,max=50"`
	Skill    *models.Rating     `json:"skill"`
	Skills   *models.Attributes `json:"skills"`
	PhotoURL *string            `json:"photoUrl"`
}

func (p playerUpdateRequest) toModel() models.PlayerUpdate {
	return models.PlayerUpdate{
		Name:       p.Name,
		Position:   p.Position,
		Skill:      p.Skill,
		Attributes: p.Skills,
		PhotoURL:   p.PhotoURL,
	}
}

type participantRequest struct {
	ID          string  `json:"id" validate:"required"`
	Goals       int     `json:"goals" validate:"gte=0"`
	Performance float64 `json:"performance" validate:"omitempty,gte=1,lte=10"`
}

func toParticipations(in []participantRequest) []models.Participation {
	return lo.Map(in, func(p participantRequest, _ int) models.Participation {
		return models.Participation{
			PlayerID:    models.PlayerID(p.ID),
			Goals:       p.Goals,
			Performance: p.Performance,
		}
	})
}

type matchRequest struct {
	Date                string               `json:"date" validate:"required"`
	Type                string               `json:"type" validate:"required"`
	Name                string               `json:"name" validate:"max=100"`
	TeamAScore          int                  `json:"teamAScore" validate:"gte=0"`
	TeamBScore          int                  `json:"teamBScore" validate:"gte=0"`
	TeamA               []participantRequest `json:"teamA" validate:"dive"`
	TeamB               []participantRequest `json:"teamB" validate:"dive"`
	ShirtsResponsibleID string               `json:"shirtsResponsibleId"`
}

func (m matchRequest) toModel() models.Match {
	return models.Match{
		Date:                m.Date,
		Format:              models.Format(m.Type),
		Name:                m.Name,
		TeamAScore:          m.TeamAScore,
		TeamBScore:          m.TeamBScore,
		TeamA:               toParticipations(m.TeamA),
		TeamB:               toParticipations(m.TeamB),
		ShirtsResponsibleID: models.PlayerID(m.ShirtsResponsibleID),
	}
}

// optionalID tells an absent field from an explicit null.
type optionalID struct {
	Set   bool
	Value string
}

func (o *optionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = ""
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

type matchUpdateRequest struct {
	Date                *string               `json:"date"`
	Type                *string               `json:"type"`
	Name                *string               `json:"name" validate:"omitempty,max=100"`
	TeamAScore          *int                  `json:"teamAScore" validate:"omitempty,gte=0"`
	TeamBScore          *int                  `json:"teamBScore" validate:"omitempty,gte=0"`
	TeamA               *[]participantRequest `json:"teamA" validate:"omitempty,dive"`
	TeamB               *[]participantRequest `json:"teamB" validate:"omitempty,dive"`
	ShirtsResponsibleID optionalID            `json:"shirtsResponsibleId"`
}

// toModel replaces both rosters when either is sent; a missing side becomes
// empty.
func (m matchUpdateRequest) toModel() models.MatchUpdate {
	u := models.MatchUpdate{
		Date:       m.Date,
		Name:       m.Name,
		TeamAScore: m.TeamAScore,
		TeamBScore: m.TeamBScore,
	}
	if m.Type != nil {
		f := models.Format(*m.Type)
		u.Format = &f
	}
	if m.TeamA != nil || m.TeamB != nil {
		u.ReplaceTeams = true
		if m.TeamA != nil {
			u.TeamA = toParticipations(*m.TeamA)
		}
		if m.TeamB != nil {
			u.TeamB = toParticipations(*m.TeamB)
		}
	}
	if m.ShirtsResponsibleID.Set {
		id := models.PlayerID(m.ShirtsResponsibleID.Value)
		u.ShirtsResponsibleID = &id
	}
	return u
}

type teamsRequest struct {
	Type      string   `json:"type" validate:"required"`
	PlayerIDs []string `json:"playerIds" validate:"required,min=1,dive,required"`
}

type completeTeamsRequest struct {
	Type      string   `json:"type" validate:"required"`
	PlayerIDs []string `json:"playerIds" validate:"required,min=1,dive,required"`
	TeamA     []string `json:"teamA" validate:"dive,required"`
	TeamB     []string `json:"teamB" validate:"dive,required"`
}

type shirtDutyRequest struct {
	PlayerIDs []string `json:"playerIds" validate:"required,min=1,dive,required"`
}

type credentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func toPlayerIDs(in []string) []models.PlayerID {
	return lo.Map(in, func(id string, _ int) models.PlayerID {
		return models.PlayerID(strings.TrimSpace(id))
	})
}
