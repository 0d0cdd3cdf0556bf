package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	derr "github.com/ozzus/fulbito/internal/domain/errors"
	"github.com/ozzus/fulbito/internal/domain/models"
)

const playerColumns = `
	id,
	name,
	position,
	skill,
	skills,
	photo_url,
	shirt_duties_count,
	created_at,
	updated_at
`

func scanPlayer(row pgx.Row) (models.Player, error) {
	var (
		p      models.Player
		id     string
		skill  *float64
		skills []byte
	)

	if err := row.Scan(
		&id,
		&p.Name,
		&p.Position,
		&skill,
		&skills,
		&p.PhotoURL,
		&p.ShirtDutiesCount,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return models.Player{}, err
	}

	p.ID = models.PlayerID(id)
	p.Skill = models.RatingFromNullable(skill)
	if len(skills) > 0 {
		var attrs models.Attributes
		if err := json.Unmarshal(skills, &attrs); err != nil {
			return models.Player{}, fmt.Errorf("decode skills of player %s: %w", id, err)
		}
		p.Attributes = &attrs
	}

	return p, nil
}

// encodeAttributes returns the jsonb text, or nil for NULL. Text rather than
// bytes keeps the simple protocol from sending a bytea literal.
func encodeAttributes(a *models.Attributes) (*string, error) {
	if a == nil {
		return nil, nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode skills: %w", err)
	}
	s := string(data)
	return &s, nil
}

func (r *Repository) ListPlayers(ctx context.Context) ([]models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY skill DESC NULLS LAST, name ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	players := make([]models.Player, 0, 32)
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate players: %w", err)
	}

	return players, nil
}

func (r *Repository) GetPlayer(ctx context.Context, id models.PlayerID) (models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`

	p, err := scanPlayer(r.db.QueryRow(ctx, query, string(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Player{}, derr.ErrPlayerNotFound
		}
		return models.Player{}, fmt.Errorf("query player by id: %w", err)
	}
	return p, nil
}

func (r *Repository) CreatePlayer(ctx context.Context, player models.Player) (models.Player, error) {
	skills, err := encodeAttributes(player.Attributes)
	if err != nil {
		return models.Player{}, err
	}

	query := `
		INSERT INTO players (id, name, position, skill, skills, photo_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + playerColumns

	created, err := scanPlayer(r.db.QueryRow(ctx, query,
		newID(),
		player.Name,
		player.Position,
		player.Skill.Nullable(),
		skills,
		player.PhotoURL,
	))
	if err != nil {
		return models.Player{}, fmt.Errorf("insert player: %w", err)
	}
	return created, nil
}

func (r *Repository) UpdatePlayer(ctx context.Context, id models.PlayerID, update models.PlayerUpdate) (models.Player, error) {
	sets := make([]string, 0, 6)
	args := make([]any, 0, 7)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Name != nil {
		set("name", *update.Name)
	}
	if update.Position != nil {
		set("position", *update.Position)
	}
	if update.Skill != nil {
		set("skill", update.Skill.Nullable())
	}
	if update.Attributes != nil {
		skills, err := encodeAttributes(update.Attributes)
		if err != nil {
			return models.Player{}, err
		}
		set("skills", skills)
	}
	if update.PhotoURL != nil {
		set("photo_url", *update.PhotoURL)
	}
	if len(sets) == 0 {
		return r.GetPlayer(ctx, id)
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, string(id))
	query := fmt.Sprintf(`UPDATE players SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), playerColumns)

	p, err := scanPlayer(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Player{}, derr.ErrPlayerNotFound
		}
		return models.Player{}, fmt.Errorf("update player: %w", err)
	}
	return p, nil
}

func (r *Repository) DeletePlayer(ctx context.Context, id models.PlayerID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM players WHERE id = $1`, string(id))
	if err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return derr.ErrPlayerNotFound
	}
	return nil
}
