package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	derr "github.com/ozzus/fulbito/internal/domain/errors"
	"github.com/ozzus/fulbito/internal/domain/models"
)

const matchColumns = `
	id,
	match_date,
	match_type,
	COALESCE(name, ''),
	team_a_score,
	team_b_score,
	COALESCE(shirts_responsible_id, '')
`

func scanMatch(row pgx.Row) (models.Match, error) {
	var (
		m           models.Match
		id          string
		date        time.Time
		format      string
		responsible string
	)

	if err := row.Scan(
		&id,
		&date,
		&format,
		&m.Name,
		&m.TeamAScore,
		&m.TeamBScore,
		&responsible,
	); err != nil {
		return models.Match{}, err
	}

	m.ID = models.MatchID(id)
	m.Date = date.Format(models.DateLayout)
	m.Format = models.Format(format)
	m.ShirtsResponsibleID = models.PlayerID(responsible)
	m.TeamA = []models.Participation{}
	m.TeamB = []models.Participation{}
	return m, nil
}

func (r *Repository) ListMatches(ctx context.Context) ([]models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches ORDER BY match_date DESC, created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]models.Match, 0, 64)
	index := make(map[models.MatchID]int)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		index[m.ID] = len(matches)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}

	if err := r.loadParticipants(ctx, matches, index, ""); err != nil {
		return nil, err
	}

	return matches, nil
}

func (r *Repository) GetMatch(ctx context.Context, id models.MatchID) (models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	m, err := scanMatch(r.db.QueryRow(ctx, query, string(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Match{}, derr.ErrMatchNotFound
		}
		return models.Match{}, fmt.Errorf("query match by id: %w", err)
	}

	matches := []models.Match{m}
	if err := r.loadParticipants(ctx, matches, map[models.MatchID]int{m.ID: 0}, m.ID); err != nil {
		return models.Match{}, err
	}

	return matches[0], nil
}

// loadParticipants fills TeamA/TeamB of matches. An empty only loads every
// match's participants.
func (r *Repository) loadParticipants(ctx context.Context, matches []models.Match, index map[models.MatchID]int, only models.MatchID) error {
	if len(matches) == 0 {
		return nil
	}

	const query = `
		SELECT
			mp.match_id,
			mp.player_id,
			COALESCE(p.name, ''),
			mp.team,
			mp.goals,
			mp.performance
		FROM match_players mp
		LEFT JOIN players p ON p.id = mp.player_id
		WHERE ($1 = '' OR mp.match_id = $1)
		ORDER BY mp.match_id, mp.team, mp.slot
	`

	rows, err := r.db.Query(ctx, query, string(only))
	if err != nil {
		return fmt.Errorf("query match players: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			matchID  string
			playerID string
			team     string
			p        models.Participation
		)
		if err := rows.Scan(&matchID, &playerID, &p.Name, &team, &p.Goals, &p.Performance); err != nil {
			return fmt.Errorf("scan match player: %w", err)
		}
		p.PlayerID = models.PlayerID(playerID)

		i, ok := index[models.MatchID(matchID)]
		if !ok {
			continue
		}
		if models.Team(team) == models.TeamA {
			matches[i].TeamA = append(matches[i].TeamA, p)
		} else {
			matches[i].TeamB = append(matches[i].TeamB, p)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate match players: %w", err)
	}
	return nil
}

func (r *Repository) CreateMatch(ctx context.Context, match models.Match) (models.MatchID, error) {
	id := newID()

	err := r.inTx(ctx, func(tx pgx.Tx) error {
		const query = `
			INSERT INTO matches (id, match_date, match_type, name, team_a_score, team_b_score, shirts_responsible_id)
			VALUES ($1, $2::date, $3, NULLIF($4, ''), $5, $6, NULLIF($7, ''))
		`
		if _, err := tx.Exec(ctx, query,
			id,
			match.Date,
			string(match.Format),
			match.Name,
			match.TeamAScore,
			match.TeamBScore,
			string(match.ShirtsResponsibleID),
		); err != nil {
			return wrapMatchWriteErr("insert match", err)
		}

		if err := insertParticipants(ctx, tx, id, match.TeamA, match.TeamB); err != nil {
			return err
		}

		return adjustShirtDuty(ctx, tx, "", match.ShirtsResponsibleID)
	})
	if err != nil {
		return "", err
	}

	return models.MatchID(id), nil
}

func (r *Repository) UpdateMatch(ctx context.Context, id models.MatchID, update models.MatchUpdate) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		var current string
		err := tx.QueryRow(ctx,
			`SELECT COALESCE(shirts_responsible_id, '') FROM matches WHERE id = $1 FOR UPDATE`,
			string(id),
		).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return derr.ErrMatchNotFound
			}
			return fmt.Errorf("lock match: %w", err)
		}

		sets := make([]string, 0, 6)
		args := make([]any, 0, 7)
		set := func(expr string, value any) {
			args = append(args, value)
			sets = append(sets, fmt.Sprintf(expr, len(args)))
		}

		if update.Date != nil {
			set("match_date = $%d::date", *update.Date)
		}
		if update.Format != nil {
			set("match_type = $%d", string(*update.Format))
		}
		if update.Name != nil {
			set("name = NULLIF($%d, '')", *update.Name)
		}
		if update.TeamAScore != nil {
			set("team_a_score = $%d", *update.TeamAScore)
		}
		if update.TeamBScore != nil {
			set("team_b_score = $%d", *update.TeamBScore)
		}
		next := models.PlayerID(current)
		if update.ShirtsResponsibleID != nil {
			next = *update.ShirtsResponsibleID
			set("shirts_responsible_id = NULLIF($%d, '')", string(next))
		}

		if len(sets) > 0 {
			args = append(args, string(id))
			query := fmt.Sprintf(`UPDATE matches SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
			if _, err := tx.Exec(ctx, query, args...); err != nil {
				return wrapMatchWriteErr("update match", err)
			}
		}

		if update.ReplaceTeams {
			if _, err := tx.Exec(ctx, `DELETE FROM match_players WHERE match_id = $1`, string(id)); err != nil {
				return fmt.Errorf("delete match players: %w", err)
			}
			if err := insertParticipants(ctx, tx, string(id), update.TeamA, update.TeamB); err != nil {
				return err
			}
		}

		return adjustShirtDuty(ctx, tx, models.PlayerID(current), next)
	})
}

func (r *Repository) DeleteMatch(ctx context.Context, id models.MatchID) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		var responsible string
		err := tx.QueryRow(ctx,
			`DELETE FROM matches WHERE id = $1 RETURNING COALESCE(shirts_responsible_id, '')`,
			string(id),
		).Scan(&responsible)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return derr.ErrMatchNotFound
			}
			return fmt.Errorf("delete match: %w", err)
		}

		return adjustShirtDuty(ctx, tx, models.PlayerID(responsible), "")
	})
}

func insertParticipants(ctx context.Context, tx pgx.Tx, matchID string, teamA, teamB []models.Participation) error {
	const query = `
		INSERT INTO match_players (match_id, player_id, team, slot, goals, performance)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	batch := &pgx.Batch{}
	queue := func(team models.Team, participants []models.Participation) {
		for slot, p := range participants {
			batch.Queue(query, matchID, string(p.PlayerID), string(team), slot, p.Goals, p.Performance)
		}
	}
	queue(models.TeamA, teamA)
	queue(models.TeamB, teamB)
	if batch.Len() == 0 {
		return nil
	}

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return wrapMatchWriteErr("insert match player", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}
	return nil
}

// adjustShirtDuty moves one shirt duty from prev to next when they differ.
func adjustShirtDuty(ctx context.Context, tx pgx.Tx, prev, next models.PlayerID) error {
	if prev == next {
		return nil
	}
	if prev != "" {
		if _, err := tx.Exec(ctx,
			`UPDATE players SET shirt_duties_count = GREATEST(shirt_duties_count - 1, 0), updated_at = now() WHERE id = $1`,
			string(prev),
		); err != nil {
			return fmt.Errorf("decrement shirt duty: %w", err)
		}
	}
	if next != "" {
		tag, err := tx.Exec(ctx,
			`UPDATE players SET shirt_duties_count = shirt_duties_count + 1, updated_at = now() WHERE id = $1`,
			string(next),
		)
		if err != nil {
			return fmt.Errorf("increment shirt duty: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: shirts responsible %s does not exist", derr.ErrInvalidMatch, next)
		}
	}
	return nil
}

func wrapMatchWriteErr(action string, err error) error {
	if pgErrorCode(err) == pgForeignKeyViolation {
		return fmt.Errorf("%w: %s references an unknown player", derr.ErrInvalidMatch, action)
	}
	return fmt.Errorf("%s: %w", action, err)
}
