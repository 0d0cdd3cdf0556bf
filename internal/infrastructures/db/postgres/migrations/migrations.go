package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	migrate "github.com/rubenv/sql-migrate"
)

//go:embed *.sql
var files embed.FS

func Source() migrate.MigrationSource {
	return &migrate.EmbedFileSystemMigrationSource{FileSystem: files, Root: "."}
}

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

func ParseDirection(raw string) (Direction, error) {
	switch Direction(raw) {
	case Up, Down:
		return Direction(raw), nil
	default:
		return "", fmt.Errorf("unknown migration direction %q", raw)
	}
}

// Apply runs migrations against the pool and returns how many were applied.
// limit 0 means all pending migrations.
func Apply(pool *pgxpool.Pool, table string, dir Direction, limit int) (int, error) {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	return apply(db, table, dir, limit)
}

func apply(db *sql.DB, table string, dir Direction, limit int) (int, error) {
	const op = "migrations.Apply"

	ms := migrate.MigrationSet{TableName: table}
	direction := migrate.Up
	if dir == Down {
		direction = migrate.Down
	}

	n, err := ms.ExecMax(db, "postgres", Source(), direction, limit)
	if err != nil {
		return n, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

type Status struct {
	ID      string
	Applied bool
}

// Pending lists every known migration and whether it has been applied.
func Pending(pool *pgxpool.Pool, table string) ([]Status, error) {
	const op = "migrations.Pending"

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	ms := migrate.MigrationSet{TableName: table}
	known, err := Source().FindMigrations()
	if err != nil {
		return nil, fmt.Errorf("%s: find migrations: %w", op, err)
	}
	records, err := ms.GetMigrationRecords(db, "postgres")
	if err != nil {
		return nil, fmt.Errorf("%s: read records: %w", op, err)
	}

	applied := make(map[string]struct{}, len(records))
	for _, r := range records {
		applied[r.Id] = struct{}{}
	}

	out := make([]Status, 0, len(known))
	for _, m := range known {
		_, ok := applied[m.Id]
		out = append(out, Status{ID: m.Id, Applied: ok})
	}
	return out, nil
}
