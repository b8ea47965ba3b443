package contacts

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDirectory reads contacts from PostgreSQL. The query pushes a loose
// prefix filter down to SQL; phonetic ranking stays in the resolver, so the
// filter errs on the side of returning too much.
type PostgresDirectory struct {
	pool *pgxpool.Pool
}

func NewPostgresDirectory(ctx context.Context, databaseURL string) (*PostgresDirectory, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := initContactSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresDirectory{pool: pool}, nil
}

func initContactSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS contacts (
			id TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			number TEXT NOT NULL DEFAULT '',
			note TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_contacts_display_name ON contacts (lower(display_name));`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (d *PostgresDirectory) Search(ctx context.Context, query string) ([]Candidate, error) {
	// First token only: "Harsh Patel" should still surface every Harsh.
	token := strings.ToLower(strings.TrimSpace(query))
	if i := strings.IndexByte(token, ' '); i > 0 {
		token = token[:i]
	}
	if token == "" {
		return nil, nil
	}
	prefix := token
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}

	rows, err := d.pool.Query(ctx,
		`SELECT id, display_name, number, note FROM contacts
		 WHERE lower(display_name) LIKE $1 OR lower(display_name) LIKE $2
		 LIMIT 50`,
		token+"%", prefix+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.ID, &c.DisplayName, &c.Number, &c.Note); err != nil {
			return nil, fmt.Errorf("scan contact row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contact rows: %w", err)
	}
	return out, nil
}

func (d *PostgresDirectory) Close() error {
	d.pool.Close()
	return nil
}
