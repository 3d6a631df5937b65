package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Postgres stores documents as JSONB rows in the documents table.
type Postgres struct {
	db dbtx
}

// NewPostgres returns a Store over pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{db: pool}
}

func (p *Postgres) Load(ctx context.Context, key string, dest any) error {
	var raw []byte
	err := p.db.QueryRow(ctx, `SELECT body FROM documents WHERE key = $1`, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound(key)
	}
	if err != nil {
		return fmt.Errorf("load document %s: %w", key, err)
	}
	return json.Unmarshal(raw, dest)
}

func (p *Postgres) Save(ctx context.Context, key string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = p.db.Exec(ctx, `INSERT INTO documents (key, body, updated_at) VALUES ($1, $2, NOW())
ON CONFLICT (key) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`, key, raw)
	if err != nil {
		return fmt.Errorf("save document %s: %w", key, err)
	}
	return nil
}
