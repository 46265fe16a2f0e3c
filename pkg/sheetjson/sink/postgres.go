package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/models"
)

// DefaultTable receives rows when no table is configured.
const DefaultTable = "sheet_rows"

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Postgres inserts each record as a JSONB row tagged with a run reference.
type Postgres struct {
	db     execer
	table  string
	outRef string
}

// Connect opens a pgx pool for dsn.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 4
	cfg.MaxConnIdleTime = 5 * time.Minute
	return pgxpool.NewWithConfig(ctx, cfg)
}

// NewPostgres returns a sink writing to table, or DefaultTable when empty.
func NewPostgres(db execer, table, outRef string) *Postgres {
	if table == "" {
		table = DefaultTable
	}
	return &Postgres{db: db, table: table, outRef: outRef}
}

func (p *Postgres) ident() string {
	return pgx.Identifier{p.table}.Sanitize()
}

// EnsureTable creates the target table if needed.
func (p *Postgres) EnsureTable(ctx context.Context) error {
	stmt := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	id BIGSERIAL PRIMARY KEY,
	out_ref TEXT NOT NULL,
	data JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, p.ident())
	if _, err := p.db.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("ensure table: %w", err)
	}
	return nil
}

// Save inserts rec.
func (p *Postgres) Save(ctx context.Context, rec models.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	stmt := fmt.Sprintf("INSERT INTO %s (out_ref, data) VALUES ($1, $2)", p.ident())
	if _, err := p.db.Exec(ctx, stmt, p.outRef, string(data)); err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}
