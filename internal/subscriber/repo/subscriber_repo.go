package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ovaphlow/pitchfork/service-subscriber/internal/subscriber/entity"
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// PostgresRepo stores each subscriber as a JSONB document keyed by id.
type PostgresRepo struct {
	db *sqlx.DB
}

func NewPostgresRepo(db *sqlx.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

type documentRow struct {
	ID  string `db:"id"`
	Doc []byte `db:"doc"`
}

func (row documentRow) decode() (*entity.Subscriber, error) {
	var s entity.Subscriber
	if err := json.Unmarshal(row.Doc, &s); err != nil {
		return nil, fmt.Errorf("decode subscriber %s: %w", row.ID, err)
	}
	s.ID = row.ID
	return &s, nil
}

// EnsureTable creates the subscribers table if it does not already exist.
func (r *PostgresRepo) EnsureTable(ctx context.Context) error {
	const tbl = `
	CREATE TABLE IF NOT EXISTS subscribers (
		id varchar(32) PRIMARY KEY,
		doc JSONB NOT NULL DEFAULT '{}'::jsonb
	);
	`
	if _, err := r.db.ExecContext(ctx, tbl); err != nil {
		return err
	}

	const idxChannel = `
	CREATE INDEX IF NOT EXISTS idx_subscribers_channel ON subscribers ((doc->>'subscribedToChannel'));
	`
	if _, err := r.db.ExecContext(ctx, idxChannel); err != nil {
		return err
	}
	return nil
}

func (r *PostgresRepo) List(ctx context.Context) ([]entity.Subscriber, error) {
	const q = `SELECT id, doc FROM subscribers ORDER BY (doc->>'subscribeDate')::timestamptz, id`
	var rows []documentRow
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("select subscribers: %w", err)
	}
	out := make([]entity.Subscriber, 0, len(rows))
	for _, row := range rows {
		s, err := row.decode()
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (*entity.Subscriber, error) {
	const q = `SELECT id, doc FROM subscribers WHERE id=$1`
	var row documentRow
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select subscriber: %w", err)
	}
	return row.decode()
}

func (r *PostgresRepo) Create(ctx context.Context, s *entity.Subscriber) error {
	doc, err := json.Marshal(s)
	if err != nil {
		return err
	}
	const q = `INSERT INTO subscribers (id, doc) VALUES (:id, :doc)`
	if _, err := r.db.NamedExecContext(ctx, q, documentRow{ID: s.ID, Doc: doc}); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateID
		}
		return fmt.Errorf("insert subscriber: %w", err)
	}
	return nil
}

func (r *PostgresRepo) Update(ctx context.Context, s *entity.Subscriber) error {
	doc, err := json.Marshal(s)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE subscribers SET doc=$2 WHERE id=$1`, s.ID, doc)
	if err != nil {
		return fmt.Errorf("update subscriber: %w", err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subscribers WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete subscriber: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
