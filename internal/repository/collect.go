package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"payment-collect-visa/internal/domain"
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const insertCollectQuery = `
	INSERT INTO collects
		(id, type, paymode, origin, period_ids, file_name, file_url, attachments, count, accepted, rejected, total_amount, created_by, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
`

type CollectRepository struct {
	db *sql.DB
}

func NewCollectRepository(db *sql.DB) *CollectRepository {
	return &CollectRepository{db: db}
}

func (r *CollectRepository) Create(ctx context.Context, c domain.Collect) error {
	return insertCollect(ctx, r.db, c)
}

func insertCollect(ctx context.Context, db execer, c domain.Collect) error {
	attachments, err := json.Marshal(c.Attachments)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, insertCollectQuery,
		c.ID,
		c.Type,
		c.PayMode,
		c.Origin,
		c.PeriodIDs,
		c.FileName,
		c.FileURL,
		attachments,
		c.Count,
		c.Accepted,
		c.Rejected,
		c.TotalAmount,
		c.CreatedBy,
		c.CreatedAt,
	)
	return err
}
