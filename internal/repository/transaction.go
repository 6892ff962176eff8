package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"payment-collect-visa/internal/domain"
)

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// CreateBatch stores the return collect and one payment transaction per
// outcome in a single database transaction. Either all rows land or none.
func (r *TransactionRepository) CreateBatch(ctx context.Context, c domain.Collect, txs []domain.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertCollect(ctx, tx, c); err != nil {
		return fmt.Errorf("insert collect %s: %w", c.ID, err)
	}
	if len(txs) == 0 {
		return tx.Commit()
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO collect_transactions
			(collect_id, invoice_id, state, description, amount, pay_date, payment_method_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, t := range txs {
		var payDate sql.NullTime
		if t.PayDate != nil {
			payDate = sql.NullTime{Time: *t.PayDate, Valid: true}
		}
		var method sql.NullInt64
		if t.PaymentMethodID != nil {
			method = sql.NullInt64{Int64: *t.PaymentMethodID, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			t.CollectID,
			t.InvoiceID,
			t.State,
			t.Description,
			t.Amount,
			payDate,
			method,
			now,
		); err != nil {
			return fmt.Errorf("insert transaction for invoice %d: %w", t.InvoiceID, err)
		}
	}

	return tx.Commit()
}
