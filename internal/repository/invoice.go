package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"payment-collect-visa/internal/domain"
)

type InvoiceFilter struct {
	CompanyID   int64
	PeriodIDs   []int64
	PayModeType string
}

type InvoiceRepository struct {
	db *sql.DB
}

func NewInvoiceRepository(db *sql.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

const invoiceSelect = `SELECT i.id, i.number, i.amount_to_pay, c.id, c.code, c.digits, c.rounding, p.id, p.code, p.name, pm.id, pm.type, pm.credit_number FROM invoices i JOIN parties p ON p.id = i.party_id JOIN currencies c ON c.id = i.currency_id JOIN paymodes pm ON pm.id = i.paymode_id`

// buildInvoiceWhere mirrors the collect search domain: posted invoices with
// something left to pay, in the selected periods, paid with the given pay mode.
func buildInvoiceWhere(f InvoiceFilter, start int) ([]string, []any, int) {
	where := []string{"i.state = 'posted'", "i.amount_to_pay > 0"}
	args := []any{}
	i := start

	if f.CompanyID != 0 {
		where = append(where, fmt.Sprintf("i.company_id = $%d", i))
		args = append(args, f.CompanyID)
		i++
	}
	if len(f.PeriodIDs) > 0 {
		where = append(where, fmt.Sprintf("i.period_id = ANY($%d)", i))
		args = append(args, f.PeriodIDs)
		i++
	}
	if f.PayModeType != "" {
		where = append(where, fmt.Sprintf("pm.type = $%d", i))
		args = append(args, f.PayModeType)
		i++
	}
	return where, args, i
}

// ListPending returns the invoices to collect ordered by invoice id.
func (r *InvoiceRepository) ListPending(ctx context.Context, f InvoiceFilter) ([]domain.Invoice, error) {
	where, args, _ := buildInvoiceWhere(f, 1)
	query := invoiceSelect + " WHERE " + strings.Join(where, " AND ") + " ORDER BY i.id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// FindByPartyCode returns the first pending invoice of the party, or nil.
func (r *InvoiceRepository) FindByPartyCode(ctx context.Context, f InvoiceFilter, code string) (*domain.Invoice, error) {
	where, args, i := buildInvoiceWhere(f, 1)
	where = append(where, fmt.Sprintf("p.code = $%d", i))
	args = append(args, code)

	query := invoiceSelect + " WHERE " + strings.Join(where, " AND ") + " ORDER BY i.id LIMIT 1"

	inv, err := scanInvoice(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (domain.Invoice, error) {
	var (
		inv     domain.Invoice
		number  sql.NullString
		card    sql.NullString
		code    sql.NullString
		partyNm sql.NullString
	)
	if err := row.Scan(
		&inv.ID,
		&number,
		&inv.AmountToPay,
		&inv.Currency.ID,
		&inv.Currency.Code,
		&inv.Currency.Digits,
		&inv.Currency.Rounding,
		&inv.PartyID,
		&code,
		&partyNm,
		&inv.PayModeID,
		&inv.PayModeType,
		&card,
	); err != nil {
		return domain.Invoice{}, err
	}

	inv.Number = number.String
	inv.PartyCode = code.String
	inv.PartyName = partyNm.String
	inv.CardNumber = card.String
	inv.RecName = inv.Number
	if inv.PartyName != "" {
		inv.RecName = strings.TrimSpace(inv.Number + " " + inv.PartyName)
	}
	return inv, nil
}
