package debliqc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"payment-collect-visa/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	OutcomeAccepted = "A"
	OutcomeRejected = "R"

	MessageAccepted = "Movimiento Aceptado"
	MessageRejected = "Movimiento Rechazado"
)

// RunConfig is the run-level context of one collection file.
type RunConfig struct {
	CompanyCode    string
	ExpirationDate time.Time
	// RunAt is captured once per run and stamped on header and footer.
	RunAt  time.Time
	CSV    bool
	Layout Layout
}

type Summary struct {
	Count       int
	TotalAmount decimal.Decimal
}

type GenerateResult struct {
	Data    []byte
	Batch   Batch
	Summary Summary
}

// Generate builds the collection file for invoices, in the order given.
// Any invalid invoice aborts the whole batch.
func Generate(invoices []domain.Invoice, cfg RunConfig, r Rounder) (*GenerateResult, error) {
	if strings.TrimSpace(cfg.CompanyCode) == "" {
		return nil, fmt.Errorf("%w: missing VISA company code", ErrConfiguration)
	}
	if r == nil {
		return nil, fmt.Errorf("%w: missing currency rounder", ErrConfiguration)
	}
	layout := cfg.Layout
	if layout == (Layout{}) {
		layout = DefaultLayout
	}

	header, err := BuildHeader(cfg.CompanyCode, cfg.RunAt)
	if err != nil {
		return nil, err
	}

	var totals BatchTotals
	details := make([]Detail, 0, len(invoices))
	for _, inv := range invoices {
		d, amount, err := BuildDetail(inv, totals.Count, cfg.ExpirationDate, r)
		if err != nil {
			return nil, err
		}
		if err := totals.Add(inv.Currency, amount, r); err != nil {
			return nil, withInvoice(err, invoiceLabel(inv))
		}
		details = append(details, d)
	}

	footer, err := BuildFooter(totals, cfg.CompanyCode, cfg.RunAt)
	if err != nil {
		return nil, err
	}

	batch := Batch{Header: header, Details: details, Footer: footer}
	return &GenerateResult{
		Data:    Serialize(batch, layout, cfg.CSV),
		Batch:   batch,
		Summary: Summary{Count: totals.Count, TotalAmount: totals.Sum},
	}, nil
}

// InvoiceResolver finds the invoice a return line refers to. A nil invoice
// with a nil error means no match.
type InvoiceResolver interface {
	ResolveParty(ctx context.Context, partyKey string) (*domain.Invoice, error)
}

type ReturnConfig struct {
	SettlementDate  time.Time
	PaymentMethodID *int64
}

// ApplyReturn parses payload and resolves every detail line to an outcome.
// Lines whose party key matches no invoice are skipped. The settlement date
// is only required once an accepted line matches an invoice.
func ApplyReturn(ctx context.Context, payload []byte, resolver InvoiceResolver, cfg ReturnConfig) ([]domain.Outcome, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: return file is empty", ErrEmptyInput)
	}
	var outcomes []domain.Outcome
	for line := range ParseReturn(payload) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		inv, err := resolver.ResolveParty(ctx, line.PartyKey)
		if err != nil {
			return nil, fmt.Errorf("resolve party %q: %w", line.PartyKey, err)
		}
		if inv == nil {
			continue
		}
		if line.Accepted && cfg.SettlementDate.IsZero() {
			return nil, fmt.Errorf("%w: missing settlement date for accepted party %q", ErrConfiguration, line.PartyKey)
		}
		outcomes = append(outcomes, outcomeFor(line, *inv, cfg))
	}
	return outcomes, nil
}

func outcomeFor(line ReturnLine, inv domain.Invoice, cfg ReturnConfig) domain.Outcome {
	o := domain.Outcome{
		PartyKey:        line.PartyKey,
		InvoiceID:       inv.ID,
		Accepted:        line.Accepted,
		Amount:          inv.AmountToPay,
		PaymentMethodID: cfg.PaymentMethodID,
	}
	if line.Accepted {
		date := cfg.SettlementDate
		o.Code = OutcomeAccepted
		o.Message = MessageAccepted
		o.SettlementDate = &date
	} else {
		o.Code = OutcomeRejected
		o.Message = MessageRejected
	}
	return o
}
