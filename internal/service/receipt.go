package service

import (
	"fmt"
	"strings"
	"time"

	"payment-collect-visa/internal/debliqc"
	"payment-collect-visa/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// BuildReceipt renders the REMITO that travels with the collection file.
func BuildReceipt(companyName string, expiration time.Time, s debliqc.Summary, digits int32) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "Nombre Empresa: %s\r\n", companyName)
	fmt.Fprintf(&b, "Fecha de Vto: %s, Cant. Debitos: %d, Importe Total: %s\r\n",
		expiration.Format("02/01/2006"), s.Count, formatAmount(s.TotalAmount, digits))
	return []byte(b.String())
}

// formatAmount renders amount in the Argentine style, "1.234.567,89", straight
// from its decimal digits.
func formatAmount(amount decimal.Decimal, digits int32) string {
	if digits < 0 {
		digits = 0
	}
	fixed := amount.Abs().StringFixed(digits)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if amount.IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte(',')
		b.WriteString(frac)
	}
	return b.String()
}

func maskCard(card string) string {
	if len(card) <= 4 {
		return card
	}
	return strings.Repeat("*", len(card)-4) + card[len(card)-4:]
}

type sheetColumn struct {
	Header string
	Width  float64
}

func newSheet(name string, cols []sheetColumn) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
		return nil, err
	}
	for i, col := range cols {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(name, cell, col.Header)
		colName, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(name, colName, colName, col.Width)
	}
	return f, nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func sheetBytes(f *excelize.File) ([]byte, error) {
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const (
	detailSheet  = "Debitos"
	outcomeSheet = "Resultado"
)

// BuildDetailSheet lists the debits of batch next to their source invoices.
func BuildDetailSheet(invoices []domain.Invoice, batch debliqc.Batch, r debliqc.Rounder) ([]byte, error) {
	f, err := newSheet(detailSheet, []sheetColumn{
		{"Secuencia", 12},
		{"Factura", 16},
		{"Tercero", 16},
		{"Nombre", 32},
		{"Tarjeta", 20},
		{"Vencimiento", 14},
		{"Importe", 14},
		{"Moneda", 10},
	})
	if err != nil {
		return nil, err
	}

	for i, d := range batch.Details {
		if i >= len(invoices) {
			break
		}
		inv := invoices[i]
		amount := r.Round(inv.Currency, inv.AmountToPay)
		writeRow(f, detailSheet, i+2,
			d.SequenceNumber,
			inv.Number,
			inv.PartyCode,
			inv.PartyName,
			maskCard(inv.CardNumber),
			d.DueDate,
			amount.InexactFloat64(),
			inv.Currency.Code,
		)
	}
	return sheetBytes(f)
}

// BuildOutcomeSheet lists the result of every matched return line.
func BuildOutcomeSheet(outcomes []domain.Outcome) ([]byte, error) {
	f, err := newSheet(outcomeSheet, []sheetColumn{
		{"Tercero", 16},
		{"Factura", 12},
		{"Estado", 8},
		{"Descripcion", 24},
		{"Importe", 14},
		{"Fecha de Pago", 14},
	})
	if err != nil {
		return nil, err
	}

	for i, o := range outcomes {
		payDate := ""
		if o.SettlementDate != nil {
			payDate = o.SettlementDate.Format("02/01/2006")
		}
		writeRow(f, outcomeSheet, i+2,
			o.PartyKey,
			o.InvoiceID,
			o.Code,
			o.Message,
			o.Amount.InexactFloat64(),
			payDate,
		)
	}
	return sheetBytes(f)
}
