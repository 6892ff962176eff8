package service

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"payment-collect-visa/internal/currency"
	"payment-collect-visa/internal/debliqc"
	"payment-collect-visa/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func TestBuildReceipt(t *testing.T) {
	exp := time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC)
	got := string(BuildReceipt("ACME SA", exp, debliqc.Summary{Count: 3, TotalAmount: decimal.RequireFromString("12.5")}, 2))

	lines := strings.Split(strings.TrimSuffix(got, "\r\n"), "\r\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines; got %q", got)
	}
	if lines[0] != "Nombre Empresa: ACME SA" {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Fecha de Vto: 02/04/2024, Cant. Debitos: 3, Importe Total: ") {
		t.Fatalf("unexpected second line %q", lines[1])
	}
	if !strings.HasSuffix(lines[1], "12,50") {
		t.Fatalf("total must use a decimal comma and fixed digits; got %q", lines[1])
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount string
		digits int32
		want   string
	}{
		{"0", 2, "0,00"},
		{"12.5", 2, "12,50"},
		{"1234.5", 2, "1.234,50"},
		{"1234567.89", 2, "1.234.567,89"},
		{"123456789012345678.01", 2, "123.456.789.012.345.678,01"},
		{"999999", 0, "999.999"},
		{"1.005", 3, "1,005"},
		{"-1500", 2, "-1.500,00"},
	}
	for _, tt := range tests {
		got := formatAmount(decimal.RequireFromString(tt.amount), tt.digits)
		if got != tt.want {
			t.Errorf("formatAmount(%s, %d) = %q; want %q", tt.amount, tt.digits, got, tt.want)
		}
	}
}

func TestMaskCard(t *testing.T) {
	if got := maskCard("4509953566233704"); got != "************3704" {
		t.Fatalf("unexpected mask %q", got)
	}
	if got := maskCard("123"); got != "123" {
		t.Fatalf("short values stay unchanged; got %q", got)
	}
}

func TestBuildDetailSheet(t *testing.T) {
	r := currency.NewRounder()
	inv := testInvoice(1, "1001", "4509953566233704", "10.005")
	res, err := debliqc.Generate([]domain.Invoice{inv}, debliqc.RunConfig{
		CompanyCode:    "12345",
		ExpirationDate: testNow,
		RunAt:          testNow,
	}, r)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	data, err := BuildDetailSheet([]domain.Invoice{inv}, res.Batch, r)
	if err != nil {
		t.Fatalf("sheet: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(detailSheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header and one row; got %d", len(rows))
	}
	if rows[0][0] != "Secuencia" || rows[1][4] != "************3704" {
		t.Fatalf("unexpected rows %v", rows)
	}
	if rows[1][6] != "10" {
		t.Fatalf("amount must be rounded half-even; got %q", rows[1][6])
	}
}
