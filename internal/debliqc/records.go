package debliqc

import (
	"strconv"
	"strings"
	"time"

	"payment-collect-visa/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	RecordTypeHeader = "0"
	RecordTypeDetail = "1"
	RecordTypeFooter = "9"

	fileConstant    = "DEBLIQC "
	serviceConstant = "900000    "
	detailConstant  = "0005"
	endMark         = "*"

	CompanyCodeWidth = 10
	CardNumberWidth  = 16
	SequenceWidth    = 8
	AmountWidth      = 15
	DebtorIDWidth    = 15
	TotalCountWidth  = 7

	// RecordWidth is the length of every record in fixed-width mode, EOL excluded.
	RecordWidth = 100
)

// Rounder applies the currency rounding policy. The codec never rounds on its own.
type Rounder interface {
	Round(c domain.Currency, amount decimal.Decimal) decimal.Decimal
}

// Record is one line of the collection file.
type Record interface {
	Fields() []string
}

type Header struct {
	RecordType   string
	FileConstant string
	CompanyCode  string
	Service      string
	RunDate      string
	RunTime      string
	FileType     string
	FileStatus   string
	Reserved     string
	EndMark      string
}

func (h Header) Fields() []string {
	return []string{
		h.RecordType,
		h.FileConstant,
		h.CompanyCode,
		h.Service,
		h.RunDate,
		h.RunTime,
		h.FileType,
		h.FileStatus,
		h.Reserved,
		h.EndMark,
	}
}

type Detail struct {
	RecordType     string
	CardNumber     string
	Spacer         string
	SequenceNumber string
	DueDate        string
	Constant       string
	Amount         string
	DebtorID       string
	CreationCode   string
	Status         string
	Reserved       string
	EndMark        string
}

func (d Detail) Fields() []string {
	return []string{
		d.RecordType,
		d.CardNumber,
		d.Spacer,
		d.SequenceNumber,
		d.DueDate,
		d.Constant,
		d.Amount,
		d.DebtorID,
		d.CreationCode,
		d.Status,
		d.Reserved,
		d.EndMark,
	}
}

type Footer struct {
	RecordType   string
	FileConstant string
	CompanyCode  string
	Service      string
	RunDate      string
	RunTime      string
	TotalCount   string
	TotalAmount  string
	Reserved     string
	EndMark      string
}

func (f Footer) Fields() []string {
	return []string{
		f.RecordType,
		f.FileConstant,
		f.CompanyCode,
		f.Service,
		f.RunDate,
		f.RunTime,
		f.TotalCount,
		f.TotalAmount,
		f.Reserved,
		f.EndMark,
	}
}

// BatchTotals is the running count and sum of one batch.
type BatchTotals struct {
	Count    int
	Sum      decimal.Decimal
	Currency *domain.Currency
}

// Add accounts for one detail amount. All details of a batch must share a currency.
func (t *BatchTotals) Add(c domain.Currency, amount decimal.Decimal, r Rounder) error {
	if t.Currency == nil {
		cur := c
		t.Currency = &cur
	} else if t.Currency.Code != c.Code {
		return &DataIntegrityError{
			Field:  "currency",
			Reason: "batch mixes " + t.Currency.Code + " and " + c.Code,
		}
	}
	t.Count++
	t.Sum = r.Round(c, t.Sum.Add(amount))
	return nil
}

func (t BatchTotals) digits() int32 {
	if t.Currency == nil {
		return 0
	}
	return t.Currency.Digits
}

func BuildHeader(companyCode string, runAt time.Time) (Header, error) {
	code, err := fitRight("company_code", companyCode, CompanyCodeWidth)
	if err != nil {
		return Header{}, err
	}
	return Header{
		RecordType:   RecordTypeHeader,
		FileConstant: fileConstant,
		CompanyCode:  code,
		Service:      serviceConstant,
		RunDate:      FormatRunDate(runAt),
		RunTime:      FormatTime(runAt),
		FileType:     "0",
		FileStatus:   "  ",
		Reserved:     strings.Repeat(" ", 55),
		EndMark:      endMark,
	}, nil
}

// BuildDetail turns one invoice into a detail record. It returns the rounded
// amount so the caller can feed BatchTotals.
func BuildDetail(inv domain.Invoice, seq int, expiration time.Time, r Rounder) (Detail, decimal.Decimal, error) {
	label := invoiceLabel(inv)
	if strings.TrimSpace(inv.CardNumber) == "" {
		return Detail{}, decimal.Zero, &DataIntegrityError{Invoice: label, Field: "card_number", Reason: "missing"}
	}
	if strings.TrimSpace(inv.PartyCode) == "" {
		return Detail{}, decimal.Zero, &DataIntegrityError{Invoice: label, Field: "party_code", Reason: "missing"}
	}
	if !isDigits(inv.PartyCode) {
		return Detail{}, decimal.Zero, &DataIntegrityError{Invoice: label, Field: "party_code", Reason: "not numeric: " + inv.PartyCode}
	}

	card, err := fitRight("card_number", inv.CardNumber, CardNumberWidth)
	if err != nil {
		return Detail{}, decimal.Zero, err
	}
	sequence, err := fitZero("sequence_number", strconv.Itoa(seq), SequenceWidth)
	if err != nil {
		return Detail{}, decimal.Zero, err
	}

	amount := r.Round(inv.Currency, inv.AmountToPay)
	encoded, err := EncodeAmount(amount, inv.Currency.Digits, AmountWidth)
	if err != nil {
		return Detail{}, decimal.Zero, withInvoice(err, label)
	}

	debtor, err := fitZero("debtor_id", strings.TrimLeft(inv.PartyCode, "0"), DebtorIDWidth)
	if err != nil {
		return Detail{}, decimal.Zero, err
	}

	return Detail{
		RecordType:     RecordTypeDetail,
		CardNumber:     card,
		Spacer:         "   ",
		SequenceNumber: sequence,
		DueDate:        FormatDueDate(expiration),
		Constant:       detailConstant,
		Amount:         encoded,
		DebtorID:       debtor,
		CreationCode:   "E",
		Status:         "  ",
		Reserved:       strings.Repeat(" ", 26),
		EndMark:        endMark,
	}, amount, nil
}

func BuildFooter(totals BatchTotals, companyCode string, runAt time.Time) (Footer, error) {
	code, err := fitRight("company_code", companyCode, CompanyCodeWidth)
	if err != nil {
		return Footer{}, err
	}
	count, err := fitZero("total_count", strconv.Itoa(totals.Count), TotalCountWidth)
	if err != nil {
		return Footer{}, err
	}
	amount, err := EncodeAmount(totals.Sum, totals.digits(), AmountWidth)
	if err != nil {
		return Footer{}, err
	}
	return Footer{
		RecordType:   RecordTypeFooter,
		FileConstant: fileConstant,
		CompanyCode:  code,
		Service:      serviceConstant,
		RunDate:      FormatRunDate(runAt),
		RunTime:      FormatTime(runAt),
		TotalCount:   count,
		TotalAmount:  amount,
		Reserved:     strings.Repeat(" ", 36),
		EndMark:      endMark,
	}, nil
}

func invoiceLabel(inv domain.Invoice) string {
	switch {
	case inv.RecName != "":
		return inv.RecName
	case inv.Number != "":
		return inv.Number
	default:
		return strconv.FormatInt(inv.ID, 10)
	}
}

func withInvoice(err error, label string) error {
	if di, ok := err.(*DataIntegrityError); ok && di.Invoice == "" {
		di.Invoice = label
	}
	return err
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
