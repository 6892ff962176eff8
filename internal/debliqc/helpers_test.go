package debliqc

import (
	"strings"
	"time"

	"payment-collect-visa/internal/currency"
	"payment-collect-visa/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	testRunAt      = time.Date(2024, time.March, 5, 14, 7, 0, 0, time.UTC)
	testExpiration = time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	testRounder    = currency.NewRounder()
)

func testInvoice(id int64, partyCode, card, amount string) domain.Invoice {
	return domain.Invoice{
		ID:          id,
		Number:      "INV-" + partyCode,
		AmountToPay: decimal.RequireFromString(amount),
		Currency:    currency.FromCode("ARS"),
		PartyCode:   partyCode,
		CardNumber:  card,
	}
}

// returnLine builds a bank response line with party in columns 98..108 and
// the result code in column 129.
func returnLine(recordType byte, party string, code byte) string {
	var b strings.Builder
	b.WriteByte(recordType)
	b.WriteString(strings.Repeat(" ", partyKeyStart-1))
	b.WriteString(ZeroPad(party, partyKeyEnd-partyKeyStart))
	b.WriteString(strings.Repeat(" ", resultCodeIndex-partyKeyEnd))
	b.WriteByte(code)
	b.WriteString(strings.Repeat(" ", 20))
	return b.String()
}
