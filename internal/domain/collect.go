package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	CollectTypeSend   = "send"
	CollectTypeReturn = "return"
)

type Collect struct {
	ID        string
	Type      string
	PayMode   string
	Origin    string
	PeriodIDs []int64

	FileName    string
	FileURL     string
	Attachments []Attachment

	Count       int
	Accepted    int
	Rejected    int
	TotalAmount decimal.Decimal

	CreatedBy int64
	CreatedAt time.Time
}

type Attachment struct {
	Name string `json:"name"`
	Key  string `json:"key"`
	URL  string `json:"url"`
}

type Outcome struct {
	PartyKey  string
	InvoiceID int64

	Accepted bool
	Code     string
	Message  string

	Amount         decimal.Decimal
	SettlementDate *time.Time

	PaymentMethodID *int64
}

type Transaction struct {
	CollectID string
	InvoiceID int64

	State       string
	Description string

	Amount          decimal.Decimal
	PayDate         *time.Time
	PaymentMethodID *int64
}
