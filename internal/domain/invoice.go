package domain

import "github.com/shopspring/decimal"

type Currency struct {
	ID       int64
	Code     string
	Digits   int32
	Rounding decimal.Decimal
}

type Invoice struct {
	ID      int64
	Number  string
	RecName string

	AmountToPay decimal.Decimal
	Currency    Currency

	PartyID   int64
	PartyCode string
	PartyName string

	PayModeID   int64
	PayModeType string
	CardNumber  string
}
