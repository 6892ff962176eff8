package domain

type Configuration struct {
	CompanyID   int64
	CompanyName string

	// VISA company code printed on header and footer records.
	CompanyCode string

	PaymentMethodID *int64
}
