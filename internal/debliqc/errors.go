package debliqc

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	ErrConfiguration = errors.New("debliqc: configuration error")
	ErrEmptyInput    = errors.New("debliqc: empty input")
	ErrDataIntegrity = errors.New("debliqc: data integrity error")
	ErrFieldOverflow = errors.New("debliqc: field overflow")
)

// FieldOverflowError reports a value that does not fit its fixed column.
type FieldOverflowError struct {
	Field string
	Value string
	Width int
}

func (e *FieldOverflowError) Error() string {
	return fmt.Sprintf("field %s: value %q is %d characters wide, column holds %d", e.Field, e.Value, utf8.RuneCountInString(e.Value), e.Width)
}

func (e *FieldOverflowError) Unwrap() error { return ErrFieldOverflow }

// DataIntegrityError reports an invoice that cannot be turned into a detail record.
type DataIntegrityError struct {
	Invoice string
	Field   string
	Reason  string
}

func (e *DataIntegrityError) Error() string {
	if e.Invoice == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invoice %s: %s: %s", e.Invoice, e.Field, e.Reason)
}

func (e *DataIntegrityError) Unwrap() error { return ErrDataIntegrity }
