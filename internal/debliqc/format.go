package debliqc

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	runDateLayout = "20060201" // year, day, month: the bank expects the swapped order
	dueDateLayout = "20060102"
	timeLayout    = "1504"
)

// PadRight space-pads value on the right up to width. Longer values are returned unchanged.
func PadRight(value string, width int) string {
	n := utf8.RuneCountInString(value)
	if n >= width {
		return value
	}
	return value + strings.Repeat(" ", width-n)
}

// ZeroPad left-pads value with zeros up to width. Longer values are returned unchanged.
func ZeroPad(value string, width int) string {
	n := utf8.RuneCountInString(value)
	if n >= width {
		return value
	}
	return strings.Repeat("0", width-n) + value
}

// EncodeAmount renders amount with exactly digits fraction digits, drops the
// decimal point and zero-pads the result to width. The amount must already be
// rounded by the caller.
func EncodeAmount(amount decimal.Decimal, digits int32, width int) (string, error) {
	if amount.IsNegative() {
		return "", &DataIntegrityError{Field: "amount", Reason: "negative amount " + amount.String()}
	}
	if digits < 0 {
		digits = 0
	}
	raw := strings.Replace(amount.StringFixed(digits), ".", "", 1)
	return fitZero("amount", raw, width)
}

func FormatRunDate(t time.Time) string { return t.Format(runDateLayout) }

func FormatDueDate(t time.Time) string { return t.Format(dueDateLayout) }

func FormatTime(t time.Time) string { return t.Format(timeLayout) }

func fitRight(field, value string, width int) (string, error) {
	if utf8.RuneCountInString(value) > width {
		return "", &FieldOverflowError{Field: field, Value: value, Width: width}
	}
	return PadRight(value, width), nil
}

func fitZero(field, value string, width int) (string, error) {
	if utf8.RuneCountInString(value) > width {
		return "", &FieldOverflowError{Field: field, Value: value, Width: width}
	}
	return ZeroPad(value, width), nil
}
