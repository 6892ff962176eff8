package rest

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type SendRequest struct {
	PeriodIDs      []int64
	ExpirationDate time.Time
	CSVFormat      bool
}

type rawSendRequest struct {
	PeriodIDs      []interface{} `json:"period_ids"`
	ExpirationDate interface{}   `json:"expiration_date"`
	CSVFormat      interface{}   `json:"csv_format"`
}

func ValidateSendRequest(r *http.Request) (*SendRequest, error) {
	var raw rawSendRequest

	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil && err != io.EOF {
		return nil, err
	}

	if len(raw.PeriodIDs) == 0 {
		return nil, &ValidationError{Field: "period_ids", Message: "period_ids is required and must be an array"}
	}
	periods := make([]int64, 0, len(raw.PeriodIDs))
	for _, v := range raw.PeriodIDs {
		id, err := toInt64Ptr(v)
		if err != nil || id == nil {
			return nil, &ValidationError{Field: "period_ids", Message: "period_ids must contain integers"}
		}
		periods = append(periods, *id)
	}

	expiration, err := toDatePtr(raw.ExpirationDate)
	if err != nil || expiration == nil {
		return nil, &ValidationError{Field: "expiration_date", Message: "expiration_date is required and must be YYYY-MM-DD"}
	}

	csvFormat, err := toBool(raw.CSVFormat)
	if err != nil {
		return nil, &ValidationError{Field: "csv_format", Message: "csv_format must be boolean or empty"}
	}

	return &SendRequest{
		PeriodIDs:      periods,
		ExpirationDate: *expiration,
		CSVFormat:      csvFormat,
	}, nil
}

// parsePeriodList reads a comma separated form value such as "3,4".
func parsePeriodList(v string) ([]int64, error) {
	var out []int64
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, &ValidationError{Field: "period_ids", Message: "period_ids must contain integers"}
		}
		out = append(out, id)
	}
	return out, nil
}

func toInt64Ptr(v interface{}) (*int64, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case float64:
		i := int64(t)
		if float64(i) != t {
			return nil, &ValidationError{Message: "invalid integer"}
		}
		return &i, nil
	case string:
		if t == "" {
			return nil, nil
		}
		i, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return nil, err
		}
		return &i, nil
	default:
		return nil, &ValidationError{Message: "invalid type for int field"}
	}
}

func toDatePtr(v interface{}) (*time.Time, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		if t == "" {
			return nil, nil
		}
		parsed, err := time.Parse("2006-01-02", t)
		if err != nil {
			return nil, err
		}
		return &parsed, nil
	default:
		return nil, &ValidationError{Message: "invalid type for date field"}
	}
}

func toBool(v interface{}) (bool, error) {
	switch t := v.(type) {
	case nil:
		return false, nil
	case bool:
		return t, nil
	case float64:
		return t != 0, nil
	case string:
		if t == "" {
			return false, nil
		}
		return strconv.ParseBool(t)
	default:
		return false, &ValidationError{Message: "invalid type for bool field"}
	}
}
