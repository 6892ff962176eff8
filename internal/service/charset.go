package service

import (
	"fmt"

	"payment-collect-visa/internal/debliqc"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

var charsets = map[string]encoding.Encoding{
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
}

// DecodePayload converts a return file to UTF-8. An empty charset means the
// payload already is UTF-8.
func DecodePayload(payload []byte, charset string) ([]byte, error) {
	name := lower(charset)
	if name == "" || name == "utf-8" || name == "utf8" {
		return payload, nil
	}
	enc, ok := charsets[name]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported return charset %q", debliqc.ErrConfiguration, charset)
	}
	out, err := enc.NewDecoder().Bytes(payload)
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", name, err)
	}
	return out, nil
}
