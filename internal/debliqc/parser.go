package debliqc

import (
	"bytes"
	"iter"
	"strings"
)

const (
	partyKeyStart   = 98
	partyKeyEnd     = 109
	resultCodeIndex = 129

	// MinReturnLineWidth is the shortest line that carries a result code.
	MinReturnLineWidth = resultCodeIndex + 1

	ResultAccepted = '0'
)

// ReturnLine is one detail line of the bank response file.
type ReturnLine struct {
	Raw        string
	PartyKey   string
	ResultCode string
	Accepted   bool
}

// ParseReturn yields the actionable detail lines of payload in file order.
// Header, footer, blank and short lines are skipped.
func ParseReturn(payload []byte) iter.Seq[ReturnLine] {
	return func(yield func(ReturnLine) bool) {
		for raw := range splitLines(payload) {
			line, ok := parseReturnLine(raw)
			if !ok {
				continue
			}
			if !yield(line) {
				return
			}
		}
	}
}

func parseReturnLine(raw string) (ReturnLine, bool) {
	chars := []rune(raw)
	if len(chars) < MinReturnLineWidth {
		return ReturnLine{}, false
	}
	if string(chars[0]) != RecordTypeDetail {
		return ReturnLine{}, false
	}
	code := chars[resultCodeIndex]
	return ReturnLine{
		Raw:        raw,
		PartyKey:   strings.TrimLeft(string(chars[partyKeyStart:partyKeyEnd]), "0"),
		ResultCode: string(code),
		Accepted:   code == ResultAccepted,
	}, true
}

// splitLines splits on \n, \r\n and bare \r.
func splitLines(payload []byte) iter.Seq[string] {
	return func(yield func(string) bool) {
		rest := payload
		for len(rest) > 0 {
			i := bytes.IndexAny(rest, "\r\n")
			if i < 0 {
				yield(string(rest))
				return
			}
			line := rest[:i]
			next := i + 1
			if rest[i] == '\r' && next < len(rest) && rest[next] == '\n' {
				next++
			}
			if !yield(string(line)) {
				return
			}
			rest = rest[next:]
		}
	}
}
