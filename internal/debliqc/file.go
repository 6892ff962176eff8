package debliqc

import (
	"bytes"
	"strings"
)

const FileName = "DEBLIQC.txt"

// Layout controls how records are joined in the output file.
type Layout struct {
	Separator string
	EOL       string
}

var DefaultLayout = Layout{Separator: ";", EOL: "\r\n"}

// Batch is a complete collection file: one header, the details in batch order and one footer.
type Batch struct {
	Header  Header
	Details []Detail
	Footer  Footer
}

func (b Batch) Records() []Record {
	out := make([]Record, 0, len(b.Details)+2)
	out = append(out, b.Header)
	for _, d := range b.Details {
		out = append(out, d)
	}
	return append(out, b.Footer)
}

// Serialize renders the batch. In fixed-width mode fields are concatenated,
// in csv mode they are joined with the layout separator. Empty fields are
// dropped in both modes.
func Serialize(b Batch, l Layout, csvMode bool) []byte {
	if l.EOL == "" {
		l.EOL = DefaultLayout.EOL
	}
	sep := ""
	if csvMode {
		sep = l.Separator
	}

	var buf bytes.Buffer
	for _, rec := range b.Records() {
		buf.WriteString(recordLine(rec, sep))
		buf.WriteString(l.EOL)
	}
	return buf.Bytes()
}

func recordLine(rec Record, sep string) string {
	fields := rec.Fields()
	kept := fields[:0:0]
	for _, f := range fields {
		if f != "" {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, sep)
}
