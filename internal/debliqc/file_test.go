package debliqc

import (
	"bytes"
	"strings"
	"testing"

	"payment-collect-visa/internal/currency"
)

func testBatch(t *testing.T) Batch {
	t.Helper()
	h, err := BuildHeader("12345", testRunAt)
	if err != nil {
		t.Fatal(err)
	}
	var totals BatchTotals
	var details []Detail
	for i, inv := range []struct{ party, card, amount string }{
		{"1001", "4509953566233704", "100.00"},
		{"1002", "4509953566233705", "250.75"},
	} {
		d, amount, err := BuildDetail(testInvoice(int64(i+1), inv.party, inv.card, inv.amount), i, testExpiration, testRounder)
		if err != nil {
			t.Fatal(err)
		}
		if err := totals.Add(currency.FromCode("ARS"), amount, testRounder); err != nil {
			t.Fatal(err)
		}
		details = append(details, d)
	}
	f, err := BuildFooter(totals, "12345", testRunAt)
	if err != nil {
		t.Fatal(err)
	}
	return Batch{Header: h, Details: details, Footer: f}
}

func TestSerialize_FixedWidth(t *testing.T) {
	b := testBatch(t)
	out := string(Serialize(b, DefaultLayout, false))

	if !strings.HasSuffix(out, "\r\n") {
		t.Fatalf("every record must end with EOL")
	}
	lines := strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines; got %d", len(lines))
	}
	for i, l := range lines {
		if len(l) != RecordWidth {
			t.Errorf("line %d: expected width %d; got %d", i, RecordWidth, len(l))
		}
		if strings.Contains(l, ";") {
			t.Errorf("line %d: fixed-width output must not contain separators", i)
		}
	}

	wantTypes := []string{"0", "1", "1", "9"}
	for i, l := range lines {
		if l[:1] != wantTypes[i] {
			t.Errorf("line %d: expected record type %s; got %s", i, wantTypes[i], l[:1])
		}
	}
	if !strings.Contains(lines[3], "0000002000000000035075") {
		t.Fatalf("footer must carry count 2 and total 350.75: %q", lines[3])
	}
}

func TestSerialize_CSV(t *testing.T) {
	b := testBatch(t)
	out := string(Serialize(b, DefaultLayout, true))

	lines := strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n")
	if got := strings.Count(lines[0], ";"); got != len(b.Header.Fields())-1 {
		t.Fatalf("expected %d separators in header; got %d", len(b.Header.Fields())-1, got)
	}
	if !strings.HasPrefix(lines[1], "1;4509953566233704;   ;00000000;20240320;0005;") {
		t.Fatalf("unexpected csv detail %q", lines[1])
	}
}

func TestSerialize_DropsEmptyFields(t *testing.T) {
	b := testBatch(t)
	b.Header.FileStatus = ""

	out := string(Serialize(b, Layout{Separator: "|", EOL: "\n"}, true))
	header := strings.SplitN(out, "\n", 2)[0]
	if strings.Contains(header, "||") {
		t.Fatalf("empty field must be dropped, got %q", header)
	}
	if got := strings.Count(header, "|"); got != len(b.Header.Fields())-2 {
		t.Fatalf("expected %d separators; got %d", len(b.Header.Fields())-2, got)
	}
}

func TestSerialize_Deterministic(t *testing.T) {
	b := testBatch(t)
	for _, csv := range []bool{false, true} {
		first := Serialize(b, DefaultLayout, csv)
		second := Serialize(b, DefaultLayout, csv)
		if !bytes.Equal(first, second) {
			t.Fatalf("csv=%v: serialize is not deterministic", csv)
		}
	}
}
