package clients

import (
	"context"
	"strings"
	"testing"
)

func TestContentType(t *testing.T) {
	tests := map[string]string{
		"DEBLIQC.txt":                "text/plain; charset=utf-8",
		"DEBLIQC.xlsx":               "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"visa-return-2024-04-02":     "application/octet-stream",
		"visa/2024/REMITO.txt":    "text/plain; charset=utf-8",
		"visa-return-2024-04-02.csv": "text/plain; charset=utf-8",
	}
	for name, want := range tests {
		if got := ContentType(name); got != want {
			t.Errorf("%s: expected %s; got %s", name, want, got)
		}
	}
}

func TestS3Client_NilClient(t *testing.T) {
	var c *S3Client
	if _, err := c.Save(context.Background(), "a.txt", nil); err == nil || !strings.Contains(err.Error(), "nil") {
		t.Fatalf("expected nil client error; got %v", err)
	}
	if _, err := c.URL(context.Background(), "a.txt"); err == nil {
		t.Fatalf("expected nil client error")
	}
}
