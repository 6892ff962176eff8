package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("COLLECT_EOL", "")
	t.Setenv("STORAGE_DRIVER", "")

	cfg := Load()
	if cfg.Collect.EOL != "\r\n" {
		t.Fatalf("expected CRLF default; got %q", cfg.Collect.EOL)
	}
	if cfg.Collect.Separator != ";" {
		t.Fatalf("expected ; separator; got %q", cfg.Collect.Separator)
	}
	if cfg.Storage.Driver != "local" {
		t.Fatalf("expected local storage; got %q", cfg.Storage.Driver)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("COLLECT_EOL", `\n`)
	t.Setenv("COLLECT_COMPANY_ID", "7")
	t.Setenv("COLLECT_RETURN_CHARSET", "latin1")
	t.Setenv("S3_USE_SSL", "true")

	cfg := Load()
	if cfg.Collect.EOL != "\n" {
		t.Fatalf("expected LF; got %q", cfg.Collect.EOL)
	}
	if cfg.Collect.CompanyID != 7 {
		t.Fatalf("expected company 7; got %d", cfg.Collect.CompanyID)
	}
	if cfg.Collect.ReturnCharset != "latin1" {
		t.Fatalf("expected latin1; got %q", cfg.Collect.ReturnCharset)
	}
	if !cfg.S3.UseSSL {
		t.Fatalf("expected ssl enabled")
	}
}
