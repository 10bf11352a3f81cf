package roster

import (
	"os"
	"path/filepath"
	"testing"
)

func writeRoster(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_NamedColumns(t *testing.T) {
	path := writeRoster(t, "code,name,theme\n7203,Toyota,Auto\n6758,Sony,Electronics\n")
	instruments, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(instruments) != 2 {
		t.Fatalf("expected 2 instruments, got %d", len(instruments))
	}
	first := instruments[0]
	if first.Ticker != "7203" || first.Company != "Toyota" || first.Theme != "Auto" {
		t.Errorf("unexpected first instrument: %+v", first)
	}
}

func TestLoad_PositionalFallback(t *testing.T) {
	path := writeRoster(t, "col_a,col_b,col_c\n7203,Toyota,Auto\n")
	instruments, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if instruments[0].Company != "Toyota" || instruments[0].Theme != "Auto" {
		t.Errorf("fallback should map the first three columns, got %+v", instruments[0])
	}
}

func TestLoad_ZeroPadsNumericTickers(t *testing.T) {
	path := writeRoster(t, "code,name\n998,Small Cap\nAAPL,Apple\n")
	instruments, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if instruments[0].Ticker != "0998" {
		t.Errorf("numeric code should be padded to 4, got %q", instruments[0].Ticker)
	}
	if instruments[1].Ticker != "AAPL" {
		t.Errorf("alphabetic ticker should pass through, got %q", instruments[1].Ticker)
	}
}

func TestLoad_DeduplicatesAndSkipsBlanks(t *testing.T) {
	path := writeRoster(t, "code,name\n7203,Toyota\n7203,Toyota Again\n,Blank\n6758,Sony\n")
	instruments, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(instruments) != 2 {
		t.Fatalf("expected duplicates and blanks dropped, got %d rows", len(instruments))
	}
	if instruments[0].Company != "Toyota" {
		t.Errorf("first occurrence should win, got %q", instruments[0].Company)
	}
}

func TestLoad_EmptyRoster(t *testing.T) {
	path := writeRoster(t, "code,name\n")
	if _, err := Load(path); err == nil {
		t.Error("header-only roster should be an error")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Error("missing roster should be an error")
	}
}
