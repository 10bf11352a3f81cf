package store

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"StockScan/internal/model"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1.234, "1.23"},
		{1.236, "1.24"},
		{-0.4567, "-0.46"},
		{100, "100"},
		{math.NaN(), ""},
		{math.Inf(1), ""},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%v): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1234, "1234"},
		{1234.5, "1234.5"},
		{1234.56, "1234.6"},
		{math.NaN(), ""},
	}
	for _, tt := range tests {
		if got := FormatPrice(tt.in); got != tt.want {
			t.Errorf("FormatPrice(%v): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestFormatVolume(t *testing.T) {
	if got := FormatVolume(1500000); got != "1500000" {
		t.Errorf("expected 1500000, got %q", got)
	}
	if got := FormatVolume(math.NaN()); got != "" {
		t.Errorf("NaN volume should render blank, got %q", got)
	}
}

func TestWriteCSVAndReadTickers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "bucket.csv")
	columns := []string{"Ticker", "Company", "Close"}
	rows := [][]string{
		{"7203", "Toyota", "2500"},
		{"6758", "*Sony", "13000"},
	}
	if err := WriteCSV(path, columns, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	tickers, err := ReadTickers(path)
	if err != nil {
		t.Fatalf("ReadTickers: %v", err)
	}
	if len(tickers) != 2 || !tickers["7203"] || !tickers["6758"] {
		t.Errorf("unexpected ticker set: %v", tickers)
	}
}

func TestReadTickers_MissingFile(t *testing.T) {
	tickers, err := ReadTickers(filepath.Join(t.TempDir(), "absent.csv"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if len(tickers) != 0 {
		t.Errorf("expected empty set, got %v", tickers)
	}
}

func TestWriteCSV_EmptyStillWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := WriteCSV(path, []string{"Ticker", "Company"}, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	records := readCSVFile(t, path)
	if len(records) != 1 || records[0][0] != "Ticker" {
		t.Errorf("expected a lone header row, got %v", records)
	}
}

func TestWriteHistoryAndLatest(t *testing.T) {
	dir := t.TempDir()
	s := &model.InstrumentSeries{
		Instrument: model.Instrument{Ticker: "7203", Company: "Toyota", Theme: "Auto"},
		Rows:       []model.SignalRow{sampleRow("2026-08-20"), sampleRow("2026-08-21")},
	}

	if err := WriteHistory(dir, s); err != nil {
		t.Fatalf("WriteHistory: %v", err)
	}
	records := readCSVFile(t, filepath.Join(dir, "7203_signal.csv"))
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	if records[1][0] != "2026-08-20" {
		t.Errorf("first data row should be the oldest bar, got %q", records[1][0])
	}

	latest := filepath.Join(dir, "latest_signal.csv")
	if err := WriteLatest(latest, []*model.InstrumentSeries{s}); err != nil {
		t.Fatalf("WriteLatest: %v", err)
	}
	records = readCSVFile(t, latest)
	if len(records) != 2 {
		t.Fatalf("expected header plus 1 row, got %d", len(records))
	}
	row := records[1]
	if row[0] != "7203" || row[1] != "Toyota" || row[2] != "Auto" {
		t.Errorf("roster metadata should lead the row, got %v", row[:3])
	}
	if row[3] != "2026-08-21" {
		t.Errorf("latest extract should carry the newest bar, got %q", row[3])
	}
}

func TestLoadSignalStates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest_signal.csv")
	err := WriteCSV(path,
		[]string{"Ticker", "Company", "MACDRSI", "Sanyaku"},
		[][]string{
			{"7203", "Toyota", "BUY", "BULLISH"},
			{"6758", "Sony", "", ""},
		})
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	states, err := LoadSignalStates(path)
	if err != nil {
		t.Fatalf("LoadSignalStates: %v", err)
	}
	if got := states["7203"]; got.MACDRSI != "BUY" || got.Sanyaku != "BULLISH" {
		t.Errorf("unexpected state for 7203: %+v", got)
	}
	if got := states["6758"]; got.MACDRSI != "" || got.Sanyaku != "" {
		t.Errorf("unexpected state for 6758: %+v", got)
	}
}

func TestLoadSignalStates_MissingFile(t *testing.T) {
	states, err := LoadSignalStates(filepath.Join(t.TempDir(), "absent.csv"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if len(states) != 0 {
		t.Errorf("expected empty map, got %v", states)
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.csv")
	dst := filepath.Join(dir, "prev", "dst.csv")
	if err := os.WriteFile(src, []byte("Ticker\n7203\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Ticker\n7203\n" {
		t.Errorf("copy content mismatch: %q", data)
	}
}

func sampleRow(date string) model.SignalRow {
	d, _ := time.Parse("2006-01-02", date)
	r := model.SignalRow{}
	r.Date = d
	r.Open, r.High, r.Low, r.Close = 100, 105, 95, 102
	r.Volume = 300000
	r.MACDRSI = model.SignalBuy
	return r
}

func readCSVFile(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return records
}
