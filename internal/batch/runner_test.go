package batch

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"StockScan/internal/config"
	"StockScan/internal/fetcher"
	"StockScan/internal/model"
	"StockScan/internal/recorder"
)

func testRunnerConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	roster := filepath.Join(dir, "roster.csv")
	content := "code,name,theme\n7203,Toyota,Auto\n6758,Sony,Electronics\n"
	if err := os.WriteFile(roster, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(filepath.Join(dir, "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	cfg.Data.Source = "mock"
	cfg.Data.RosterFile = roster
	cfg.Data.HistoryDays = 150
	cfg.Data.TickerWaitMS = 1
	cfg.Data.BatchWaitMS = 1
	cfg.Output.Dir = filepath.Join(dir, "result")
	cfg.Output.TechnicalDir = filepath.Join(dir, "result", "technical")
	cfg.Output.PreviousDir = filepath.Join(dir, "result", "previous")
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	return cfg
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

func TestRun_ProducesArtifacts(t *testing.T) {
	cfg := testRunnerConfig(t)
	runner := NewRunner(cfg, &fetcher.MockFetcher{}, recorder.NewNoopRecorder())

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	latest := readCSVFile(t, filepath.Join(cfg.Output.Dir, cfg.Output.LatestFile))
	if len(latest) != 3 {
		t.Fatalf("latest extract: expected header plus 2 rows, got %d", len(latest))
	}
	if latest[1][0] != "7203" || latest[2][0] != "6758" {
		t.Errorf("latest extract should carry both tickers, got %v, %v", latest[1][0], latest[2][0])
	}

	for _, ticker := range []string{"7203", "6758"} {
		history := readCSVFile(t, filepath.Join(cfg.Output.TechnicalDir, ticker+"_signal.csv"))
		if len(history) != cfg.Data.HistoryDays+1 {
			t.Errorf("%s history: expected %d rows, got %d", ticker, cfg.Data.HistoryDays+1, len(history))
		}
	}

	// every bucket artifact exists with at least a header
	for _, name := range []string{
		"macd_rsi_signal_result_buy", "strong_buying_trend",
		"push_mark", "range_breakout", "sanyaku_bullish", "signal_change",
	} {
		records := readCSVFile(t, filepath.Join(cfg.Output.Dir, name+".csv"))
		if len(records) < 1 {
			t.Errorf("%s: expected at least a header row", name)
		}
	}

	// the repeat-marked buckets get snapshotted for the next run
	for _, name := range []string{"range_breakout", "push_mark"} {
		if _, err := os.Stat(filepath.Join(cfg.Output.PreviousDir, name+".csv")); err != nil {
			t.Errorf("%s snapshot missing: %v", name, err)
		}
	}
}

func TestRun_SecondRunDetectsNoChanges(t *testing.T) {
	cfg := testRunnerConfig(t)
	runner := NewRunner(cfg, &fetcher.MockFetcher{}, recorder.NewNoopRecorder())

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	// identical data run to run leaves the change report empty
	changes := readCSVFile(t, filepath.Join(cfg.Output.Dir, "signal_change.csv"))
	if len(changes) != 1 {
		t.Errorf("expected header only in signal_change.csv, got %d rows", len(changes))
	}
}

func TestRun_SkipsShortHistory(t *testing.T) {
	cfg := testRunnerConfig(t)
	f := &fetcher.MockFetcher{
		Bars: map[string]model.PriceSeries{
			"7203": fetcher.GenerateMockBars(1000, 150),
			"6758": fetcher.GenerateMockBars(1000, 10), // below min_bars
		},
	}
	runner := NewRunner(cfg, f, recorder.NewNoopRecorder())

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	latest := readCSVFile(t, filepath.Join(cfg.Output.Dir, cfg.Output.LatestFile))
	if len(latest) != 2 {
		t.Fatalf("expected the short-history ticker skipped, got %d rows", len(latest))
	}
	if latest[1][0] != "7203" {
		t.Errorf("expected only 7203, got %q", latest[1][0])
	}
}

func TestRun_CancelledContext(t *testing.T) {
	cfg := testRunnerConfig(t)
	runner := NewRunner(cfg, &fetcher.MockFetcher{}, recorder.NewNoopRecorder())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := runner.Run(ctx); err == nil {
		t.Error("cancelled context should abort the run")
	}
}
