package batch

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"StockScan/internal/config"
	"StockScan/internal/fetcher"
	"StockScan/internal/indicator"
	"StockScan/internal/model"
	"StockScan/internal/recorder"
	"StockScan/internal/roster"
	"StockScan/internal/screen"
	"StockScan/internal/signal"
	"StockScan/internal/store"
)

// repeatMarked lists the buckets whose hits carry the consecutive-run
// marker; their outputs are also snapshotted for the next run's diff.
var repeatMarked = map[string]bool{
	"range_breakout": true,
	"push_mark":      true,
}

// Runner executes one full screening batch: roster, per-instrument
// fetch/compute/classify, cross-sectional extraction, artifacts, run record.
type Runner struct {
	cfg        *config.Config
	fetcher    fetcher.Fetcher
	engine     *indicator.Engine
	classifier *signal.Classifier
	screener   *screen.Screener
	recorder   recorder.Recorder
}

func NewRunner(cfg *config.Config, f fetcher.Fetcher, rec recorder.Recorder) *Runner {
	return &Runner{
		cfg:        cfg,
		fetcher:    f,
		engine:     indicator.NewEngine(cfg.Indicator),
		classifier: signal.NewClassifier(cfg.Rules),
		screener:   screen.NewScreener(cfg.Screen),
		recorder:   rec,
	}
}

// Run processes the whole universe sequentially. A single instrument's
// failure is logged and skipped; only an unusable roster or an artifact
// write failure aborts the run.
func (r *Runner) Run(ctx context.Context) error {
	started := time.Now()
	runID := uuid.NewString()

	instruments, err := roster.Load(r.cfg.Data.RosterFile)
	if err != nil {
		return err
	}
	log.Printf("[INFO] run %s: %d instruments from %s", runID, len(instruments), r.cfg.Data.RosterFile)

	latestPath := filepath.Join(r.cfg.Output.Dir, r.cfg.Output.LatestFile)
	prevStates, err := store.LoadSignalStates(latestPath)
	if err != nil {
		log.Printf("[WARN] load previous latest extract: %v", err)
		prevStates = map[string]store.SignalState{}
	}

	universe := make([]*model.InstrumentSeries, 0, len(instruments))
	skipped := 0
	for i, inst := range instruments {
		if err := ctx.Err(); err != nil {
			return err
		}
		series, err := r.process(inst)
		if err != nil {
			log.Printf("[WARN] skip %s: %v", inst.Ticker, err)
			skipped++
		} else {
			universe = append(universe, series)
		}

		if i == len(instruments)-1 {
			break
		}
		wait := time.Duration(r.cfg.Data.TickerWaitMS) * time.Millisecond
		if (i+1)%r.cfg.Data.BatchSize == 0 {
			wait = time.Duration(r.cfg.Data.BatchWaitMS) * time.Millisecond
			log.Printf("[INFO] batch of %d done, waiting %v", r.cfg.Data.BatchSize, wait)
		}
		if err := sleepCtx(ctx, wait); err != nil {
			return err
		}
	}

	if err := store.WriteLatest(latestPath, universe); err != nil {
		return err
	}
	if err := r.writeSignalChanges(prevStates, universe); err != nil {
		log.Printf("[ERROR] write signal changes: %v", err)
	}

	buckets := r.screener.Run(universe)
	for i := range buckets {
		b := &buckets[i]
		if repeatMarked[b.Name] {
			prev, err := store.ReadTickers(r.previousPath(b.Name))
			if err != nil {
				log.Printf("[WARN] previous membership for %s: %v", b.Name, err)
			} else {
				b.MarkRepeats(prev)
			}
		}
		path := r.bucketPath(b.Name)
		if err := store.WriteCSV(path, b.Columns, b.Rows()); err != nil {
			return err
		}
		if repeatMarked[b.Name] {
			if err := store.CopyFile(path, r.previousPath(b.Name)); err != nil {
				log.Printf("[ERROR] snapshot %s for next run: %v", b.Name, err)
			}
		}
		if len(b.Hits) > 0 {
			log.Printf("[INFO] bucket %s: %d hits", b.Name, len(b.Hits))
		}
	}

	r.record(runID, started, len(instruments), skipped, buckets, universe)
	log.Printf("[INFO] run %s finished: processed=%d skipped=%d elapsed=%v",
		runID, len(universe), skipped, time.Since(started).Round(time.Second))
	return nil
}

func (r *Runner) process(inst model.Instrument) (*model.InstrumentSeries, error) {
	bars, err := r.fetcher.FetchDailyBars(inst.Ticker, r.cfg.Data.HistoryDays)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if len(bars) < r.cfg.Data.MinBars {
		return nil, fmt.Errorf("history too short: %d bars, need %d", len(bars), r.cfg.Data.MinBars)
	}

	rows := r.engine.Compute(bars)
	series := &model.InstrumentSeries{
		Instrument: inst,
		Rows:       r.classifier.Classify(rows),
	}
	if err := store.WriteHistory(r.cfg.Output.TechnicalDir, series); err != nil {
		return nil, fmt.Errorf("write history: %w", err)
	}
	return series, nil
}

// writeSignalChanges diffs the previous run's latest extract against the
// current universe and lists instruments whose MACD+RSI signal or
// three-phase state changed.
func (r *Runner) writeSignalChanges(prev map[string]store.SignalState, universe []*model.InstrumentSeries) error {
	columns := []string{"Ticker", "Company", "PrevMACDRSI", "CurrMACDRSI", "PrevSanyaku", "CurrSanyaku"}
	rows := make([][]string, 0)
	for _, s := range universe {
		cur := s.Latest()
		if cur == nil {
			continue
		}
		p, ok := prev[s.Ticker]
		if !ok {
			continue
		}
		currSignal := string(cur.MACDRSI)
		currSanyaku := cur.SanyakuStatus()
		if p.MACDRSI == currSignal && p.Sanyaku == currSanyaku {
			continue
		}
		rows = append(rows, []string{s.Ticker, s.Company, p.MACDRSI, currSignal, p.Sanyaku, currSanyaku})
	}
	return store.WriteCSV(filepath.Join(r.cfg.Output.Dir, "signal_change.csv"), columns, rows)
}

func (r *Runner) record(runID string, started time.Time, total, skipped int, buckets []screen.Bucket, universe []*model.InstrumentSeries) {
	if err := r.recorder.RecordRun(&recorder.RunSummary{
		RunID:      runID,
		StartedAt:  started,
		FinishedAt: time.Now(),
		Universe:   total,
		Processed:  len(universe),
		Skipped:    skipped,
	}); err != nil {
		log.Printf("[ERROR] record run: %v", err)
	}

	var hits []recorder.BucketHit
	for _, b := range buckets {
		for _, h := range b.Hits {
			company := ""
			if len(h.Cells) > 1 {
				company = h.Cells[1]
			}
			hits = append(hits, recorder.BucketHit{Bucket: b.Name, Ticker: h.Ticker, Company: company})
		}
	}
	if err := r.recorder.RecordBucketHits(runID, hits); err != nil {
		log.Printf("[ERROR] record bucket hits: %v", err)
	}

	signals := make([]recorder.LatestSignal, 0, len(universe))
	for _, s := range universe {
		cur := s.Latest()
		if cur == nil {
			continue
		}
		signals = append(signals, recorder.LatestSignal{
			Ticker:  s.Ticker,
			Close:   cur.Close,
			MACDRSI: string(cur.MACDRSI),
			MACDRCI: string(cur.MACDRCI),
			BBMACD:  string(cur.BBMACD),
		})
	}
	if err := r.recorder.RecordLatestSignals(runID, signals); err != nil {
		log.Printf("[ERROR] record latest signals: %v", err)
	}
}

func (r *Runner) bucketPath(name string) string {
	return filepath.Join(r.cfg.Output.Dir, name+".csv")
}

func (r *Runner) previousPath(name string) string {
	return filepath.Join(r.cfg.Output.PreviousDir, name+".csv")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
