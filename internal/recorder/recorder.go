package recorder

import "time"

// RunSummary is one batch run's accounting.
type RunSummary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Universe   int
	Processed  int
	Skipped    int
}

// BucketHit is one instrument admitted to one extraction bucket.
type BucketHit struct {
	Bucket  string
	Ticker  string
	Company string
}

// LatestSignal is the classified latest bar for one instrument.
type LatestSignal struct {
	Ticker  string
	Close   float64
	MACDRSI string
	MACDRCI string
	BBMACD  string
}

// Recorder persists run history for later inspection.
type Recorder interface {
	RecordRun(run *RunSummary) error
	RecordBucketHits(runID string, hits []BucketHit) error
	RecordLatestSignals(runID string, signals []LatestSignal) error
	Close() error
}
