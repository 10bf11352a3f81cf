package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *RunSummary) error                        { return nil }
func (n *NoopRecorder) RecordBucketHits(_ string, _ []BucketHit) error       { return nil }
func (n *NoopRecorder) RecordLatestSignals(_ string, _ []LatestSignal) error { return nil }
func (n *NoopRecorder) Close() error                                         { return nil }
