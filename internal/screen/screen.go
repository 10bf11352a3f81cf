package screen

import (
	"math"
	"sort"

	"StockScan/internal/config"
	"StockScan/internal/model"
	"StockScan/internal/store"
)

// Predicate is one condition over an instrument's classified series.
// A bucket is the conjunction of an ordered predicate list, so extra
// conditions stay additive and testable in isolation.
type Predicate func(s *model.InstrumentSeries) bool

// Hit is one instrument admitted to a bucket. Cells[1] is the display
// name and is the field repeat marking rewrites.
type Hit struct {
	Ticker string
	Cells  []string
	rank   float64
}

// Bucket is one named extraction result, ready to write as an artifact.
type Bucket struct {
	Name    string
	Columns []string
	Hits    []Hit
}

// Rows returns the formatted cells per hit.
func (b *Bucket) Rows() [][]string {
	rows := make([][]string, len(b.Hits))
	for i := range b.Hits {
		rows[i] = b.Hits[i].Cells
	}
	return rows
}

// Tickers returns the hit tickers in output order.
func (b *Bucket) Tickers() []string {
	out := make([]string, len(b.Hits))
	for i := range b.Hits {
		out[i] = b.Hits[i].Ticker
	}
	return out
}

// MarkRepeats prefixes the display name of hits whose ticker already
// appeared in the previous run's copy of the same bucket.
func (b *Bucket) MarkRepeats(previous map[string]bool) {
	for i := range b.Hits {
		if previous[b.Hits[i].Ticker] && len(b.Hits[i].Cells) > 1 {
			b.Hits[i].Cells[1] = "*" + b.Hits[i].Cells[1]
		}
	}
}

type bucketSpec struct {
	name    string
	columns []string
	preds   []Predicate
	project func(s *model.InstrumentSeries) Hit
	ranked  bool // sort by rank descending instead of ticker ascending
}

// Screener partitions the classified universe into the named buckets.
type Screener struct {
	cfg config.ScreenConfig
}

func NewScreener(cfg config.ScreenConfig) *Screener {
	return &Screener{cfg: cfg}
}

// Run evaluates every bucket against the universe snapshot. Buckets are
// independent; an instrument may appear in any number of them.
func (sc *Screener) Run(universe []*model.InstrumentSeries) []Bucket {
	specs := sc.specs()
	buckets := make([]Bucket, 0, len(specs))
	for _, spec := range specs {
		buckets = append(buckets, collect(universe, spec))
	}
	return buckets
}

func (sc *Screener) specs() []bucketSpec {
	return []bucketSpec{
		macdRSITable(model.SignalBuy),
		macdRSITable(model.SignalSell),
		macdRCITable(model.SignalBuy),
		macdRCITable(model.SignalSell),
		bbMACDTable(model.SignalBuy),
		bbMACDTable(model.SignalSell),
		dualTable(model.SignalBuy),
		dualTable(model.SignalSell),
		sc.strongTrend(true),
		sc.strongTrend(false),
		sc.pullback(),
		sc.breakout(),
		ichimokuCross("ichimoku_gc_above_cloud", true, true),
		ichimokuCross("ichimoku_gc_below_cloud", true, false),
		ichimokuCross("ichimoku_dc_above_cloud", false, true),
		ichimokuCross("ichimoku_dc_below_cloud", false, false),
		sanyakuOccurrence(true),
		sanyakuOccurrence(false),
	}
}

func collect(universe []*model.InstrumentSeries, spec bucketSpec) Bucket {
	b := Bucket{Name: spec.name, Columns: spec.columns}
	for _, s := range universe {
		admitted := true
		for _, p := range spec.preds {
			if !p(s) {
				admitted = false
				break
			}
		}
		if !admitted {
			continue
		}
		b.Hits = append(b.Hits, spec.project(s))
	}
	if spec.ranked {
		sort.SliceStable(b.Hits, func(i, j int) bool { return b.Hits[i].rank > b.Hits[j].rank })
	} else {
		sort.SliceStable(b.Hits, func(i, j int) bool { return b.Hits[i].Ticker < b.Hits[j].Ticker })
	}
	return b
}

func metaColumns(extra ...string) []string {
	return append([]string{"Ticker", "Company", "Theme", "Close"}, extra...)
}

func metaCells(s *model.InstrumentSeries, r *model.SignalRow, extra ...string) []string {
	return append([]string{s.Ticker, s.Company, s.Theme, store.FormatPrice(r.Close)}, extra...)
}

func hasLatest(s *model.InstrumentSeries) bool {
	return s.Latest() != nil
}

// wickFilter rejects latest bars whose close sits on the wrong side of
// the bar's own midpoint: long upper wicks for buys, long lower wicks
// for sells.
func wickFilter(side model.Signal) Predicate {
	return func(s *model.InstrumentSeries) bool {
		r := s.Latest()
		if r == nil {
			return false
		}
		if side == model.SignalBuy {
			return r.Close > r.Midpoint()
		}
		return r.Close < r.Midpoint()
	}
}

func anyNaN(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
