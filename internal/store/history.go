package store

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"StockScan/internal/model"
)

// historyColumns is the per-bar layout shared by the per-ticker history
// artifact and the combined latest extract.
var historyColumns = []string{
	"Date", "Open", "High", "Low", "Close", "Volume",
	"MAShort", "MAMid", "MALong",
	"MACD", "MACDSignal", "MACDHist",
	"RSIShort", "RSILong",
	"RCIShort", "RCILong",
	"BBUpper", "BBMiddle", "BBLower", "BBWidth", "BBPercentB",
	"Tenkan", "Kijun", "SenkouA", "SenkouB", "Chikou",
	"CloudStatus",
	"MACDRSI", "MACDRCI", "BBMACD",
	"Sanyaku",
}

func historyCells(r *model.SignalRow) []string {
	return []string{
		r.Date.Format("2006-01-02"),
		FormatRaw(r.Open), FormatRaw(r.High), FormatRaw(r.Low), FormatRaw(r.Close),
		FormatVolume(r.Volume),
		FormatRaw(r.MAShort), FormatRaw(r.MAMid), FormatRaw(r.MALong),
		FormatRaw(r.MACD), FormatRaw(r.MACDSignal), FormatRaw(r.MACDHist),
		FormatRaw(r.RSIShort), FormatRaw(r.RSILong),
		FormatRaw(r.RCIShort), FormatRaw(r.RCILong),
		FormatRaw(r.BBUpper), FormatRaw(r.BBMiddle), FormatRaw(r.BBLower),
		FormatRaw(r.BBWidth), FormatRaw(r.BBPercentB),
		FormatRaw(r.Tenkan), FormatRaw(r.Kijun),
		FormatRaw(r.SenkouA), FormatRaw(r.SenkouB), FormatRaw(r.Chikou),
		r.CloudStatus(),
		string(r.MACDRSI), string(r.MACDRCI), string(r.BBMACD),
		r.SanyakuStatus(),
	}
}

// WriteHistory writes the full classified history for one instrument.
func WriteHistory(dir string, s *model.InstrumentSeries) error {
	rows := make([][]string, 0, len(s.Rows))
	for i := range s.Rows {
		rows = append(rows, historyCells(&s.Rows[i]))
	}
	return WriteCSV(filepath.Join(dir, s.Ticker+"_signal.csv"), historyColumns, rows)
}

// WriteLatest writes the combined latest-bar extract across the universe,
// with roster metadata leading each row.
func WriteLatest(path string, universe []*model.InstrumentSeries) error {
	columns := append([]string{"Ticker", "Company", "Theme"}, historyColumns...)
	rows := make([][]string, 0, len(universe))
	for _, s := range universe {
		r := s.Latest()
		if r == nil {
			continue
		}
		rows = append(rows, append([]string{s.Ticker, s.Company, s.Theme}, historyCells(r)...))
	}
	return WriteCSV(path, columns, rows)
}

// SignalState is the per-ticker slice of the latest extract used for
// run-over-run change detection.
type SignalState struct {
	MACDRSI string
	Sanyaku string
}

// LoadSignalStates reads the previous latest extract. A missing file
// yields an empty map: the first run has nothing to compare against.
func LoadSignalStates(path string) (map[string]SignalState, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return map[string]SignalState{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	records, err := readAllCSV(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}

	states := make(map[string]SignalState)
	if len(records) < 2 {
		return states, nil
	}
	tickerCol := columnIndex(records[0], "Ticker")
	signalCol := columnIndex(records[0], "MACDRSI")
	sanyakuCol := columnIndex(records[0], "Sanyaku")
	if tickerCol < 0 {
		return states, nil
	}
	for _, rec := range records[1:] {
		if tickerCol >= len(rec) || rec[tickerCol] == "" {
			continue
		}
		st := SignalState{}
		if signalCol >= 0 && signalCol < len(rec) {
			st.MACDRSI = rec[signalCol]
		}
		if sanyakuCol >= 0 && sanyakuCol < len(rec) {
			st.Sanyaku = rec[sanyakuCol]
		}
		states[rec[tickerCol]] = st
	}
	return states, nil
}
