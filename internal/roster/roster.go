package roster

import (
	"encoding/csv"
	"os"
	"strings"

	"github.com/pkg/errors"

	"StockScan/internal/model"
)

// Load reads the instrument roster CSV. The file must have a header row;
// ticker/code, company/name and theme columns are located by name, falling
// back to the first three columns. An empty roster is an error: the batch
// cannot run against nothing.
func Load(path string) ([]model.Instrument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open roster %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "parse roster %s", path)
	}
	if len(records) == 0 {
		return nil, errors.Errorf("roster %s is empty", path)
	}

	tickerCol, companyCol, themeCol := locateColumns(records[0])

	instruments := make([]model.Instrument, 0, len(records)-1)
	seen := make(map[string]bool)
	for _, rec := range records[1:] {
		if tickerCol >= len(rec) {
			continue
		}
		ticker := normalizeTicker(rec[tickerCol])
		if ticker == "" || seen[ticker] {
			continue
		}
		seen[ticker] = true

		inst := model.Instrument{Ticker: ticker}
		if companyCol >= 0 && companyCol < len(rec) {
			inst.Company = strings.TrimSpace(rec[companyCol])
		}
		if themeCol >= 0 && themeCol < len(rec) {
			inst.Theme = strings.TrimSpace(rec[themeCol])
		}
		instruments = append(instruments, inst)
	}

	if len(instruments) == 0 {
		return nil, errors.Errorf("roster %s has no instruments", path)
	}
	return instruments, nil
}

func locateColumns(header []string) (ticker, company, theme int) {
	ticker, company, theme = 0, -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "ticker", "code", "symbol":
			ticker = i
		case "company", "name":
			company = i
		case "theme", "sector", "tag":
			theme = i
		}
	}
	if company < 0 && len(header) > 1 && company != ticker {
		company = 1
	}
	if theme < 0 && len(header) > 2 {
		theme = 2
	}
	return ticker, company, theme
}

// normalizeTicker left-pads all-digit exchange codes to four characters,
// matching the roster convention for Tokyo listings.
func normalizeTicker(raw string) string {
	t := strings.TrimSpace(raw)
	if t == "" {
		return ""
	}
	digits := true
	for _, r := range t {
		if r < '0' || r > '9' {
			digits = false
			break
		}
	}
	if digits {
		for len(t) < 4 {
			t = "0" + t
		}
	}
	return t
}
