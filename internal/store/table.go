package store

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// WriteCSV writes one artifact with a header row, creating parent
// directories as needed. An empty rows slice still writes the header so
// downstream consumers always find the file.
func WriteCSV(path string, columns []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "create dir for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		f.Close()
		return errors.Wrapf(err, "write header %s", path)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			f.Close()
			return errors.Wrapf(err, "write row %s", path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return errors.Wrapf(err, "flush %s", path)
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}

// ReadTickers returns the set of tickers in a previously written bucket
// artifact. A missing file is an empty set, not an error: first runs have
// no previous membership.
func ReadTickers(path string) (map[string]bool, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}

	tickers := make(map[string]bool)
	if len(records) < 2 {
		return tickers, nil
	}
	col := columnIndex(records[0], "Ticker")
	if col < 0 {
		col = 0
	}
	for _, rec := range records[1:] {
		if col < len(rec) && rec[col] != "" {
			tickers[rec[col]] = true
		}
	}
	return tickers, nil
}

// CopyFile persists an artifact copy (the previous-run bucket snapshot).
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "open %s", src)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.Wrapf(err, "create dir for %s", dst)
	}
	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrapf(err, "create %s", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Wrapf(err, "copy %s", dst)
	}
	return errors.Wrapf(out.Close(), "close %s", dst)
}

func readAllCSV(f io.Reader) ([][]string, error) {
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}
