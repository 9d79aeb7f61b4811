package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tuannm99/kqlmagic/internal/resultset"
)

// CSVFile describes a CSV export written to disk.
type CSVFile struct {
	Path string // absolute path of the written file
	Rows int    // data rows, header excluded
}

func (f *CSVFile) String() string {
	return fmt.Sprintf("%d rows written to %s", f.Rows, f.Path)
}

// WriteCSV writes a header line followed by one line per row.
func WriteCSV(w io.Writer, rs *resultset.ResultSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rs.Columns()); err != nil {
		return err
	}

	rec := make([]string, len(rs.Columns()))
	for _, row := range rs.All() {
		for i, v := range row {
			rec[i] = cellText(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// CSV returns the CSV rendering as a string.
func CSV(rs *resultset.ResultSet) (string, error) {
	var b strings.Builder
	if err := WriteCSV(&b, rs); err != nil {
		return "", err
	}
	return b.String(), nil
}

// WriteCSVFile writes rs to path. The data goes to a temporary file in the
// same directory which is renamed over path only after a clean close, so a
// failed export leaves no partial file behind.
func WriteCSVFile(rs *resultset.ResultSet, path string) (_ *CSVFile, err error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("csv: resolve %q: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(abs), ".kqlmagic-*.csv.tmp")
	if err != nil {
		return nil, fmt.Errorf("csv: create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = tmp.Chmod(0o644); err != nil {
		return nil, fmt.Errorf("csv: chmod %q: %w", tmp.Name(), err)
	}
	if err = WriteCSV(tmp, rs); err != nil {
		return nil, fmt.Errorf("csv: write %q: %w", abs, err)
	}
	if err = tmp.Close(); err != nil {
		return nil, fmt.Errorf("csv: close %q: %w", abs, err)
	}
	if err = os.Rename(tmp.Name(), abs); err != nil {
		return nil, fmt.Errorf("csv: rename into %q: %w", abs, err)
	}

	return &CSVFile{Path: abs, Rows: rs.Len()}, nil
}
