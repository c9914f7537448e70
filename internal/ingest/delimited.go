package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// delimitedReader handles CSV, TSV and tab-separated .txt files with a header row.
type delimitedReader struct{}

func (delimitedReader) CanRead(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".txt")
}

func (delimitedReader) Read(path string, opt Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Dataset{Name: filepath.Base(path)}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	ds := &Dataset{Name: filepath.Base(path)}
	fields := headerFields(header)
	ds.Fields = fields
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", ds.Rows+1, err)
		}
		ds.Rows++
		if opt.MaxRows > 0 && len(ds.Records) >= opt.MaxRows {
			continue
		}
		ds.Records = append(ds.Records, rowRecord(fields, rec, opt))
	}
	return ds, nil
}

func sniffDelimiter(path string) rune {
	name := strings.ToLower(path)
	if strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".txt") {
		return '\t'
	}
	return ','
}

// headerFields trims names and makes blanks and duplicates addressable.
func headerFields(header []string) []string {
	fields := make([]string, len(header))
	used := map[string]int{}
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if n := used[name]; n > 0 {
			used[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n+1)
		} else {
			used[name] = 1
		}
		fields[i] = name
	}
	return fields
}

// rowRecord converts cells to values; short rows are padded with missing values.
func rowRecord(fields, row []string, opt Options) map[string]any {
	rec := make(map[string]any, len(fields))
	for j, name := range fields {
		if j >= len(row) {
			rec[name] = nil
			continue
		}
		rec[name] = cellValue(row[j], opt)
	}
	return rec
}
