// Package ingest loads tabular and record-oriented datasets from disk and
// extracts columns as summary items.
package ingest

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/listsum/internal/summary"
)

var (
	// ErrUnsupportedFormat indicates no reader handles the file extension.
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	// ErrUnknownField indicates a requested column is absent from every record.
	ErrUnknownField = errors.New("unknown field")
)

// ScalarField names the field that holds bare values in files whose rows are not objects.
const ScalarField = "value"

// Options controls how datasets are read.
type Options struct {
	// Delimiter for CSV. If 0, ',' for .csv and '\t' for .tsv/.txt.
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// NullTokens are cell texts (after trimming) read as missing values.
	NullTokens []string
	// ListSeparator splits a text cell into a sublist when non-empty.
	ListSeparator string
	// XLSX sheet selection; SheetIndex is 1-based and used when SheetName is empty.
	SheetName  string
	SheetIndex int
	// MaxRows limits records read; 0 means unlimited.
	MaxRows int
}

// DefaultNullTokens are the cell texts treated as missing by default.
var DefaultNullTokens = []string{"", "None", "null", "NULL", "NA", "N/A", "NaN", "nan"}

// DefaultOptions returns reasonable defaults for dataset ingestion.
func DefaultOptions() Options {
	return Options{
		NullTokens: append([]string(nil), DefaultNullTokens...),
		SheetIndex: 1,
	}
}

// Dataset is an in-memory set of records. Values are JSON-shaped:
// nil, float64/int, string, bool, []any or map[string]any.
type Dataset struct {
	Name     string
	Fields   []string
	Records  []map[string]any
	Rows     int // rows seen in the source, including those beyond MaxRows
	Warnings []string
}

// Reader reads one family of file formats.
type Reader interface {
	CanRead(filename string) bool
	Read(path string, opt Options) (*Dataset, error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

func init() {
	Register(delimitedReader{})
	Register(jsonReader{})
	Register(jsonlReader{})
	Register(yamlReader{})
	Register(xlsxReader{})
}

// Load selects a reader by file extension and reads the dataset.
func Load(path string, opt Options) (*Dataset, error) {
	for _, r := range registry {
		if !r.CanRead(path) {
			continue
		}
		ds, err := r.Read(path, opt)
		if err != nil {
			return nil, err
		}
		if ds.Name == "" {
			ds.Name = filepath.Base(path)
		}
		if opt.MaxRows > 0 && ds.Rows > len(ds.Records) {
			ds.Warnings = append(ds.Warnings, fmt.Sprintf("processed only %d/%d rows due to MaxRows", len(ds.Records), ds.Rows))
		}
		slog.Debug("loaded dataset", "path", path, "records", len(ds.Records), "fields", len(ds.Fields))
		return ds, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}

// Column extracts field from every record. Records without the field yield Missing.
// Field matching falls back to a case-insensitive comparison.
func (d *Dataset) Column(field string) ([]summary.Item, error) {
	key, ok := d.resolveField(field)
	if !ok {
		return nil, fmt.Errorf("%w %q in %s (available: %s)", ErrUnknownField, field, d.Name, strings.Join(d.Fields, ", "))
	}
	items := make([]summary.Item, len(d.Records))
	for i, rec := range d.Records {
		it, err := summary.FromAny(rec[key])
		if err != nil {
			return nil, fmt.Errorf("record %d, field %q: %w", i+1, key, err)
		}
		items[i] = it
	}
	return items, nil
}

func (d *Dataset) resolveField(field string) (string, bool) {
	name := strings.TrimSpace(field)
	for _, f := range d.Fields {
		if f == name {
			return f, true
		}
	}
	for _, f := range d.Fields {
		if strings.EqualFold(f, name) {
			return f, true
		}
	}
	return "", false
}

// addRecord appends rec, tracking first-seen field order.
func (d *Dataset) addRecord(rec map[string]any, seen map[string]struct{}) {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		if _, ok := seen[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		seen[k] = struct{}{}
		d.Fields = append(d.Fields, k)
	}
	d.Records = append(d.Records, rec)
}

// recordOf wraps non-object values so every row is a record.
func recordOf(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{ScalarField: v}
}
