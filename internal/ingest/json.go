package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// jsonReader reads a .json file holding an array of records or scalars, or a single record.
type jsonReader struct{}

func (jsonReader) CanRead(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".json")
}

func (jsonReader) Read(path string, opt Options) (*Dataset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return datasetFromDocument(filepath.Base(path), doc, opt), nil
}

// jsonlReader reads newline-delimited JSON, one record or scalar per line.
type jsonlReader struct{}

func (jsonlReader) CanRead(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".jsonl") || strings.HasSuffix(name, ".ndjson")
}

func (jsonlReader) Read(path string, opt Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open jsonl: %w", err)
	}
	defer f.Close()

	ds := &Dataset{Name: filepath.Base(path)}
	seen := map[string]struct{}{}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		ds.Rows++
		if opt.MaxRows > 0 && len(ds.Records) >= opt.MaxRows {
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("parse jsonl line %d: %w", line, err)
		}
		ds.addRecord(recordOf(v), seen)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read jsonl: %w", err)
	}
	return ds, nil
}

// datasetFromDocument turns a decoded JSON/YAML document into records.
func datasetFromDocument(name string, doc any, opt Options) *Dataset {
	ds := &Dataset{Name: name}
	seen := map[string]struct{}{}
	rows, ok := doc.([]any)
	if !ok {
		rows = []any{doc}
	}
	for _, v := range rows {
		ds.Rows++
		if opt.MaxRows > 0 && len(ds.Records) >= opt.MaxRows {
			continue
		}
		ds.addRecord(recordOf(v), seen)
	}
	return ds
}
