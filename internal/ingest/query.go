package ingest

import (
	"fmt"

	"github.com/itchyny/gojq"

	"github.com/KaramelBytes/listsum/internal/summary"
)

// Query evaluates a jq expression against every record and keeps its first output.
// A record that produces no output (or null) yields Missing. An expression like
// `[.turns[].speaker]` turns each record into a sublist.
// Records are copied before evaluation since gojq normalizes its input in place,
// so a cached dataset can be queried concurrently.
func (d *Dataset) Query(expression string) ([]summary.Item, error) {
	q, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}
	code, err := gojq.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}
	items := make([]summary.Item, len(d.Records))
	for i, rec := range d.Records {
		iter := code.Run(cloneValue(rec))
		v, ok := iter.Next()
		if !ok {
			continue
		}
		if err, isErr := v.(error); isErr {
			return nil, fmt.Errorf("record %d: jq: %w", i+1, err)
		}
		it, err := summary.FromAny(v)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		items[i] = it
	}
	return items, nil
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
