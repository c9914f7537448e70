package summary

import (
	"fmt"
	"strings"
)

// DefaultLabelLimit caps LabelTable rows.
const DefaultLabelLimit = 500

// LabelTable renders a markdown table of label frequencies, most frequent first,
// ties in first-seen order. Missing labels are skipped. Lists contribute their
// elements, so multi-label columns count each label once per occurrence.
func LabelTable(items []Item, limit int) (string, error) {
	if err := validateDepth(items); err != nil {
		return "", err
	}
	if limit <= 0 {
		limit = DefaultLabelLimit
	}
	var labels []Item
	for _, it := range items {
		switch it.kind {
		case KindMissing:
		case KindList:
			for _, inner := range it.list {
				if inner.kind != KindMissing {
					labels = append(labels, inner)
				}
			}
		default:
			labels = append(labels, it)
		}
	}
	rows, _ := frequencies(labels)
	if len(rows) > limit {
		rows = rows[:limit]
	}
	var b strings.Builder
	b.WriteString("| Label | Count |\n|---|---|\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %d |\n", r.Value, r.Count)
	}
	return b.String(), nil
}
