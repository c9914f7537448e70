// Package summary builds deterministic textual descriptions of value sequences:
// shape, missingness and distribution, with value/count tables, for embedding
// into prompts and dataset reports.
//
// A sequence is classified once as all-missing, numeric, categorical or
// nested-list. Nested input is one level deep; its inner values are flattened
// and summarized with the same routine as a flat sequence.
package summary

// Summarize renders items with at most nExamples rows per frequency table.
// nExamples <= 0 selects DefaultNExamples.
func Summarize(items []Item, nExamples int) (string, error) {
	s, err := Analyze(items, Options{NExamples: nExamples})
	if err != nil {
		return "", err
	}
	return s.Text(), nil
}

// SummarizeValues converts decoded values with FromValues and summarizes them.
func SummarizeValues(values []any, nExamples int) (string, error) {
	items, err := FromValues(values)
	if err != nil {
		return "", err
	}
	return Summarize(items, nExamples)
}
