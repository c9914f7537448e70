package summary

import (
	"fmt"
	"strconv"
	"strings"
)

// Text renders the summary as the fixed prose-and-table block embedded into prompts.
func (s *Summary) Text() string {
	var b strings.Builder
	if s.Category == AllMissing {
		fmt.Fprintf(&b, "The list contains %d %s, all of which are None values.", s.Total, plural(s.Total, "item", "items"))
		return b.String()
	}
	fmt.Fprintf(&b, "The list contains %d %s, including %d None values.", s.Total, plural(s.Total, "item", "items"), s.Missing)
	switch s.Category {
	case Numeric, Categorical:
		writeValues(&b, s.Values, s.NExamples)
	case Nested:
		writeLists(&b, s.Lists, s.NExamples)
	}
	return b.String()
}

// String is Text, so a Summary prints naturally with fmt.
func (s *Summary) String() string { return s.Text() }

func writeLists(b *strings.Builder, ls *ListSummary, n int) {
	if ls == nil {
		return
	}
	fmt.Fprintf(b, "\nIt contains %d lists with the following size statistics:", ls.Lists)
	fmt.Fprintf(b, "\nAverage size: %s", formatFixed(ls.AvgSize))
	fmt.Fprintf(b, "\nMinimum size: %d", ls.MinSize)
	fmt.Fprintf(b, "\nMaximum size: %d", ls.MaxSize)

	in := &ls.Inner
	word := plural(in.Total, "value", "values")
	if in.Category == AllMissing {
		fmt.Fprintf(b, "\nAcross all lists there are %d %s, all of which are None values.", in.Total, word)
	} else {
		fmt.Fprintf(b, "\nAcross all lists there are %d %s, including %d None values.", in.Total, word, in.Missing)
	}
	writeValues(b, in, n)
}

func writeValues(b *strings.Builder, vs *ValueSummary, n int) {
	if vs == nil {
		return
	}
	switch vs.Category {
	case Numeric:
		if st := vs.Numeric; st != nil {
			fmt.Fprintf(b, "\nAmong the %d numeric %s, the minimum is %s, the maximum is %s, the mean is %s, with a median of %s",
				st.Count, plural(st.Count, "value", "values"),
				formatFixed(st.Min), formatFixed(st.Max), formatFixed(st.Mean), formatFixed(st.Median))
			if st.HasStd {
				fmt.Fprintf(b, " and a standard deviation of %s", formatFixed(st.Std))
			}
			b.WriteString(".")
		}
	case Categorical:
		fmt.Fprintf(b, "\nThere are %d non-None values with %d unique values.", vs.Present, vs.Unique)
	}
	if len(vs.Top) > 0 {
		writeTable(b, vs.Top, n)
	}
}

func writeTable(b *strings.Builder, rows []ValueCount, n int) {
	fmt.Fprintf(b, "\n\nValue Counts (Top %d):\n", n)
	b.WriteString("| Value | Count |\n")
	b.WriteString("|-------|-------|")
	for _, r := range rows {
		fmt.Fprintf(b, "\n| %s | %d |", r.Value, r.Count)
	}
}

// formatFixed renders x with exactly two decimals. strconv rounds the exact
// binary value, so ties that are exact in binary round to even.
func formatFixed(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
