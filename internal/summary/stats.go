package summary

import (
	"math"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DefaultNExamples bounds frequency tables when the caller does not.
const DefaultNExamples = 10

const noneKey = "None"

// Options controls summarization.
type Options struct {
	// NExamples limits rows in every frequency table; <= 0 means DefaultNExamples.
	NExamples int
}

// DefaultOptions returns the defaults used by Summarize.
func DefaultOptions() Options {
	return Options{NExamples: DefaultNExamples}
}

// Summary is the structured result of one summarization call.
type Summary struct {
	Category  Category      `json:"category"`
	Total     int           `json:"total"`
	Missing   int           `json:"missing"`
	NExamples int           `json:"n_examples"`
	Values    *ValueSummary `json:"values,omitempty"`
	Lists     *ListSummary  `json:"lists,omitempty"`
}

// ValueSummary describes a flat sequence of scalars: the top-level sequence
// for numeric and categorical input, or the flattened inner values of nested input.
type ValueSummary struct {
	Category Category      `json:"category"`
	Total    int           `json:"total"`
	Missing  int           `json:"missing"`
	Present  int           `json:"present"`
	Unique   int           `json:"unique"`
	Numeric  *NumericStats `json:"numeric,omitempty"`
	Top      []ValueCount  `json:"top,omitempty"`
}

// NumericStats holds aggregate statistics over the non-missing numbers.
// Std is the population standard deviation and is only set when HasStd.
type NumericStats struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	HasStd bool    `json:"has_std"`
}

// ListSummary describes the inner lists of a nested sequence.
type ListSummary struct {
	Lists   int          `json:"lists"`
	AvgSize float64      `json:"avg_size"`
	MinSize int          `json:"min_size"`
	MaxSize int          `json:"max_size"`
	Inner   ValueSummary `json:"inner"`
}

// ValueCount is one row of a frequency table.
type ValueCount struct {
	Value  string `json:"value"`
	Count  int    `json:"count"`
	IsNone bool   `json:"is_none,omitempty"`
}

// Analyze classifies items and computes the statistics for their category.
// It fails only when a list contains another list.
func Analyze(items []Item, opt Options) (*Summary, error) {
	if err := validateDepth(items); err != nil {
		return nil, err
	}
	n := opt.NExamples
	if n <= 0 {
		n = DefaultNExamples
	}
	s := &Summary{
		Category:  Classify(items),
		Total:     len(items),
		NExamples: n,
	}
	for _, it := range items {
		if it.kind == KindMissing {
			s.Missing++
		}
	}
	switch s.Category {
	case Numeric, Categorical:
		vs := summarizeValues(items, n)
		s.Values = &vs
	case Nested:
		ls := summarizeLists(items, n)
		s.Lists = &ls
	}
	return s, nil
}

// summarizeValues is shared by the top level and the flattened inner level of nested input.
func summarizeValues(items []Item, n int) ValueSummary {
	vs := ValueSummary{Category: Classify(items), Total: len(items)}
	var nums []float64
	for _, it := range items {
		switch it.kind {
		case KindMissing:
			vs.Missing++
		case KindNumber:
			nums = append(nums, it.num)
		}
	}
	vs.Present = vs.Total - vs.Missing
	if vs.Category == Numeric {
		vs.Numeric = numericStats(nums)
	}
	rows, unique := frequencies(items)
	vs.Unique = unique
	if len(rows) > n {
		rows = rows[:n]
	}
	vs.Top = rows
	return vs
}

func summarizeLists(items []Item, n int) ListSummary {
	var (
		ls    ListSummary
		sum   int
		inner []Item
	)
	ls.MinSize = math.MaxInt
	for _, it := range items {
		if it.kind != KindList {
			continue
		}
		size := len(it.list)
		ls.Lists++
		sum += size
		if size < ls.MinSize {
			ls.MinSize = size
		}
		if size > ls.MaxSize {
			ls.MaxSize = size
		}
		inner = append(inner, it.list...)
	}
	if ls.Lists == 0 {
		ls.MinSize = 0
	} else {
		ls.AvgSize = float64(sum) / float64(ls.Lists)
	}
	ls.Inner = summarizeValues(inner, n)
	return ls
}

func numericStats(nums []float64) *NumericStats {
	if len(nums) == 0 {
		return nil
	}
	st := &NumericStats{Count: len(nums), Min: math.Inf(1), Max: math.Inf(-1)}
	for _, x := range nums {
		if x < st.Min {
			st.Min = x
		}
		if x > st.Max {
			st.Max = x
		}
	}
	st.Mean = compensatedSum(nums) / float64(len(nums))
	st.Median = median(nums)
	if len(nums) >= 2 {
		dev := make([]float64, len(nums))
		for i, x := range nums {
			d := x - st.Mean
			dev[i] = d * d
		}
		st.Std = math.Sqrt(compensatedSum(dev) / float64(len(nums)))
		st.HasStd = true
	}
	return st
}

// compensatedSum is Neumaier's summation; naive accumulation drifts enough on
// large values to flip the second decimal.
func compensatedSum(vals []float64) float64 {
	var sum, c float64
	for _, x := range vals {
		t := sum + x
		if math.Abs(sum) >= math.Abs(x) {
			c += (sum - t) + x
		} else {
			c += (x - t) + sum
		}
		sum = t
	}
	return sum + c
}

func median(vals []float64) float64 {
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	mid := len(cp) / 2
	if len(cp)%2 == 1 {
		return cp[mid]
	}
	return (cp[mid-1] + cp[mid]) / 2
}

type freqKey struct {
	none  bool
	value string
}

// frequencies counts rendered keys in first-seen order and ranks them by count.
// The second result is the number of distinct non-missing keys.
func frequencies(items []Item) ([]ValueCount, int) {
	counts := orderedmap.New[freqKey, int]()
	unique := 0
	for _, it := range items {
		k := freqKey{none: it.kind == KindMissing}
		if !k.none {
			k.value = it.Key()
		}
		c, seen := counts.Get(k)
		if !seen && !k.none {
			unique++
		}
		counts.Set(k, c+1)
	}
	rows := make([]ValueCount, 0, counts.Len())
	for p := counts.Oldest(); p != nil; p = p.Next() {
		v := p.Key.value
		if p.Key.none {
			v = noneKey
		}
		rows = append(rows, ValueCount{Value: v, Count: p.Value, IsNone: p.Key.none})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })
	return rows, unique
}
