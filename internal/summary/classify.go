package summary

import "fmt"

// Category is the shape assigned to a whole sequence.
type Category int

const (
	AllMissing Category = iota
	Numeric
	Categorical
	Nested
)

func (c Category) String() string {
	switch c {
	case AllMissing:
		return "all-missing"
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	case Nested:
		return "nested-list"
	default:
		return "unknown"
	}
}

// MarshalText lets Category render as its name in JSON output.
func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// Classify inspects the non-missing items and returns the sequence category.
// A single list anywhere makes the sequence Nested; mixed scalars degrade to Categorical.
func Classify(items []Item) Category {
	var present, numbers int
	for _, it := range items {
		switch it.kind {
		case KindMissing:
			continue
		case KindList:
			return Nested
		case KindNumber:
			numbers++
		}
		present++
	}
	switch {
	case present == 0:
		return AllMissing
	case numbers == present:
		return Numeric
	default:
		return Categorical
	}
}

// validateDepth rejects lists nested inside lists.
func validateDepth(items []Item) error {
	for i, it := range items {
		if it.kind != KindList {
			continue
		}
		for j, inner := range it.list {
			if inner.kind == KindList {
				return fmt.Errorf("item %d, element %d: %w", i, j, ErrNestingTooDeep)
			}
		}
	}
	return nil
}
