package summary

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Kind identifies which variant an Item holds.
type Kind uint8

const (
	KindMissing Kind = iota
	KindNumber
	KindText
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

var (
	// ErrNestingTooDeep is returned when a list contains another list.
	ErrNestingTooDeep = errors.New("nesting deeper than two levels is not supported")
	// ErrUnsupportedValue is returned when a value has no Item representation.
	ErrUnsupportedValue = errors.New("unsupported value type")
)

// Item is one element of a summarized sequence. The zero value is Missing.
type Item struct {
	kind Kind
	num  float64
	text string
	list []Item
}

// Missing returns the absence marker.
func Missing() Item { return Item{} }

// Number returns a numeric item.
func Number(f float64) Item { return Item{kind: KindNumber, num: f} }

// Text returns a string item.
func Text(s string) Item { return Item{kind: KindText, text: s} }

// List returns a sublist item. The slice is retained, not copied.
func List(items ...Item) Item {
	if items == nil {
		items = []Item{}
	}
	return Item{kind: KindList, list: items}
}

// Kind reports the variant held by it.
func (it Item) Kind() Kind { return it.kind }

// IsMissing reports whether it is the absence marker.
func (it Item) IsMissing() bool { return it.kind == KindMissing }

// Float returns the numeric value and true for Number items.
func (it Item) Float() (float64, bool) { return it.num, it.kind == KindNumber }

// Str returns the string value and true for Text items.
func (it Item) Str() (string, bool) { return it.text, it.kind == KindText }

// Items returns the elements and true for List items.
func (it Item) Items() ([]Item, bool) { return it.list, it.kind == KindList }

// Key renders a scalar item the way it appears in a frequency table.
func (it Item) Key() string {
	switch it.kind {
	case KindNumber:
		return formatFixed(it.num)
	case KindText:
		return it.text
	case KindList:
		return fmt.Sprintf("[list of %d]", len(it.list))
	default:
		return noneKey
	}
}

// FromAny converts a decoded JSON/YAML/CSV value into an Item.
func FromAny(v any) (Item, error) {
	return fromAny(v, 1)
}

// FromValues converts a slice of decoded values. The error names the offending index.
func FromValues(vs []any) ([]Item, error) {
	out := make([]Item, len(vs))
	for i, v := range vs {
		it, err := FromAny(v)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out[i] = it
	}
	return out, nil
}

func fromAny(v any, depth int) (Item, error) {
	switch x := v.(type) {
	case nil:
		return Missing(), nil
	case Item:
		if x.kind == KindList && depth > 1 {
			return Item{}, ErrNestingTooDeep
		}
		return x, nil
	case float64:
		return Number(x), nil
	case float32:
		return Number(float64(x)), nil
	case int:
		return Number(float64(x)), nil
	case int8:
		return Number(float64(x)), nil
	case int16:
		return Number(float64(x)), nil
	case int32:
		return Number(float64(x)), nil
	case int64:
		return Number(float64(x)), nil
	case uint:
		return Number(float64(x)), nil
	case uint8:
		return Number(float64(x)), nil
	case uint16:
		return Number(float64(x)), nil
	case uint32:
		return Number(float64(x)), nil
	case uint64:
		return Number(float64(x)), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Item{}, fmt.Errorf("%w: number %q", ErrUnsupportedValue, x.String())
		}
		return Number(f), nil
	case string:
		return Text(x), nil
	case bool:
		return Text(strconv.FormatBool(x)), nil
	case []string:
		if depth > 1 {
			return Item{}, ErrNestingTooDeep
		}
		out := make([]Item, len(x))
		for i, s := range x {
			out[i] = Text(s)
		}
		return List(out...), nil
	case []float64:
		if depth > 1 {
			return Item{}, ErrNestingTooDeep
		}
		out := make([]Item, len(x))
		for i, f := range x {
			out[i] = Number(f)
		}
		return List(out...), nil
	case []int:
		if depth > 1 {
			return Item{}, ErrNestingTooDeep
		}
		out := make([]Item, len(x))
		for i, n := range x {
			out[i] = Number(float64(n))
		}
		return List(out...), nil
	case []any:
		if depth > 1 {
			return Item{}, ErrNestingTooDeep
		}
		out := make([]Item, len(x))
		for i, e := range x {
			it, err := fromAny(e, depth+1)
			if err != nil {
				return Item{}, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = it
		}
		return List(out...), nil
	default:
		return Item{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}
