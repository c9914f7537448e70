package summary

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name  string
		items []Item
		want  Category
	}{
		{"empty", nil, AllMissing},
		{"only missing", []Item{Missing(), Missing()}, AllMissing},
		{"numbers", []Item{Number(1), Missing(), Number(2.5)}, Numeric},
		{"texts", []Item{Text("a"), Missing()}, Categorical},
		{"mixed scalars", []Item{Number(1), Text("a")}, Categorical},
		{"list wins", []Item{Number(1), List(Number(2)), Text("a")}, Nested},
		{"empty list", []Item{Missing(), List()}, Nested},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Classify(c.items))
		})
	}
}

func TestClassifyDoesNotMutate(t *testing.T) {
	items := []Item{Text("b"), Missing(), Text("a"), Number(3)}
	before := append([]Item(nil), items...)
	_ = Classify(items)
	_, err := Analyze(items, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, before, items)
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "nested-list", Nested.String())
	b, err := json.Marshal(map[string]Category{"c": Numeric})
	require.NoError(t, err)
	assert.JSONEq(t, `{"c":"numeric"}`, string(b))
}

func TestFromAny(t *testing.T) {
	cases := []struct {
		name string
		in   any
		kind Kind
		key  string
	}{
		{"nil", nil, KindMissing, "None"},
		{"int", 3, KindNumber, "3.00"},
		{"int64", int64(-7), KindNumber, "-7.00"},
		{"uint8", uint8(9), KindNumber, "9.00"},
		{"float", 2.345, KindNumber, "2.35"},
		{"json number", json.Number("12.5"), KindNumber, "12.50"},
		{"string", "x|y", KindText, "x|y"},
		{"bool", true, KindText, "true"},
		{"strings", []string{"a", "b"}, KindList, "[list of 2]"},
		{"any list", []any{1, nil, "a"}, KindList, "[list of 3]"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			it, err := FromAny(c.in)
			require.NoError(t, err)
			assert.Equal(t, c.kind, it.Kind())
			assert.Equal(t, c.key, it.Key())
		})
	}
}

func TestFromAnyErrors(t *testing.T) {
	_, err := FromAny(map[string]any{"a": 1})
	assert.ErrorIs(t, err, ErrUnsupportedValue)

	_, err = FromAny([]any{[]any{1}})
	assert.ErrorIs(t, err, ErrNestingTooDeep)

	_, err = FromAny([]any{[]string{"a"}})
	assert.ErrorIs(t, err, ErrNestingTooDeep)

	_, err = FromValues([]any{1, struct{}{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "item 1")
}

func TestListAccessors(t *testing.T) {
	it := List(Number(1), Text("a"))
	inner, ok := it.Items()
	require.True(t, ok)
	assert.Len(t, inner, 2)
	f, ok := inner[0].Float()
	assert.True(t, ok)
	assert.Equal(t, 1.0, f)
	s, ok := inner[1].Str()
	assert.True(t, ok)
	assert.Equal(t, "a", s)
	assert.True(t, Missing().IsMissing())
	_, ok = List().Items()
	assert.True(t, ok)
}

func TestCompensatedSum(t *testing.T) {
	got := compensatedSum([]float64{1000000.123, 2000000.456, 3000000.789, 4000000.012}) / 4
	assert.Equal(t, "2500000.35", formatFixed(got))
}
