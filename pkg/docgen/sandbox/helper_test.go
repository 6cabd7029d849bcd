package sandbox

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHelperDefaults(t *testing.T) {
	tests := []struct {
		name string
		args []any
		want string
	}{
		{"undefined with fallback", []any{nil, "fallback"}, "fallback"},
		{"fallback with tail", []any{nil, "fallback", " tail"}, "fallback tail"},
		{"number", []any{5}, "5"},
		{"null with empty fallback", []any{nil, ""}, ""},
		{"no arguments", nil, ""},
		{"empty string uses fallback", []any{"", "-"}, "-"},
		{"zero is not empty", []any{0, "-"}, "0"},
		{"false is not empty", []any{false, "-"}, "false"},
		{"value wins over fallback", []any{"Acme", "-"}, "Acme"},
		{"rest arguments concatenated", []any{"a", "", "b", 1, nil, "c"}, "ab1c"},
		{"numeric fallback", []any{nil, 0}, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, C(tt.args...))
		})
	}
}

func TestStringify(t *testing.T) {
	type point struct {
		X int `json:"x"`
		Y int `json:"y"`
	}

	when := time.Date(2024, 3, 5, 8, 30, 0, 0, time.FixedZone("CST", 8*3600))

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "text", "text"},
		{"int", 42, "42"},
		{"negative int64", int64(-7), "-7"},
		{"float", 3.5, "3.5"},
		{"integral float", 100.0, "100"},
		{"NaN", math.NaN(), ""},
		{"infinity", math.Inf(1), ""},
		{"large float", 1e21, "1e+21"},
		{"bool", true, "true"},
		{"time in UTC", when, "2024-03-05T00:30:00.000Z"},
		{"slice concatenation", []any{"a", 1, nil, []any{"b", 2.5}}, "a1b2.5"},
		{"string slice", []string{"x", "y"}, "xy"},
		{"map as JSON", map[string]any{"a": 1}, `{"a":1}`},
		{"struct as JSON", point{1, 2}, `{"x":1,"y":2}`},
		{"unmarshalable map", map[string]any{"f": func() {}}, ""},
		{"nil pointer", (*point)(nil), ""},
		{"pointer to value", &point{3, 4}, `{"x":3,"y":4}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Stringify(tt.in))
		})
	}
}

func TestTruthy(t *testing.T) {
	assert.False(t, Truthy(nil))
	assert.False(t, Truthy(false))
	assert.False(t, Truthy(0))
	assert.False(t, Truthy(0.0))
	assert.False(t, Truthy(math.NaN()))
	assert.False(t, Truthy(""))
	assert.False(t, Truthy(map[string]any(nil)))

	assert.True(t, Truthy(true))
	assert.True(t, Truthy(1))
	assert.True(t, Truthy(int64(-1)))
	assert.True(t, Truthy("0"))
	assert.True(t, Truthy([]any{}))
	assert.True(t, Truthy(map[string]any{}))
}

func TestToSlice(t *testing.T) {
	items, err := ToSlice([]string{"a", "b"})
	assert.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, items)

	items, err = ToSlice(nil)
	assert.NoError(t, err)
	assert.Empty(t, items)

	arr := [2]int{1, 2}
	items, err = ToSlice(&arr)
	assert.NoError(t, err)
	assert.Equal(t, []any{1, 2}, items)

	_, err = ToSlice(map[string]any{"a": 1})
	assert.Error(t, err)

	_, err = ToSlice(5)
	assert.Error(t, err)
}
