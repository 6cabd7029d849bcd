package placement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAliases(t *testing.T) {
	ds, err := Parse([]byte(`{
		"pageIdx": "1",
		"w": 120,
		"left": "15.5",
		"cy": 300,
		"origin": " Top-Left "
	}`))
	require.NoError(t, err)
	require.Len(t, ds, 1)

	d := ds[0]
	require.NotNil(t, d.Page)
	assert.Equal(t, 1.0, *d.Page)
	require.NotNil(t, d.Width)
	assert.Equal(t, 120.0, *d.Width)
	assert.Nil(t, d.Height)
	require.NotNil(t, d.X)
	assert.Equal(t, 15.5, *d.X)
	require.NotNil(t, d.CenterY)
	assert.Equal(t, 300.0, *d.CenterY)
	assert.Equal(t, OriginTopLeft, d.Origin)
}

func TestParseFirstPresentStopsAtNonNumeric(t *testing.T) {
	ds, err := Parse([]byte(`{"page": "first", "pageIndex": 2}`))
	require.NoError(t, err)
	require.Len(t, ds, 1)
	assert.Nil(t, ds[0].Page)
}

func TestParseFirstNumericSkipsInvalid(t *testing.T) {
	ds, err := Parse([]byte(`{"x": "n/a", "left": 12, "y": null, "bottom": "7"}`))
	require.NoError(t, err)
	require.Len(t, ds, 1)
	require.NotNil(t, ds[0].X)
	assert.Equal(t, 12.0, *ds[0].X)
	require.NotNil(t, ds[0].Y)
	assert.Equal(t, 7.0, *ds[0].Y)
}

func TestParseNullFallsThrough(t *testing.T) {
	ds, err := Parse([]byte(`{"page": null, "pageNo": 1}`))
	require.NoError(t, err)
	require.NotNil(t, ds[0].Page)
	assert.Equal(t, 1.0, *ds[0].Page)
}

func TestParseShapes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantLen int
		wantErr bool
	}{
		{"empty", "  ", 0, false},
		{"array", `[{"x":1,"y":2},{"x":3,"y":4}]`, 2, false},
		{"non-object items skipped", `[1, "a", null, [2], {"x":1}]`, 1, false},
		{"scalar", `42`, 0, false},
		{"null", `null`, 0, false},
		{"malformed object", `{"x":`, 0, true},
		{"malformed array", `[{"x":1}`, 0, true},
		{"garbage", `x=1`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Parse([]byte(tt.input))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformed)
				return
			}
			require.NoError(t, err)
			assert.Len(t, ds, tt.wantLen)
		})
	}
}
