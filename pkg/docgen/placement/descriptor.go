// Package placement resolves stamp placement descriptors into page rectangles.
//
// A descriptor names a page (zero-based index or one-based page number), a
// position (x or centerX, and y from the bottom, top or centerY) and a size
// (width and/or height, or the stamp's natural size, optionally scaled).
// Coordinates are PDF points with the origin at the bottom-left corner of the
// page unless the descriptor's origin is "top-left".
package placement

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Origin is the coordinate convention of a descriptor's y value.
type Origin string

const (
	OriginBottomLeft Origin = ""
	OriginTopLeft    Origin = "top-left"
)

// Descriptor is one requested stamp. Nil fields are absent.
type Descriptor struct {
	Page       *float64 // zero-based
	PageNumber *float64 // one-based
	Width      *float64
	Height     *float64
	Scale      *float64
	X          *float64
	CenterX    *float64
	Y          *float64 // measured from the bottom, or from the top with OriginTopLeft
	Top        *float64
	CenterY    *float64
	Origin     Origin
}

// Num returns a pointer to v, for building descriptors in code.
func Num(v float64) *float64 {
	return &v
}

// ErrMalformed is returned by Parse for input that is not valid JSON.
var ErrMalformed = errors.New("malformed placement JSON")

// UnmarshalJSON accepts the alias keys used by form front-ends. Values may be
// numbers or numeric strings; anything else counts as absent.
func (d *Descriptor) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*d = Descriptor{
		Page:       firstPresent(raw, "page", "pageIndex", "pageNo", "page_id", "pageIdx"),
		PageNumber: firstPresent(raw, "pageNumber", "pageNoHuman"),
		Width:      firstPresent(raw, "width", "w"),
		Height:     firstPresent(raw, "height", "h"),
		Scale:      firstPresent(raw, "scale"),
		X:          firstNumeric(raw, "x", "left", "l", "posX"),
		CenterX:    firstPresent(raw, "centerX", "cx"),
		Y:          firstNumeric(raw, "y", "bottom", "b", "posY"),
		Top:        firstPresent(raw, "top", "t"),
		CenterY:    firstPresent(raw, "centerY", "cy"),
	}
	if s, ok := raw["origin"].(string); ok {
		d.Origin = Origin(strings.ToLower(strings.TrimSpace(s)))
	}
	return nil
}

// Parse reads a JSON object or array of descriptors. Array items that are
// not objects are skipped; a scalar yields no descriptors.
func Parse(data []byte) ([]Descriptor, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var items []json.RawMessage
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	case '{':
		items = []json.RawMessage{data}
	default:
		if !json.Valid(data) {
			return nil, ErrMalformed
		}
		return nil, nil
	}

	descriptors := make([]Descriptor, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			continue
		}
		var d Descriptor
		if err := json.Unmarshal(item, &d); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		descriptors = append(descriptors, d)
	}
	return descriptors, nil
}

// firstPresent takes the first key that is present and not null, and reports
// its numeric value. A present but non-numeric value ends the search.
func firstPresent(raw map[string]any, keys ...string) *float64 {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		if n, ok := toNumber(v); ok {
			return &n
		}
		return nil
	}
	return nil
}

// firstNumeric takes the first key whose value is numeric.
func firstNumeric(raw map[string]any, keys ...string) *float64 {
	for _, key := range keys {
		if n, ok := toNumber(raw[key]); ok {
			return &n
		}
	}
	return nil
}
