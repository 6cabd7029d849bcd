package placement

import (
	"errors"
	"fmt"
	"math"
)

// Size is a width and height in points.
type Size struct {
	Width  float64
	Height float64
}

// Rect is a resolved stamp rectangle; X and Y are the bottom-left corner.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Placement is a fully resolved descriptor.
type Placement struct {
	PageIndex int
	Rect
}

var (
	ErrPageOutOfRange = errors.New("page out of range")
	ErrPageNotInteger = errors.New("page is not an integer")
	ErrInvalidSize    = errors.New("invalid stamp size")
	ErrMissingX       = errors.New("missing x coordinate")
	ErrMissingY       = errors.New("missing y coordinate")
)

// PlacementError reports the failing descriptor by its 1-based position.
type PlacementError struct {
	Index int
	Err   error
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("placement #%d: %v", e.Index, e.Err)
}

func (e *PlacementError) Unwrap() error {
	return e.Err
}

// ResolvePageIndex returns the zero-based page: the explicit index if
// present, else the page number minus one, else 0.
func ResolvePageIndex(d Descriptor, pageCount int) (int, error) {
	value := 0.0
	switch {
	case d.Page != nil:
		value = *d.Page
	case d.PageNumber != nil:
		value = *d.PageNumber - 1
	}

	if value != math.Trunc(value) {
		return 0, fmt.Errorf("%w: %g", ErrPageNotInteger, value)
	}
	if value < 0 || value >= float64(pageCount) {
		return 0, fmt.Errorf("%w: page index %g (document has %d pages)", ErrPageOutOfRange, value, pageCount)
	}
	return int(value), nil
}

// ResolveSize applies the size rules to the stamp's natural size: both
// dimensions as given, one inferred from the aspect ratio, or the natural
// size; then a positive scale multiplies both.
func ResolveSize(d Descriptor, natural Size) (Size, error) {
	var s Size
	switch {
	case d.Width != nil && d.Height != nil:
		s = Size{Width: *d.Width, Height: *d.Height}
	case d.Width != nil:
		s = Size{Width: *d.Width, Height: natural.Height * (*d.Width / natural.Width)}
	case d.Height != nil:
		s = Size{Width: natural.Width * (*d.Height / natural.Height), Height: *d.Height}
	default:
		s = natural
	}

	if d.Scale != nil && *d.Scale > 0 {
		s.Width *= *d.Scale
		s.Height *= *d.Scale
	}

	if !finite(s.Width) || !finite(s.Height) || s.Width <= 0 || s.Height <= 0 {
		return Size{}, fmt.Errorf("%w: %gx%g", ErrInvalidSize, s.Width, s.Height)
	}
	return s, nil
}

// ResolvePosition returns the bottom-left corner of a stamp of the given
// size on a page of the given height.
func ResolvePosition(d Descriptor, pageHeight float64, size Size) (x, y float64, err error) {
	switch {
	case d.X != nil:
		x = *d.X
	case d.CenterX != nil:
		x = *d.CenterX - size.Width/2
	default:
		return 0, 0, ErrMissingX
	}

	switch {
	case d.Y != nil && d.Origin == OriginTopLeft:
		y = pageHeight - *d.Y - size.Height
	case d.Y != nil:
		y = *d.Y
	case d.Top != nil:
		y = pageHeight - *d.Top - size.Height
	case d.CenterY != nil:
		y = *d.CenterY - size.Height/2
	default:
		return 0, 0, ErrMissingY
	}
	return x, y, nil
}

// Resolve resolves one descriptor against the page sizes of a document.
func Resolve(d Descriptor, pages []Size, natural Size) (Placement, error) {
	index, err := ResolvePageIndex(d, len(pages))
	if err != nil {
		return Placement{}, err
	}
	size, err := ResolveSize(d, natural)
	if err != nil {
		return Placement{}, err
	}
	x, y, err := ResolvePosition(d, pages[index].Height, size)
	if err != nil {
		return Placement{}, err
	}
	return Placement{
		PageIndex: index,
		Rect:      Rect{X: x, Y: y, Width: size.Width, Height: size.Height},
	}, nil
}

// ResolveAll resolves every descriptor in order. The first failure aborts
// the batch, so callers can draw only after every placement is known.
func ResolveAll(ds []Descriptor, pages []Size, natural Size) ([]Placement, error) {
	out := make([]Placement, 0, len(ds))
	for i, d := range ds {
		p, err := Resolve(d, pages, natural)
		if err != nil {
			return nil, &PlacementError{Index: i + 1, Err: err}
		}
		out = append(out, p)
	}
	return out, nil
}
