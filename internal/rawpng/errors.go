package rawpng

import (
	"errors"
	"fmt"
)

// ErrInvalidGeometry is matched (via errors.Is) by every precondition
// failure of [Encode]: bad dimensions, row or column count mismatches, and
// out-of-range samples.
var ErrInvalidGeometry = errors.New("invalid geometry")

// GeometryError describes a rejected pixel matrix.
type GeometryError struct {
	// Reason is a short description of the violated precondition.
	Reason string
	// Row is the offending row index, or -1 when not row-specific.
	Row int
	// Col is the offending column index, or -1 when not sample-specific.
	Col int
	// Got and Want carry the mismatched values, when meaningful.
	Got, Want int
}

func (e *GeometryError) Error() string {
	switch {
	case e.Col >= 0:
		return fmt.Sprintf("%s: %s at row %d col %d: got %d, want 0..255", ErrInvalidGeometry, e.Reason, e.Row, e.Col, e.Got)
	case e.Row >= 0:
		return fmt.Sprintf("%s: %s at row %d: got %d, want %d", ErrInvalidGeometry, e.Reason, e.Row, e.Got, e.Want)
	case e.Got != 0 || e.Want != 0:
		return fmt.Sprintf("%s: %s: got %d, want %d", ErrInvalidGeometry, e.Reason, e.Got, e.Want)
	default:
		return fmt.Sprintf("%s: %s", ErrInvalidGeometry, e.Reason)
	}
}

// Is makes every GeometryError match [ErrInvalidGeometry].
func (e *GeometryError) Is(target error) bool {
	return target == ErrInvalidGeometry
}

// checkGeometry validates the encoder preconditions before any output exists.
func checkGeometry(width, height int, pixels [][]byte) error {
	if width <= 0 {
		return &GeometryError{Reason: "width must be positive", Row: -1, Col: -1, Got: width}
	}
	if height <= 0 {
		return &GeometryError{Reason: "height must be positive", Row: -1, Col: -1, Got: height}
	}
	if uint64(width) > 1<<31-1 || uint64(height) > 1<<31-1 {
		return &GeometryError{Reason: "dimension exceeds 2^31-1", Row: -1, Col: -1}
	}
	if len(pixels) != height {
		return &GeometryError{Reason: "row count mismatch", Row: -1, Col: -1, Got: len(pixels), Want: height}
	}
	for y, row := range pixels {
		if len(row) != width {
			return &GeometryError{Reason: "row length mismatch", Row: y, Col: -1, Got: len(row), Want: width}
		}
	}
	return nil
}

// FromInts converts an int sample matrix into the byte rows accepted by
// [Encode], rejecting any sample outside 0..255.
func FromInts(rows [][]int) ([][]byte, error) {
	out := make([][]byte, len(rows))
	for y, row := range rows {
		out[y] = make([]byte, len(row))
		for x, v := range row {
			if v < 0 || v > 255 {
				return nil, &GeometryError{Reason: "sample out of range", Row: y, Col: x, Got: v}
			}
			out[y][x] = byte(v)
		}
	}
	return out, nil
}
