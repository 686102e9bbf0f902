// color.go provides hex color string parsing for favicon styles.

package favicon

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ParseHexColor parses a "#RRGGBB" or "#RRGGBBAA" hex color string into a
// color.NRGBA. The "#" prefix is optional; alpha defaults to opaque.
func ParseHexColor(hex string) (color.NRGBA, error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: must be 6 or 8 hex digits", hex)
	}
	c := color.NRGBA{A: 255}
	channels := []*uint8{&c.R, &c.G, &c.B, &c.A}
	for i := 0; i < len(hex)/2; i++ {
		v, err := strconv.ParseUint(hex[2*i:2*i+2], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
		}
		*channels[i] = uint8(v)
	}
	return c, nil
}
