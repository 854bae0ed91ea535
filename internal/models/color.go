package models

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Color is a palette entry for choropleth classes.
type Color struct {
	Hex string   `json:"hex"`
	RGB [3]uint8 `json:"rgb"`
}

// ParseHexColor parses "#rrggbb" (the leading # is optional).
func ParseHexColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return Color{}, fmt.Errorf("invalid color %q: expected 6 hex digits", s)
	}
	b, err := hex.DecodeString(h)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{
		Hex: "#" + strings.ToLower(h),
		RGB: [3]uint8{b[0], b[1], b[2]},
	}, nil
}

// DefaultPalette is ordered from lightest to darkest.
var DefaultPalette = []string{"#97a3ab", "#667883", "#37505d", "#022b3a"}
