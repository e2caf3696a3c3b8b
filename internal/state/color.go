package state

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

const DefaultPenColor = "#ff0000"

// Palette is the set of quick-pick pen colours offered by the toolbar.
var Palette = []string{
	"#000000",
	"#ff0000",
	"#00ff00",
	"#0000ff",
	"#ffff00",
	"#ffffff",
}

var namedColors = map[string]string{
	"black":  "#000000",
	"red":    "#ff0000",
	"green":  "#00ff00",
	"blue":   "#0000ff",
	"yellow": "#ffff00",
	"white":  "#ffffff",
}

// ParseColor converts a hex string (#rgb or #rrggbb) or one of the basic
// colour names to an opaque colour.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if hex, ok := namedColors[s]; ok {
		s = hex
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// NormalizeColor returns s in #rrggbb form. ok is false when s is not a
// colour ParseColor understands.
func NormalizeColor(s string) (hex string, ok bool) {
	c, err := ParseColor(s)
	if err != nil {
		return "", false
	}
	return FormatColor(c), true
}

// FormatColor renders c as #rrggbb, ignoring alpha.
func FormatColor(c color.Color) string {
	cf, _ := colorful.MakeColor(opaque(c))
	return cf.Hex()
}

func opaque(c color.Color) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = 0xff
	return n
}
