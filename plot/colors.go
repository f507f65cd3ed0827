package plot

import (
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// StandardColors keeps each mass channel the same color across plots.
var StandardColors = map[string]string{
	"M2":  "0000ff",
	"M3":  "ffa500",
	"M4":  "ff00ff",
	"M15": "ff0000",
	"M16": "4682b4",
	"M17": "d2691e",
	"M18": "bfbf00",
	"M19": "008080",
	"M20": "6a5acd",
	"M26": "008000",
	"M27": "32cd32",
	"M28": "808080",
	"M29": "001146",
	"M30": "ff8c00",
	"M31": "9acd32",
	"M32": "000000",
	"M34": "ff0000",
	"M36": "008000",
	"M40": "00bfbf",
	"M41": "ff2e2e",
	"M42": "808000",
	"M43": "d2b48c",
	"M44": "a52a2a",
	"M45": "006400",
	"M46": "800080",
	"M48": "2f4f4f",
}

var fallbackColor = drawing.ColorFromHex("1f77b4")

// ColorFor returns the standard color of a mass channel. Names with a
// suffix, such as "M32-H", share the color of their base mass.
func ColorFor(mass string) drawing.Color {
	if hex, exists := StandardColors[mass]; exists {
		return drawing.ColorFromHex(hex)
	}

	if i := strings.IndexAny(mass, "-_ "); i > 0 {
		if hex, exists := StandardColors[mass[:i]]; exists {
			return drawing.ColorFromHex(hex)
		}
	}

	return fallbackColor
}
