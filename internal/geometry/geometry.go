// Package geometry holds the unit conversions and print-size resolution shared
// by the crop resolver, the layout engine and the renderer.
package geometry

import (
	"math"

	"github.com/kozaktomas/wallproof/internal/constants"
)

// Document units: 72 points per inch, 2.54 cm per inch.
const (
	PointsPerInch = 72.0
	CmPerInch     = 2.54
)

// CmToPoints converts centimeters to document points.
func CmToPoints(cm float64) float64 {
	return cm * PointsPerInch / CmPerInch
}

// PointsToCm converts document points to centimeters.
func PointsToCm(pt float64) float64 {
	return pt * CmPerInch / PointsPerInch
}

// CoverScale returns the smallest scale at which content fully covers the box.
// Returns 0 when the content has no area.
func CoverScale(boxW, boxH, contentW, contentH float64) float64 {
	if contentW <= 0 || contentH <= 0 {
		return 0
	}
	return math.Max(boxW/contentW, boxH/contentH)
}

// FitScale returns the largest scale at which content fits inside the box.
// Returns 0 when the content has no area.
func FitScale(boxW, boxH, contentW, contentH float64) float64 {
	if contentW <= 0 || contentH <= 0 {
		return 0
	}
	return math.Min(boxW/contentW, boxH/contentH)
}

// CappedScale limits a scale factor to 1 so rasters are never upscaled past
// their native resolution.
func CappedScale(s float64) float64 {
	return math.Min(s, 1)
}

// Size is a real-world size in centimeters.
type Size struct {
	WidthCm  float64 `json:"widthCm"`
	HeightCm float64 `json:"heightCm"`
}

// Valid reports whether both dimensions are positive finite numbers.
func (s Size) Valid() bool {
	return positive(s.WidthCm) && positive(s.HeightCm)
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// PrintGeometry is the resolved wall and print size of a configuration.
type PrintGeometry struct {
	PrintW      float64 `json:"print_w"`
	PrintH      float64 `json:"print_h"`
	WallW       float64 `json:"wall_w"`
	WallH       float64 `json:"wall_h"`
	AspectRatio float64 `json:"aspect_ratio"`
	// Fallback is set when neither size was usable and the placeholder geometry was applied.
	Fallback bool `json:"fallback"`
}

// Resolve applies the wall/print fallback rules: print falls back to wall,
// wall falls back to print, and a placeholder square is used when both are
// missing. It never fails.
func Resolve(wall, printSize Size) PrintGeometry {
	g := PrintGeometry{}
	switch {
	case wall.Valid() && printSize.Valid():
		g.WallW, g.WallH = wall.WidthCm, wall.HeightCm
		g.PrintW, g.PrintH = printSize.WidthCm, printSize.HeightCm
	case wall.Valid():
		g.WallW, g.WallH = wall.WidthCm, wall.HeightCm
		g.PrintW, g.PrintH = wall.WidthCm, wall.HeightCm
	case printSize.Valid():
		g.WallW, g.WallH = printSize.WidthCm, printSize.HeightCm
		g.PrintW, g.PrintH = printSize.WidthCm, printSize.HeightCm
	default:
		g.WallW, g.WallH = constants.DefaultPlaceholderCm, constants.DefaultPlaceholderCm
		g.PrintW, g.PrintH = constants.DefaultPlaceholderCm, constants.DefaultPlaceholderCm
		g.Fallback = true
	}
	g.AspectRatio = g.PrintW / g.PrintH
	return g
}

// AreaM2 returns the print area in square meters.
func (g PrintGeometry) AreaM2() float64 {
	return g.PrintW / 100 * g.PrintH / 100
}

// PrintPoints returns the print size in document points.
func (g PrintGeometry) PrintPoints() (w, h float64) {
	return CmToPoints(g.PrintW), CmToPoints(g.PrintH)
}
