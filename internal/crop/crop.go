// Package crop resolves the pixel window of a source image that is extracted
// for a print, given the print size and the editor's pan/zoom state.
package crop

import (
	"fmt"
	"image"
	"math"

	"github.com/kozaktomas/wallproof/internal/constants"
	"github.com/kozaktomas/wallproof/internal/geometry"
)

// floorEps absorbs binary rounding so that e.g. 300/(300/4000) floors to 4000.
const floorEps = 1e-6

// Window is a rectangle in source-image pixel space.
type Window struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect returns the window as an image.Rectangle.
func (w Window) Rect() image.Rectangle {
	return image.Rect(w.Left, w.Top, w.Left+w.Width, w.Top+w.Height)
}

// String formats the window for the audit line printed on the proof.
func (w Window) String() string {
	return fmt.Sprintf("left=%d top=%d width=%d height=%d", w.Left, w.Top, w.Width, w.Height)
}

// Resolve computes the crop window for a source of sourceW x sourceH pixels
// printed at printW x printH cm. Offsets are the window center as fractions of
// the natural (unscaled) source size. Flips are applied after extraction and
// do not influence the window. Malformed input is clamped, never rejected.
func Resolve(sourceW, sourceH int, printW, printH, zoom, offsetXPct, offsetYPct float64) Window {
	if sourceW <= 0 || sourceH <= 0 {
		return Window{Width: 1, Height: 1}
	}
	sw, sh := float64(sourceW), float64(sourceH)

	if !(zoom > 0) || math.IsInf(zoom, 0) {
		zoom = constants.MinZoom
	}
	if !(printW > 0) || !(printH > 0) || math.IsInf(printW, 0) || math.IsInf(printH, 0) {
		printW, printH = sw, sh
	}
	aspect := printW / printH

	// cm per source pixel at which the source just covers the print
	scale := geometry.CoverScale(printW, printH, sw, sh)
	cropW := math.Floor(printW/scale/zoom + floorEps)
	cropH := math.Floor(printH/scale/zoom + floorEps)

	cropW = math.Min(cropW, sw)
	if targetH := math.Round(cropW / aspect); targetH <= sh {
		cropH = targetH
	} else {
		cropH = math.Min(cropH, sh)
		cropW = math.Min(math.Round(cropH*aspect), sw)
	}
	cropW = math.Max(1, math.Min(cropW, sw))
	cropH = math.Max(1, math.Min(cropH, sh))

	cx := clamp(math.Round(sw*normalizeOffset(offsetXPct)), 0, sw-1)
	cy := clamp(math.Round(sh*normalizeOffset(offsetYPct)), 0, sh-1)

	left := clamp(math.Round(cx-cropW/2), 0, sw-cropW)
	top := clamp(math.Round(cy-cropH/2), 0, sh-cropH)

	return Window{
		Left:   int(left),
		Top:    int(top),
		Width:  int(cropW),
		Height: int(cropH),
	}
}

// normalizeOffset maps NaN to the center and clamps to [0, 1].
func normalizeOffset(v float64) float64 {
	if math.IsNaN(v) {
		return 0.5
	}
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	return math.Max(lo, math.Min(v, hi))
}
