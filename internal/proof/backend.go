package proof

import (
	"io"

	"github.com/kozaktomas/wallproof/internal/quality"
)

// Text is a single run of text. X and Y are the baseline origin; a non-zero
// Rotation (degrees, clockwise on the page) rotates the run around it.
type Text struct {
	X, Y     float64
	Text     string
	Size     float64
	Bold     bool
	Color    quality.RGB
	Rotation float64
}

// Rect is a rectangle with optional fill and stroke.
type Rect struct {
	X, Y, W, H float64
	Fill       *quality.RGB
	Stroke     *quality.RGB
	LineWidth  float64
}

// Line is a straight stroke; a non-empty Dash draws it dashed.
type Line struct {
	X1, Y1, X2, Y2 float64
	Color          quality.RGB
	Width          float64
	Dash           []float64
}

// Image places an encoded raster into a rectangle. Type is "JPG" or "PNG".
// Label describes the image for backends that cannot embed rasters.
type Image struct {
	X, Y, W, H float64
	Data       []byte
	Type       string
	Label      string
}

// Backend executes drawing operations and encodes the finished page.
// Coordinates are points, origin top-left, Y down.
type Backend interface {
	StartPage(w, h float64) error
	DrawText(t Text)
	DrawRect(r Rect)
	DrawLine(l Line)
	DrawImage(img Image) error
	ClipRect(x, y, w, h float64)
	ClipEnd()
	TextWidth(text string, size float64, bold bool) float64
	Finish(w io.Writer) error
}

// BackendFactory creates a fresh backend for one document.
type BackendFactory func() (Backend, error)

func rgbPtr(c quality.RGB) *quality.RGB {
	return &c
}
