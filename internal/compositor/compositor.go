// Package compositor turns a source image buffer and a resolved crop window
// into the raster embedded in the proof.
package compositor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"log"
	"math"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/kozaktomas/wallproof/internal/constants"
	"github.com/kozaktomas/wallproof/internal/crop"
	"github.com/kozaktomas/wallproof/internal/geometry"
	"github.com/kozaktomas/wallproof/internal/imagestore"
)

// ErrImageUnavailable is returned when the source cannot be decoded or no
// usable region remains after clamping.
var ErrImageUnavailable = errors.New("image unavailable")

const (
	sharpenSigma = 0.5
	jpegQuality  = 100
)

// Options controls the post-extraction steps.
type Options struct {
	FlipH  bool
	FlipV  bool
	Width  int // display raster width in pixels
	Height int // display raster height in pixels
	// MaxPixels bounds the decoded source; 0 means constants.MaxImagePixels.
	MaxPixels int64
}

// Result is the encoded display raster.
type Result struct {
	JPEG   []byte
	Width  int
	Height int
	// Extracted is the window that was actually extracted.
	Extracted crop.Window
	// SafeFallback is set when the requested window did not fit the decoded
	// image and the maximal safe rectangle was used instead.
	SafeFallback bool
}

// Composite runs the fixed pipeline: orientation normalization, extraction,
// horizontal flip, vertical flip, exact-fill resize, sharpen, JPEG encode.
func Composite(src []byte, w crop.Window, opts Options) (*Result, error) {
	meta, err := imagestore.Probe(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageUnavailable, err)
	}
	limit := opts.MaxPixels
	if limit <= 0 {
		limit = constants.MaxImagePixels
	}
	if meta.Pixels() > limit {
		return nil, fmt.Errorf("%w: source %dx%d exceeds %d pixels",
			ErrImageUnavailable, meta.Width, meta.Height, limit)
	}

	img, err := imaging.Decode(bytes.NewReader(src), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode source: %v", ErrImageUnavailable, err)
	}

	window, safe := fitWindow(w, img.Bounds())
	if window.Width <= 0 || window.Height <= 0 {
		return nil, fmt.Errorf("%w: empty crop window %s", ErrImageUnavailable, w)
	}
	if safe {
		log.Printf("WARNING: crop window %s outside source %dx%d, using %s",
			w, img.Bounds().Dx(), img.Bounds().Dy(), window)
	}

	out := imaging.Crop(img, window.Rect().Add(img.Bounds().Min))
	if opts.FlipH {
		out = imaging.FlipH(out)
	}
	if opts.FlipV {
		out = imaging.FlipV(out)
	}

	width, height := opts.Width, opts.Height
	if width <= 0 || height <= 0 {
		width, height = window.Width, window.Height
	}
	if width != out.Bounds().Dx() || height != out.Bounds().Dy() {
		out = imaging.Resize(out, width, height, imaging.Lanczos)
	}
	out = imaging.Sharpen(out, sharpenSigma)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode composite: %w", err)
	}

	return &Result{
		JPEG:         buf.Bytes(),
		Width:        width,
		Height:       height,
		Extracted:    window,
		SafeFallback: safe,
	}, nil
}

// fitWindow returns w unchanged when it lies inside bounds, otherwise the
// maximal safe rectangle anchored at the origin.
func fitWindow(w crop.Window, bounds image.Rectangle) (crop.Window, bool) {
	bw, bh := bounds.Dx(), bounds.Dy()
	if w.Left >= 0 && w.Top >= 0 && w.Width > 0 && w.Height > 0 &&
		w.Left+w.Width <= bw && w.Top+w.Height <= bh {
		return w, false
	}
	return crop.Window{
		Width:  min(w.Width, bw),
		Height: min(w.Height, bh),
	}, true
}

// TargetSize returns the raster size for a display frame of frameW x frameH
// points at dpi. The scale relative to the crop window is capped at 1 so the
// source is never upscaled; the frame aspect ratio is kept.
func TargetSize(frameW, frameH, dpi float64, w crop.Window) (int, int) {
	if frameW <= 0 || frameH <= 0 || w.Width <= 0 || w.Height <= 0 {
		return 1, 1
	}
	pxW := frameW / geometry.PointsPerInch * dpi
	pxH := frameH / geometry.PointsPerInch * dpi
	s := geometry.CappedScale(geometry.FitScale(float64(w.Width), float64(w.Height), pxW, pxH))
	return max(1, int(math.Round(pxW*s))), max(1, int(math.Round(pxH*s)))
}
