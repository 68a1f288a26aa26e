// Package layout computes the absolute placement of every element of the
// proof page. Coordinates are points with the origin at the top-left corner
// of the page and Y growing downward.
package layout

import (
	"math"
	"strconv"
	"strings"

	"github.com/kozaktomas/wallproof/internal/geometry"
)

// Measurer returns the rendered width of a text run.
type Measurer interface {
	TextWidth(text string, size float64, bold bool) float64
}

// ApproxMeasurer estimates Helvetica text width from the rune count.
type ApproxMeasurer struct{}

// TextWidth implements Measurer.
func (ApproxMeasurer) TextWidth(text string, size float64, bold bool) float64 {
	factor := 0.5
	if bold {
		factor = 0.55
	}
	return float64(len([]rune(text))) * size * factor
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Right returns the X of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the Y of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Empty reports whether the rectangle has no visible area.
func (r Rect) Empty() bool { return r.W < 0.01 || r.H < 0.01 }

// LabelKind tells whether a label describes the print or the wall.
type LabelKind string

const (
	LabelPrint LabelKind = "print"
	LabelWall  LabelKind = "wall"
)

// Label is a dimension label with its background strip.
type Label struct {
	Kind LabelKind `json:"kind"`
	Text string    `json:"text"`
	Box  Rect      `json:"box"`
	// Text baseline origin; for rotated labels the rotation is around it.
	TextX float64 `json:"text_x"`
	TextY float64 `json:"text_y"`
	// Rotation in degrees, clockwise on the page; -90 reads bottom to top.
	Rotation float64 `json:"rotation"`
}

// Header holds the positions of the header elements.
type Header struct {
	TitleX   float64 `json:"title_x"`
	TitleY   float64 `json:"title_y"`
	CaptionY float64 `json:"caption_y"`
	Logo     Rect    `json:"logo"`
	// Code and crop lines are right-aligned at CodeRight.
	CodeRight float64 `json:"code_right"`
	CodeY     float64 `json:"code_y"`
	CropY     float64 `json:"crop_y"`
}

// Strips describes the paneling of the print into fixed-width strips.
type Strips struct {
	Count      int       `json:"count"`
	WidthCm    float64   `json:"width_cm"`
	Boundaries []float64 `json:"boundaries"` // X positions inside the frame
	OverageCm  float64   `json:"overage_cm"`
}

// Layout is the complete placement of the image block.
type Layout struct {
	Geometry     geometry.PrintGeometry `json:"geometry"`
	Header       Header                 `json:"header"`
	Envelope     Rect                   `json:"envelope"`
	Frame        Rect                   `json:"frame"`
	WallOverlay  Rect                   `json:"wall_overlay"`
	Bleed        []Rect                 `json:"bleed,omitempty"`
	WidthLabels  []Label                `json:"width_labels"`
	HeightLabels []Label                `json:"height_labels"`
	Strips       *Strips                `json:"strips,omitempty"`
	// Scale is points per centimeter of print inside the frame.
	Scale float64 `json:"scale"`
}

// Compute places the header, display frame, wall overlay, bleed bands,
// dimension labels and strip guides for the given geometry. stripWidthCm
// overrides the configured strip width when positive.
func Compute(cfg Config, g geometry.PrintGeometry, stripWidthCm float64, m Measurer) Layout {
	if m == nil {
		m = ApproxMeasurer{}
	}
	l := Layout{
		Geometry: g,
		Header:   computeHeader(cfg),
		Envelope: Rect{
			X: cfg.ContentX() + (cfg.ContentWidth()-cfg.EnvelopeMaxW)/2,
			Y: cfg.EnvelopeTop(),
			W: cfg.EnvelopeMaxW,
			H: cfg.EnvelopeMaxH,
		},
	}

	// Shrink-to-fit: the frame takes the print aspect and the largest size
	// that fits the envelope.
	l.Scale = geometry.FitScale(cfg.EnvelopeMaxW, cfg.EnvelopeMaxH, g.PrintW, g.PrintH)
	frameW := g.PrintW * l.Scale
	frameH := g.PrintH * l.Scale
	l.Frame = Rect{
		X: cfg.ContentX() + (cfg.ContentWidth()-frameW)/2,
		Y: l.Envelope.Y + (cfg.EnvelopeMaxH-frameH)/2,
		W: frameW,
		H: frameH,
	}

	l.WallOverlay = wallOverlay(l.Frame, g)
	l.Bleed = bleedBands(l.Frame, l.WallOverlay)
	l.WidthLabels = widthLabels(cfg, l.Frame, g, m)
	l.HeightLabels = heightLabels(cfg, l.Frame, g, m)

	strip := cfg.StripWidthCm
	if stripWidthCm > 0 {
		strip = stripWidthCm
	}
	l.Strips = computeStrips(l.Frame, g, strip, l.Scale)
	return l
}

func computeHeader(cfg Config) Header {
	titleY := cfg.Margin + cfg.TitleSize
	codeY := cfg.Margin + cfg.LogoMaxH + cfg.CodeSize + 4
	return Header{
		TitleX:   cfg.ContentX(),
		TitleY:   titleY,
		CaptionY: titleY + cfg.CaptionSize + 6,
		Logo: Rect{
			X: cfg.PageW - cfg.Margin - cfg.LogoMaxW,
			Y: cfg.Margin,
			W: cfg.LogoMaxW,
			H: cfg.LogoMaxH,
		},
		CodeRight: cfg.PageW - cfg.Margin,
		CodeY:     codeY,
		CropY:     codeY + cfg.CropLineSize + 3,
	}
}

// wallOverlay scales the frame by wall/print per axis (capped at 1) and centers it.
func wallOverlay(frame Rect, g geometry.PrintGeometry) Rect {
	rw := math.Min(1, g.WallW/g.PrintW)
	rh := math.Min(1, g.WallH/g.PrintH)
	w := frame.W * rw
	h := frame.H * rh
	return Rect{
		X: frame.X + (frame.W-w)/2,
		Y: frame.Y + (frame.H-h)/2,
		W: w,
		H: h,
	}
}

// bleedBands returns the non-empty bands of the frame outside the overlay.
func bleedBands(frame, overlay Rect) []Rect {
	candidates := []Rect{
		{frame.X, frame.Y, frame.W, overlay.Y - frame.Y},
		{frame.X, overlay.Bottom(), frame.W, frame.Bottom() - overlay.Bottom()},
		{frame.X, overlay.Y, overlay.X - frame.X, overlay.H},
		{overlay.Right(), overlay.Y, frame.Right() - overlay.Right(), overlay.H},
	}
	var bands []Rect
	for _, b := range candidates {
		if !b.Empty() {
			bands = append(bands, b)
		}
	}
	return bands
}

// widthLabels stacks the print label above the wall label, directly above the frame.
func widthLabels(cfg Config, frame Rect, g geometry.PrintGeometry, m Measurer) []Label {
	centerX := frame.X + frame.W/2
	step := cfg.LabelH + cfg.LabelGap
	specs := []struct {
		kind  LabelKind
		tmpl  string
		value float64
		order int
	}{
		{LabelPrint, cfg.Labels.PrintWidth, g.PrintW, 2},
		{LabelWall, cfg.Labels.WallWidth, g.WallW, 1},
	}

	labels := make([]Label, 0, len(specs))
	for _, s := range specs {
		text := FormatLabel(s.tmpl, s.value)
		w := m.TextWidth(text, cfg.LabelFontSize, false) + 2*cfg.LabelPadding
		box := Rect{
			X: centerX - w/2,
			Y: frame.Y - float64(s.order)*step,
			W: w,
			H: cfg.LabelH,
		}
		labels = append(labels, Label{
			Kind:  s.kind,
			Text:  text,
			Box:   box,
			TextX: box.X + cfg.LabelPadding,
			TextY: box.Y + cfg.LabelH/2 + cfg.LabelFontSize*0.35,
		})
	}
	return labels
}

// heightLabels places rotated labels left of the frame: print height
// innermost, wall height next to it.
func heightLabels(cfg Config, frame Rect, g geometry.PrintGeometry, m Measurer) []Label {
	centerY := frame.Y + frame.H/2
	step := cfg.LabelH + cfg.LabelGap
	specs := []struct {
		kind  LabelKind
		tmpl  string
		value float64
		order int
	}{
		{LabelPrint, cfg.Labels.PrintHeight, g.PrintH, 1},
		{LabelWall, cfg.Labels.WallHeight, g.WallH, 2},
	}

	labels := make([]Label, 0, len(specs))
	for _, s := range specs {
		text := FormatLabel(s.tmpl, s.value)
		h := m.TextWidth(text, cfg.LabelFontSize, false) + 2*cfg.LabelPadding
		box := Rect{
			X: frame.X - float64(s.order)*step,
			Y: centerY - h/2,
			W: cfg.LabelH,
			H: h,
		}
		labels = append(labels, Label{
			Kind:     s.kind,
			Text:     text,
			Box:      box,
			TextX:    box.X + cfg.LabelH/2 + cfg.LabelFontSize*0.35,
			TextY:    box.Bottom() - cfg.LabelPadding,
			Rotation: -90,
		})
	}
	return labels
}

// computeStrips returns nil when the print fits a single strip.
func computeStrips(frame Rect, g geometry.PrintGeometry, stripCm, scale float64) *Strips {
	if stripCm <= 0 || g.PrintW <= stripCm {
		return nil
	}
	count := int(math.Ceil(g.PrintW/stripCm - 1e-9))
	s := &Strips{
		Count:     count,
		WidthCm:   stripCm,
		OverageCm: math.Round((float64(count)*stripCm-g.PrintW)*10) / 10,
	}
	for i := 1; i < count; i++ {
		s.Boundaries = append(s.Boundaries, frame.X+float64(i)*stripCm*scale)
	}
	return s
}

// FormatCm formats a centimeter value with at most one decimal.
func FormatCm(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}

// FormatLabel fills the {cm} placeholder of a label template.
func FormatLabel(tmpl string, cm float64) string {
	return strings.ReplaceAll(tmpl, "{cm}", FormatCm(cm))
}
