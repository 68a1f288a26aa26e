package proof

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"codeberg.org/go-pdf/fpdf"
)

const (
	coreFamily = "Helvetica"
	utf8Family = "ProofSans"
)

// FPDFOptions configures the rich PDF backend.
type FPDFOptions struct {
	// FontPath is an optional TrueType font; without it the core Helvetica
	// font is used with cp1252 translation.
	FontPath     string
	BoldFontPath string
	Title        string
	CreationDate time.Time
}

// FPDFBackend draws the proof with codeberg.org/go-pdf/fpdf.
type FPDFBackend struct {
	pdf    *fpdf.Fpdf
	family string
	tr     func(string) string
	images int
}

// NewFPDFBackend creates the rich backend. Font loading failures are returned
// so the caller can fall back.
func NewFPDFBackend(opts FPDFOptions) (*FPDFBackend, error) {
	pdf := fpdf.New("L", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCompression(true)
	pdf.SetCreator("wallproof", true)
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	if !opts.CreationDate.IsZero() {
		pdf.SetCreationDate(opts.CreationDate)
	}

	b := &FPDFBackend{pdf: pdf, family: coreFamily}
	if opts.FontPath != "" {
		bold := opts.BoldFontPath
		if bold == "" {
			bold = opts.FontPath
		}
		pdf.AddUTF8Font(utf8Family, "", opts.FontPath)
		pdf.AddUTF8Font(utf8Family, "B", bold)
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("failed to load font %s: %w", opts.FontPath, err)
		}
		b.family = utf8Family
		b.tr = func(s string) string { return s }
	} else {
		b.tr = pdf.UnicodeTranslatorFromDescriptor("")
	}
	return b, nil
}

// StartPage implements Backend.
func (b *FPDFBackend) StartPage(w, h float64) error {
	b.pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})
	return b.pdf.Error()
}

func (b *FPDFBackend) setFont(size float64, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	b.pdf.SetFont(b.family, style, size)
}

// DrawText implements Backend.
func (b *FPDFBackend) DrawText(t Text) {
	b.setFont(t.Size, t.Bold)
	b.pdf.SetTextColor(int(t.Color.R), int(t.Color.G), int(t.Color.B))
	if t.Rotation != 0 {
		b.pdf.TransformBegin()
		// fpdf rotates counter-clockwise
		b.pdf.TransformRotate(-t.Rotation, t.X, t.Y)
		b.pdf.Text(t.X, t.Y, b.tr(t.Text))
		b.pdf.TransformEnd()
		return
	}
	b.pdf.Text(t.X, t.Y, b.tr(t.Text))
}

// DrawRect implements Backend.
func (b *FPDFBackend) DrawRect(r Rect) {
	style := ""
	if r.Fill != nil {
		b.pdf.SetFillColor(int(r.Fill.R), int(r.Fill.G), int(r.Fill.B))
		style += "F"
	}
	if r.Stroke != nil {
		b.pdf.SetDrawColor(int(r.Stroke.R), int(r.Stroke.G), int(r.Stroke.B))
		b.pdf.SetLineWidth(lineWidth(r.LineWidth))
		style += "D"
	}
	if style == "" {
		return
	}
	b.pdf.Rect(r.X, r.Y, r.W, r.H, style)
}

// DrawLine implements Backend.
func (b *FPDFBackend) DrawLine(l Line) {
	b.pdf.SetDrawColor(int(l.Color.R), int(l.Color.G), int(l.Color.B))
	b.pdf.SetLineWidth(lineWidth(l.Width))
	if len(l.Dash) > 0 {
		b.pdf.SetDashPattern(l.Dash, 0)
	}
	b.pdf.Line(l.X1, l.Y1, l.X2, l.Y2)
	if len(l.Dash) > 0 {
		b.pdf.SetDashPattern([]float64{}, 0)
	}
}

// DrawImage implements Backend.
func (b *FPDFBackend) DrawImage(img Image) error {
	b.images++
	name := fmt.Sprintf("img%d", b.images)
	opts := fpdf.ImageOptions{ImageType: img.Type, ReadDpi: false}
	info := b.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Data))
	if info == nil || b.pdf.Err() {
		err := b.pdf.Error()
		// a failed image registration must not poison the rest of the document
		b.pdf.ClearError()
		return fmt.Errorf("failed to register image %s: %w", img.Label, err)
	}
	b.pdf.ImageOptions(name, img.X, img.Y, img.W, img.H, false, opts, 0, "")
	return nil
}

// ClipRect implements Backend.
func (b *FPDFBackend) ClipRect(x, y, w, h float64) {
	b.pdf.ClipRect(x, y, w, h, false)
}

// ClipEnd implements Backend.
func (b *FPDFBackend) ClipEnd() {
	b.pdf.ClipEnd()
}

// TextWidth implements Backend and layout.Measurer.
func (b *FPDFBackend) TextWidth(text string, size float64, bold bool) float64 {
	b.setFont(size, bold)
	return b.pdf.GetStringWidth(b.tr(text))
}

// Finish implements Backend.
func (b *FPDFBackend) Finish(w io.Writer) error {
	if err := b.pdf.Error(); err != nil {
		return fmt.Errorf("failed to render proof: %w", err)
	}
	if err := b.pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write proof: %w", err)
	}
	return nil
}

func lineWidth(w float64) float64 {
	if w <= 0 {
		return 0.5
	}
	return w
}
