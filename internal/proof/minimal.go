package proof

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/kozaktomas/wallproof/internal/quality"
)

// MinimalBackend writes a single-page PDF 1.4 by hand using the standard
// Helvetica fonts. Rasters are not embedded; images are drawn as labelled
// boxes. It has no failure modes beyond the output writer.
type MinimalBackend struct {
	w, h    float64
	content bytes.Buffer
	started bool
	enc     *encoding.Encoder
}

// NewMinimalBackend creates the fallback backend.
func NewMinimalBackend() *MinimalBackend {
	return &MinimalBackend{enc: encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())}
}

// StartPage implements Backend.
func (b *MinimalBackend) StartPage(w, h float64) error {
	if b.started {
		return errors.New("minimal backend supports a single page")
	}
	b.w, b.h = w, h
	b.started = true
	return nil
}

// y converts a top-left Y to PDF user space.
func (b *MinimalBackend) y(v float64) float64 {
	return b.h - v
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func rgb(c quality.RGB) string {
	return num(float64(c.R)/255) + " " + num(float64(c.G)/255) + " " + num(float64(c.B)/255)
}

// DrawText implements Backend.
func (b *MinimalBackend) DrawText(t Text) {
	font := "/F1"
	if t.Bold {
		font = "/F2"
	}
	fmt.Fprintf(&b.content, "BT %s %s Tf %s rg ", font, num(t.Size), rgb(t.Color))
	if t.Rotation == -90 {
		fmt.Fprintf(&b.content, "0 1 -1 0 %s %s Tm ", num(t.X), num(b.y(t.Y)))
	} else {
		fmt.Fprintf(&b.content, "1 0 0 1 %s %s Tm ", num(t.X), num(b.y(t.Y)))
	}
	fmt.Fprintf(&b.content, "(%s) Tj ET\n", b.escape(t.Text))
}

// DrawRect implements Backend.
func (b *MinimalBackend) DrawRect(r Rect) {
	op := ""
	switch {
	case r.Fill != nil && r.Stroke != nil:
		op = "B"
	case r.Fill != nil:
		op = "f"
	case r.Stroke != nil:
		op = "S"
	default:
		return
	}
	b.content.WriteString("q ")
	if r.Fill != nil {
		fmt.Fprintf(&b.content, "%s rg ", rgb(*r.Fill))
	}
	if r.Stroke != nil {
		fmt.Fprintf(&b.content, "%s RG %s w ", rgb(*r.Stroke), num(lineWidth(r.LineWidth)))
	}
	fmt.Fprintf(&b.content, "%s %s %s %s re %s Q\n", num(r.X), num(b.y(r.Y+r.H)), num(r.W), num(r.H), op)
}

// DrawLine implements Backend.
func (b *MinimalBackend) DrawLine(l Line) {
	fmt.Fprintf(&b.content, "q %s RG %s w ", rgb(l.Color), num(lineWidth(l.Width)))
	if len(l.Dash) > 0 {
		parts := make([]string, len(l.Dash))
		for i, d := range l.Dash {
			parts[i] = num(d)
		}
		fmt.Fprintf(&b.content, "[%s] 0 d ", strings.Join(parts, " "))
	}
	fmt.Fprintf(&b.content, "%s %s m %s %s l S Q\n", num(l.X1), num(b.y(l.Y1)), num(l.X2), num(b.y(l.Y2)))
}

// DrawImage implements Backend by drawing a labelled box.
func (b *MinimalBackend) DrawImage(img Image) error {
	grey := quality.RGB{R: 200, G: 200, B: 200}
	b.DrawRect(Rect{X: img.X, Y: img.Y, W: img.W, H: img.H, Fill: rgbPtr(quality.RGB{R: 240, G: 240, B: 240}), Stroke: &grey})
	b.DrawLine(Line{X1: img.X, Y1: img.Y, X2: img.X + img.W, Y2: img.Y + img.H, Color: grey})
	b.DrawLine(Line{X1: img.X, Y1: img.Y + img.H, X2: img.X + img.W, Y2: img.Y, Color: grey})
	if img.Label != "" {
		const size = 9
		w := b.TextWidth(img.Label, size, false)
		b.DrawText(Text{
			X:     img.X + (img.W-w)/2,
			Y:     img.Y + img.H/2 + size*0.35,
			Text:  img.Label,
			Size:  size,
			Color: quality.RGB{R: 90, G: 90, B: 90},
		})
	}
	return nil
}

// ClipRect implements Backend.
func (b *MinimalBackend) ClipRect(x, y, w, h float64) {
	fmt.Fprintf(&b.content, "q %s %s %s %s re W n\n", num(x), num(b.y(y+h)), num(w), num(h))
}

// ClipEnd implements Backend.
func (b *MinimalBackend) ClipEnd() {
	b.content.WriteString("Q\n")
}

// TextWidth implements Backend using Helvetica advance widths.
func (b *MinimalBackend) TextWidth(text string, size float64, bold bool) float64 {
	return helveticaWidth(text, size, bold)
}

// escape encodes s as WinAnsi and escapes PDF string delimiters.
func (b *MinimalBackend) escape(s string) string {
	encoded, err := b.enc.String(s)
	if err != nil {
		encoded = asciiOnly(s)
	}
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`, "\r", "", "\n", " ")
	return r.Replace(encoded)
}

func asciiOnly(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r < 0x80 {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('?')
		}
	}
	return sb.String()
}

// Finish implements Backend.
func (b *MinimalBackend) Finish(w io.Writer) error {
	if !b.started {
		return errors.New("no page started")
	}
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %s %s] "+
			"/Resources << /Font << /F1 4 0 R /F2 5 0 R >> >> /Contents 6 0 R >>", num(b.w), num(b.h)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica-Bold /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", b.content.Len(), b.content.String()),
	}

	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n", len(objects)+1)
	out.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&out, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	if _, err := w.Write(out.Bytes()); err != nil {
		return fmt.Errorf("failed to write minimal proof: %w", err)
	}
	return nil
}

// helveticaWidths are the Helvetica advance widths (1/1000 em) for ASCII 32..126.
var helveticaWidths = [95]int{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333, 278, 278, // space../
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, // 0..9
	278, 278, 584, 584, 584, 556, 1015, // :..@
	667, 667, 722, 722, 667, 611, 778, 722, 278, 500, 667, 556, 833, // A..M
	722, 778, 667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, // N..Z
	278, 278, 278, 469, 556, 333, // [..`
	556, 556, 500, 556, 556, 278, 556, 556, 222, 222, 500, 222, 833, // a..m
	556, 556, 556, 556, 333, 500, 278, 556, 500, 722, 500, 500, 500, // n..z
	334, 260, 334, 584, // {..~
}

// helveticaWidth measures text in points; bold is approximated.
func helveticaWidth(text string, size float64, bold bool) float64 {
	total := 0
	for _, r := range text {
		if r >= 32 && r <= 126 {
			total += helveticaWidths[r-32]
		} else {
			total += 556
		}
	}
	w := float64(total) * size / 1000
	if bold {
		w *= 1.06
	}
	return w
}
