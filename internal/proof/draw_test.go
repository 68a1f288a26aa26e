package proof

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kozaktomas/wallproof/internal/database"
	"github.com/kozaktomas/wallproof/internal/geometry"
	"github.com/kozaktomas/wallproof/internal/layout"
	"github.com/kozaktomas/wallproof/internal/quality"
)

func TestMinimalBackend_Document(t *testing.T) {
	b := NewMinimalBackend()
	if err := b.Finish(&bytes.Buffer{}); err == nil {
		t.Error("expected error when finishing without a page")
	}
	if err := b.StartPage(layout.PageW, layout.PageH); err != nil {
		t.Fatalf("StartPage() error: %v", err)
	}
	if err := b.StartPage(layout.PageW, layout.PageH); err == nil {
		t.Error("expected error for a second page")
	}

	b.DrawText(Text{X: 10, Y: 20, Text: `Price (per m²) \ total`, Size: 8})
	b.DrawText(Text{X: 10, Y: 200, Text: "rotated", Size: 7, Rotation: -90})
	b.DrawRect(Rect{X: 5, Y: 5, W: 50, H: 20, Stroke: rgbPtr(quality.RGB{R: 255})})
	b.DrawLine(Line{X1: 0, Y1: 0, X2: 10, Y2: 10, Dash: []float64{4, 3}})
	b.ClipRect(0, 0, 10, 10)
	b.ClipEnd()
	if err := b.DrawImage(Image{X: 100, Y: 100, W: 200, H: 100, Label: "holiday.jpg"}); err != nil {
		t.Fatalf("DrawImage() error: %v", err)
	}

	var out bytes.Buffer
	if err := b.Finish(&out); err != nil {
		t.Fatalf("Finish() error: %v", err)
	}
	doc := out.String()
	for _, want := range []string{
		"%PDF-1.4",
		"/MediaBox [0 0 841.89 595.28]",
		`(Price \(per m` + "\xb2" + `\) \\ total) Tj`,
		"0 1 -1 0 10.00 395.28 Tm",
		"[4.00 3.00] 0 d",
		"re W n",
		"(holiday.jpg) Tj",
		"%%EOF",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q", want)
		}
	}
	if pages := pdfPageCount(t, out.Bytes()); pages != 1 {
		t.Errorf("expected 1 page, got %d", pages)
	}
}

func TestHelveticaWidth(t *testing.T) {
	if got := helveticaWidth("", 10, false); got != 0 {
		t.Errorf("empty text width = %v", got)
	}
	// "Hi" = 722 + 222 units
	if got := helveticaWidth("Hi", 10, false); got != 9.44 {
		t.Errorf("width of Hi = %v, want 9.44", got)
	}
	if helveticaWidth("Hi", 10, true) <= helveticaWidth("Hi", 10, false) {
		t.Error("bold text must be wider")
	}
}

func TestWrapAndTruncate(t *testing.T) {
	m := layout.ApproxMeasurer{}
	lines := wrap(m, "aaaa bbbb cccc dddd", 10, false, 50)
	if len(lines) != 2 || lines[0] != "aaaa bbbb" || lines[1] != "cccc dddd" {
		t.Errorf("unexpected wrap %q", lines)
	}
	if got := wrap(m, "averyveryverylongword", 10, false, 20); len(got) != 1 {
		t.Errorf("long word must stay on one line, got %q", got)
	}

	if got := truncate(m, "short", 10, false, 100); got != "short" {
		t.Errorf("truncate kept %q", got)
	}
	got := truncate(m, "a rather long product title", 10, false, 60)
	if !strings.HasSuffix(got, "...") || m.TextWidth(got, 10, false) > 60 {
		t.Errorf("truncate produced %q", got)
	}
	if truncate(m, "x", 10, false, 0) != "" {
		t.Error("zero width must truncate to nothing")
	}
}

func TestFitDisclaimer(t *testing.T) {
	r := NewRenderer()
	segs := quality.BuildDisclaimer(quality.DefaultTexts(), quality.Assessment{Tier: quality.Red}, false)

	roomy := r.fitDisclaimer(layout.ApproxMeasurer{}, segs, 500)
	if roomy.size != r.layout.DisclaimerFontSize || roomy.overflow {
		t.Errorf("expected full size without overflow, got %+v", roomy)
	}
	if roomy.height > r.layout.DisclaimerMaxH {
		t.Errorf("height %v exceeds max %v", roomy.height, r.layout.DisclaimerMaxH)
	}

	tight := r.fitDisclaimer(layout.ApproxMeasurer{}, segs, 5)
	if tight.size != r.layout.MinDisclaimerFontSize || !tight.overflow {
		t.Errorf("expected overflow at minimum size, got size=%v overflow=%v", tight.size, tight.overflow)
	}
	if len(tight.lines) == 0 {
		t.Error("overflowing disclaimer must still be drawn")
	}
}

func TestBuildTables(t *testing.T) {
	p := &page{
		rec: database.Configuration{
			Wall:  geometry.Size{WidthCm: 150, HeightCm: 100},
			Print: geometry.Size{WidthCm: 160, HeightCm: 110},
			Price: &database.Price{PerM2: 40},
		},
		code: "7K3M9QZP",
	}
	p.layout = layout.Compute(layout.DefaultConfig(), p.rec.Geometry(), 0, nil)
	set := buildTables(DefaultTexts(), p)

	if len(set.data) != 2 {
		t.Fatalf("expected 2 data tables, got %d", len(set.data))
	}
	price := set.data[1]
	if !price.Rows[len(price.Rows)-1].Note {
		t.Error("expected minimum area note for a 1.76 m² print")
	}
	// total is computed from the billed minimum of 3 m²
	if got := price.Rows[2].Value; got != "120.00 EUR" {
		t.Errorf("total = %q, want 120.00 EUR", got)
	}
	if got := set.side.Rows[0]; got.Label != "Reference" || got.Value != "7K3M9QZP" {
		t.Errorf("unexpected first info row %+v", got)
	}
	if got := set.rows(); got != 4 {
		t.Errorf("rows() = %d, want 4", got)
	}
}
