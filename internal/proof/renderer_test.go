package proof

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"image/color"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/kozaktomas/wallproof/internal/crop"
	"github.com/kozaktomas/wallproof/internal/database"
	"github.com/kozaktomas/wallproof/internal/geometry"
	"github.com/kozaktomas/wallproof/internal/imagestore"
	"github.com/kozaktomas/wallproof/internal/layout"
	"github.com/kozaktomas/wallproof/internal/quality"
)

// memStore serves buffers from memory.
type memStore map[string][]byte

func (m memStore) ReadBuffer(_ context.Context, ref string) ([]byte, error) {
	if data, ok := m[ref]; ok {
		return data, nil
	}
	return nil, imagestore.ErrNotFound
}

// recorder is a Backend that records the drawing operations.
type recorder struct {
	texts      []Text
	rects      []Rect
	lines      []Line
	images     []Image
	clips      int
	pageW      float64
	pageH      float64
	failImage  bool
	failFinish bool
}

func (r *recorder) StartPage(w, h float64) error {
	r.pageW, r.pageH = w, h
	return nil
}
func (r *recorder) DrawText(t Text) { r.texts = append(r.texts, t) }
func (r *recorder) DrawRect(x Rect) { r.rects = append(r.rects, x) }
func (r *recorder) DrawLine(l Line) { r.lines = append(r.lines, l) }
func (r *recorder) DrawImage(img Image) error {
	if r.failImage {
		return errors.New("unsupported image")
	}
	r.images = append(r.images, img)
	return nil
}
func (r *recorder) ClipRect(_, _, _, _ float64) { r.clips++ }
func (r *recorder) ClipEnd() {}
func (r *recorder) TextWidth(text string, size float64, bold bool) float64 {
	return helveticaWidth(text, size, bold)
}
func (r *recorder) Finish(w io.Writer) error {
	if r.failFinish {
		return errors.New("writer broken")
	}
	_, err := w.Write([]byte("%PDF-recorded"))
	return err
}

func (r *recorder) find(prefix string) (Text, bool) {
	for _, t := range r.texts {
		if strings.HasPrefix(t.Text, prefix) {
			return t, true
		}
	}
	return Text{}, false
}

func (r *recorder) contains(substr string) bool {
	for _, t := range r.texts {
		if strings.Contains(t.Text, substr) {
			return true
		}
	}
	return false
}

func recording(rec *recorder) Option {
	return WithBackendFactory(func() (Backend, error) { return rec, nil })
}

func testJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 120, B: 40, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

// rotatedJPEG returns a w x h JPEG tagged with EXIF orientation 6, which
// displays as h x w.
func rotatedJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	raw := testJPEG(t, w, h)
	tiff := []byte("MM\x00\x2a\x00\x00\x00\x08")
	tiff = binary.BigEndian.AppendUint16(tiff, 1)
	tiff = append(tiff, 0x01, 0x12, 0x00, 0x03, 0x00, 0x00, 0x00, 0x01, 0x00, 0x06, 0x00, 0x00)
	tiff = binary.BigEndian.AppendUint32(tiff, 0)
	payload := append([]byte("Exif\x00\x00"), tiff...)

	out := append([]byte{}, raw[:2]...)
	out = append(out, 0xff, 0xe1)
	out = binary.BigEndian.AppendUint16(out, uint16(len(payload)+2))
	out = append(out, payload...)
	return append(out, raw[2:]...)
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 20, G: 20, B: 120, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func testRecord() database.Configuration {
	return database.Configuration{
		ID:        "550e8400-e29b-41d4-a716-446655440000",
		Wall:      geometry.Size{WidthCm: 300, HeightCm: 250},
		Print:     geometry.Size{WidthCm: 310, HeightCm: 260},
		Price:     &database.Price{PerM2: 39.9, Total: 321.59},
		Image:     database.Image{URL: "/uploads/a.jpg", Filename: "holiday.jpg", MimeType: "image/jpeg"},
		Transform: database.DefaultTransform(),
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

var fixedClock = func() time.Time { return time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC) }

func pdfPageCount(t *testing.T, data []byte) int {
	t.Helper()
	ctx, err := api.ReadAndValidate(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		t.Fatalf("PDF structure validation failed: %v", err)
	}
	return ctx.PageCount
}

func TestRender_RichBackendProducesPDF(t *testing.T) {
	store := memStore{"/uploads/a.jpg": testJPEG(t, 1200, 900)}
	r := NewRenderer(WithImageSource(store), WithClock(fixedClock), WithLogo(testPNG(t, 60, 20)))

	res, err := r.Render(context.Background(), testRecord(), "7K3M9QZP")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if res.FallbackUsed {
		t.Fatalf("unexpected fallback, warnings: %v", res.Report.Warnings)
	}
	if !bytes.HasPrefix(res.PDF, []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}
	if pages := pdfPageCount(t, res.PDF); pages != 1 {
		t.Errorf("expected 1 page, got %d", pages)
	}
	if res.Report.Placeholder {
		t.Errorf("unexpected placeholder, warnings: %v", res.Report.Warnings)
	}
}

func TestRender_MinimalBackendOnFactoryFailure(t *testing.T) {
	store := memStore{"/uploads/a.jpg": testJPEG(t, 600, 450)}
	r := NewRenderer(
		WithImageSource(store),
		WithClock(fixedClock),
		WithBackendFactory(func() (Backend, error) { return nil, errors.New("font missing") }),
	)

	res, err := r.Render(context.Background(), testRecord(), "7K3M9QZP")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !res.FallbackUsed || !res.Report.FallbackUsed {
		t.Fatal("expected fallback to the minimal backend")
	}
	if !bytes.HasPrefix(res.PDF, []byte("%PDF-1.4")) {
		t.Fatalf("unexpected header %q", res.PDF[:8])
	}
	if pages := pdfPageCount(t, res.PDF); pages != 1 {
		t.Errorf("expected 1 page, got %d", pages)
	}
}

func TestRender_MinimalBackendOnFinishFailure(t *testing.T) {
	store := memStore{"/uploads/a.jpg": testJPEG(t, 600, 450)}
	rec := &recorder{failFinish: true}
	r := NewRenderer(WithImageSource(store), WithClock(fixedClock), recording(rec))

	res, err := r.Render(context.Background(), testRecord(), "CODE")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !res.FallbackUsed {
		t.Error("expected FallbackUsed after finish failure")
	}
	if len(rec.texts) == 0 {
		t.Error("rich backend should have been drawn on before failing")
	}
}

func TestRender_PlaceholderWhenImageMissing(t *testing.T) {
	rec := &recorder{}
	r := NewRenderer(WithImageSource(memStore{}), WithClock(fixedClock), recording(rec))

	res, err := r.Render(context.Background(), testRecord(), "CODE")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !res.Report.Placeholder {
		t.Error("expected placeholder in report")
	}
	if res.FallbackUsed {
		t.Error("a missing image must not trigger the fallback backend")
	}
	if len(rec.images) != 0 {
		t.Errorf("expected no images, got %d", len(rec.images))
	}
	if !rec.contains(DefaultTexts().Placeholder) {
		t.Error("placeholder label not drawn")
	}
	if _, ok := rec.find("crop left="); ok {
		t.Error("crop line must not be drawn without a crop source")
	}
	if res.Report.Quality.Tier != quality.None {
		t.Errorf("unknown image size must not be classified, got %v", res.Report.Quality.Tier)
	}
	if rec.contains("Warning:") || rec.contains("Note:") {
		t.Error("resolution warning drawn for a proof without an image")
	}
	if rec.contains("0 x 0 px") {
		t.Error("quality row drawn for a proof without an image")
	}
}

func TestRender_PlaceholderWhenImageDrawFails(t *testing.T) {
	store := memStore{"/uploads/a.jpg": testJPEG(t, 600, 450)}
	rec := &recorder{failImage: true}
	r := NewRenderer(WithImageSource(store), WithClock(fixedClock), recording(rec))

	res, err := r.Render(context.Background(), testRecord(), "CODE")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !res.Report.Placeholder || res.FallbackUsed {
		t.Errorf("expected placeholder without fallback, got placeholder=%v fallback=%v",
			res.Report.Placeholder, res.FallbackUsed)
	}
}

func TestRender_CropLineUnderCode(t *testing.T) {
	store := memStore{"/uploads/a.jpg": testJPEG(t, 800, 600)}
	rec := &recorder{}
	r := NewRenderer(WithImageSource(store), WithClock(fixedClock), recording(rec))

	res, err := r.Render(context.Background(), testRecord(), "7K3M9QZP")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	code, ok := rec.find("Code 7K3M9QZP")
	if !ok {
		t.Fatal("code line not drawn")
	}
	cropLine, ok := rec.find("crop left=")
	if !ok {
		t.Fatal("crop line not drawn")
	}
	if !strings.Contains(cropLine.Text, res.Report.Crop.String()) || !strings.HasSuffix(cropLine.Text, "of 800x600") {
		t.Errorf("unexpected crop line %q", cropLine.Text)
	}
	if cropLine.Y <= code.Y {
		t.Errorf("crop line (y=%v) must be below the code (y=%v)", cropLine.Y, code.Y)
	}

	cfg := layout.DefaultConfig()
	right := cfg.PageW - cfg.Margin
	for _, tx := range []Text{code, cropLine} {
		end := tx.X + helveticaWidth(tx.Text, tx.Size, tx.Bold)
		if math.Abs(end-right) > 0.01 {
			t.Errorf("%q ends at %v, want right-aligned at %v", tx.Text, end, right)
		}
	}
}

func TestRender_PrefersOriginalForCrop(t *testing.T) {
	rec := testRecord()
	rec.Image = database.Image{
		Preview:     "/uploads/a-prev.jpg",
		URL:         "/uploads/a.jpg",
		OriginalURL: "/uploads/a-orig.jpg",
		Filename:    "holiday.jpg",
	}
	rec.Transform.NaturalWidth, rec.Transform.NaturalHeight = 10, 10
	store := memStore{
		"/uploads/a-prev.jpg": testJPEG(t, 200, 150),
		"/uploads/a-orig.jpg": testJPEG(t, 1600, 1200),
	}
	r := NewRenderer(WithImageSource(store), WithClock(fixedClock), recording(&recorder{}))

	res, err := r.Render(context.Background(), rec, "CODE")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	src := res.Report.Source
	if src.DisplayRef != "/uploads/a-prev.jpg" || src.CropRef != "/uploads/a-orig.jpg" {
		t.Errorf("unexpected refs display=%q crop=%q", src.DisplayRef, src.CropRef)
	}
	if src.NaturalFrom != "original" || src.NaturalW != 1600 || src.NaturalH != 1200 {
		t.Errorf("expected natural size probed from original, got %+v", src)
	}
	c := res.Report.Crop
	if c.Left < 0 || c.Top < 0 || c.Left+c.Width > 1600 || c.Top+c.Height > 1200 {
		t.Errorf("crop %v not contained in source", c)
	}
	want := 310.0 / 260.0
	if got := float64(c.Width) / float64(c.Height); math.Abs(got-want) > 0.01 {
		t.Errorf("crop aspect %v, want %v", got, want)
	}
}

func TestRender_CropInDisplayedOrientation(t *testing.T) {
	rec := testRecord()
	rec.Wall = geometry.Size{WidthCm: 90, HeightCm: 190}
	rec.Print = geometry.Size{WidthCm: 100, HeightCm: 200}
	store := memStore{"/uploads/a.jpg": rotatedJPEG(t, 400, 200)}
	r := NewRenderer(WithImageSource(store), WithClock(fixedClock), recording(&recorder{}))

	res, err := r.Render(context.Background(), rec, "CODE")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	src := res.Report.Source
	if src.CropW != 200 || src.CropH != 400 {
		t.Errorf("expected crop source 200x400, got %dx%d", src.CropW, src.CropH)
	}
	if src.NaturalW != 200 || src.NaturalH != 400 {
		t.Errorf("expected natural size 200x400, got %dx%d", src.NaturalW, src.NaturalH)
	}
	want := crop.Window{Width: 200, Height: 400}
	if res.Report.Crop != want {
		t.Errorf("crop = %v, want %v", res.Report.Crop, want)
	}
	if res.Report.Output.SafeFallback || res.Report.Output.Extracted != want {
		t.Errorf("expected exact extraction of %v, got %v (safe fallback %v)",
			want, res.Report.Output.Extracted, res.Report.Output.SafeFallback)
	}
}

func TestRender_NaturalSizeFallbacks(t *testing.T) {
	rec := testRecord()
	rec.Image = database.Image{Preview: "/p.jpg", Filename: "x.jpg"}
	store := memStore{"/p.jpg": testJPEG(t, 300, 200)}

	rec.Transform.NaturalWidth, rec.Transform.NaturalHeight = 6000, 4000
	r := NewRenderer(WithImageSource(store), WithClock(fixedClock), recording(&recorder{}))
	res, err := r.Render(context.Background(), rec, "CODE")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if res.Report.Source.NaturalFrom != "transform" || res.Report.Source.NaturalW != 6000 {
		t.Errorf("expected transform natural size, got %+v", res.Report.Source)
	}

	rec.Transform.NaturalWidth, rec.Transform.NaturalHeight = 0, 0
	res, err = r.Render(context.Background(), rec, "CODE")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if res.Report.Source.NaturalFrom != "display" || res.Report.Source.NaturalW != 300 {
		t.Errorf("expected display natural size, got %+v", res.Report.Source)
	}
}

func TestRender_Disclaimer(t *testing.T) {
	texts := quality.DefaultTexts()
	store := memStore{"/uploads/a.jpg": testJPEG(t, 400, 300)}

	t.Run("platform image gets the short variant", func(t *testing.T) {
		rec := &recorder{}
		r := NewRenderer(
			WithImageSource(store),
			WithClock(fixedClock),
			WithPlatformPredicate(func(string) bool { return true }),
			recording(rec),
		)
		res, err := r.Render(context.Background(), testRecord(), "CODE")
		if err != nil {
			t.Fatalf("Render() error: %v", err)
		}
		if res.Report.Quality.Tier != quality.None {
			t.Errorf("platform image must not be classified, got %v", res.Report.Quality.Tier)
		}
		if !rec.contains("This proof shows an image") {
			t.Error("platform paragraph not drawn")
		}
		if rec.contains("By approving this proof") || rec.contains("Warning:") {
			t.Error("upload paragraphs drawn for a platform image")
		}
	})

	t.Run("low resolution upload gets the red warning", func(t *testing.T) {
		rec := &recorder{}
		r := NewRenderer(WithImageSource(store), WithClock(fixedClock), recording(rec))
		res, err := r.Render(context.Background(), testRecord(), "CODE")
		if err != nil {
			t.Fatalf("Render() error: %v", err)
		}
		if res.Report.Quality.Tier != quality.Red {
			t.Fatalf("expected red tier, got %v", res.Report.Quality.Tier)
		}
		warning, ok := rec.find("Warning:")
		if !ok {
			t.Fatal("red warning not drawn")
		}
		if warning.Color != texts.RedColor || !warning.Bold {
			t.Errorf("warning drawn with color %+v bold=%v", warning.Color, warning.Bold)
		}
		if res.Report.DisclaimerFontSize <= 0 {
			t.Error("disclaimer font size not reported")
		}
	})
}

func TestRender_IncompleteConfiguration(t *testing.T) {
	rec := &recorder{}
	r := NewRenderer(WithClock(fixedClock), recording(rec))

	res, err := r.Render(context.Background(), database.Configuration{Transform: database.DefaultTransform()}, "")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !res.Report.Geometry.Fallback {
		t.Error("expected placeholder geometry")
	}
	if len(res.Report.Warnings) == 0 {
		t.Error("expected a warning about the missing size")
	}
	if !res.Report.Placeholder {
		t.Error("expected image placeholder")
	}
}

func TestRender_Strips(t *testing.T) {
	rec := &recorder{}
	record := testRecord()
	record.StripWidthCm = 100
	r := NewRenderer(WithImageSource(memStore{}), WithClock(fixedClock), recording(rec))

	res, err := r.Render(context.Background(), record, "CODE")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if res.Report.Strips == nil || res.Report.Strips.Count != 4 {
		t.Fatalf("expected 4 strips, got %+v", res.Report.Strips)
	}
	dashed := 0
	for _, l := range rec.lines {
		if len(l.Dash) > 0 {
			dashed++
		}
	}
	if dashed != 3 {
		t.Errorf("expected 3 strip guide lines, got %d", dashed)
	}
	if !rec.contains(newFormatter(DefaultTexts()).cm(90)) {
		t.Error("overage not listed")
	}
}

func TestRender_RotatedHeightLabels(t *testing.T) {
	rec := &recorder{}
	r := NewRenderer(WithImageSource(memStore{}), WithClock(fixedClock), recording(rec))
	if _, err := r.Render(context.Background(), testRecord(), "CODE"); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	label, ok := rec.find("Print height 260 cm")
	if !ok {
		t.Fatal("print height label not drawn")
	}
	if label.Rotation != -90 {
		t.Errorf("expected rotated label, got rotation %v", label.Rotation)
	}
	if _, ok := rec.find("Wall width 300 cm"); !ok {
		t.Error("wall width label not drawn")
	}
}

func TestRender_BaseURL(t *testing.T) {
	rec := testRecord()
	rec.Image = database.Image{URL: "uploads/a.jpg"}
	store := memStore{"https://cdn.example.com/uploads/a.jpg": testJPEG(t, 400, 300)}
	r := NewRenderer(
		WithImageSource(store),
		WithBaseURL("https://cdn.example.com/"),
		WithClock(fixedClock),
		recording(&recorder{}),
	)
	res, err := r.Render(context.Background(), rec, "CODE")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if res.Report.Placeholder {
		t.Errorf("expected the relative reference to resolve, warnings: %v", res.Report.Warnings)
	}
}

func TestRender_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewRenderer(WithImageSource(memStore{}))
	if _, err := r.Render(ctx, testRecord(), "CODE"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRender_DebugOverlay(t *testing.T) {
	plain, debug := &recorder{}, &recorder{}
	for _, tc := range []struct {
		rec     *recorder
		enabled bool
	}{{plain, false}, {debug, true}} {
		r := NewRenderer(WithClock(fixedClock), WithDebugOverlay(tc.enabled), recording(tc.rec))
		if _, err := r.Render(context.Background(), testRecord(), "CODE"); err != nil {
			t.Fatalf("Render() error: %v", err)
		}
	}
	if len(debug.rects) <= len(plain.rects) {
		t.Errorf("debug overlay drew no boxes (%d vs %d)", len(debug.rects), len(plain.rects))
	}
}
