// Package proof renders the single-page print proof of a wallpaper
// configuration: header, cropped preview with frames and dimension labels,
// measurement and price tables and the disclaimer footer.
package proof

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"github.com/kozaktomas/wallproof/internal/compositor"
	"github.com/kozaktomas/wallproof/internal/constants"
	"github.com/kozaktomas/wallproof/internal/crop"
	"github.com/kozaktomas/wallproof/internal/database"
	"github.com/kozaktomas/wallproof/internal/imagestore"
	"github.com/kozaktomas/wallproof/internal/layout"
	"github.com/kozaktomas/wallproof/internal/quality"
)

// ErrBackendUnavailable is returned when neither the rich nor the minimal
// backend could produce a document.
var ErrBackendUnavailable = errors.New("no rendering backend available")

// Result is a rendered proof.
type Result struct {
	PDF []byte
	// FallbackUsed is set when the minimal backend produced the document.
	FallbackUsed bool
	Report       Report
}

// Renderer produces proofs. It holds no per-request state and is safe for
// concurrent use.
type Renderer struct {
	images     imagestore.Reader
	isPlatform func(string) bool
	newBackend BackendFactory
	layout     layout.Config
	texts      Texts
	disclaimer quality.Texts
	style      Style
	logo       *logoImage
	rasterDPI  float64
	now        func() time.Time
	baseURL    string
	stripCm    float64
	debug      bool
}

type logoImage struct {
	png  []byte
	w, h int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithImageSource sets the image store the buffers are read from.
func WithImageSource(r imagestore.Reader) Option {
	return func(rd *Renderer) { rd.images = r }
}

// WithPlatformPredicate sets the check for images hosted by the commerce platform.
func WithPlatformPredicate(fn func(url string) bool) Option {
	return func(rd *Renderer) { rd.isPlatform = fn }
}

// WithBackendFactory replaces the rich document backend.
func WithBackendFactory(f BackendFactory) Option {
	return func(rd *Renderer) { rd.newBackend = f }
}

// WithLayoutConfig sets the page geometry.
func WithLayoutConfig(cfg layout.Config) Option {
	return func(rd *Renderer) { rd.layout = cfg }
}

// WithTexts sets the fixed proof labels.
func WithTexts(t Texts) Option {
	return func(rd *Renderer) { rd.texts = t }
}

// WithDisclaimerTexts sets the disclaimer paragraphs.
func WithDisclaimerTexts(t quality.Texts) Option {
	return func(rd *Renderer) { rd.disclaimer = t }
}

// WithStyle sets the colors and stroke widths.
func WithStyle(s Style) Option {
	return func(rd *Renderer) { rd.style = s }
}

// WithLogo sets the header logo. Any decodable image is accepted and
// re-encoded as PNG; an undecodable logo is skipped with a warning.
func WithLogo(data []byte) Option {
	return func(rd *Renderer) {
		if len(data) == 0 {
			return
		}
		img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
		if err != nil {
			log.Printf("WARNING: failed to decode logo, proofs will have none: %v", err)
			return
		}
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			log.Printf("WARNING: failed to encode logo: %v", err)
			return
		}
		b := img.Bounds()
		rd.logo = &logoImage{png: buf.Bytes(), w: b.Dx(), h: b.Dy()}
	}
}

// WithRasterDPI sets the resolution of the embedded preview raster.
func WithRasterDPI(dpi float64) Option {
	return func(rd *Renderer) {
		if dpi > 0 {
			rd.rasterDPI = dpi
		}
	}
}

// WithClock sets the time source for the footer timestamp.
func WithClock(now func() time.Time) Option {
	return func(rd *Renderer) { rd.now = now }
}

// WithBaseURL sets the base relative image references are resolved against.
func WithBaseURL(base string) Option {
	return func(rd *Renderer) { rd.baseURL = strings.TrimRight(base, "/") }
}

// WithStripWidth sets the default strip width for records without one.
func WithStripWidth(cm float64) Option {
	return func(rd *Renderer) { rd.stripCm = cm }
}

// WithDebugOverlay draws the layout boxes on top of the page.
func WithDebugOverlay(enabled bool) Option {
	return func(rd *Renderer) { rd.debug = enabled }
}

// NewRenderer creates a renderer with the built-in defaults.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		isPlatform: func(string) bool { return false },
		layout:     layout.DefaultConfig(),
		texts:      DefaultTexts(),
		disclaimer: quality.DefaultTexts(),
		style:      DefaultStyle(),
		rasterDPI:  constants.DefaultRasterDPI,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.newBackend == nil {
		r.newBackend = FPDFFactory(FPDFOptions{Title: r.texts.Title})
	}
	return r
}

// FPDFFactory returns a factory for the rich backend.
func FPDFFactory(opts FPDFOptions) BackendFactory {
	return func() (Backend, error) {
		b, err := NewFPDFBackend(opts)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
}

func minimalFactory() (Backend, error) {
	return NewMinimalBackend(), nil
}

// sources are the resolved image buffers of a configuration.
type sources struct {
	display    []byte
	displayRef string
	crop       []byte
	cropRef    string
	// cropFromDisplay is set when no original was readable and the display
	// buffer doubles as the crop source.
	cropFromDisplay bool
}

// page is everything the drawing step needs, independent of the backend.
type page struct {
	rec        database.Configuration
	code       string
	layout     layout.Layout
	assessment quality.Assessment
	platform   bool
	vector     bool
	naturalW   int
	naturalH   int
	strip      float64
	window     crop.Window
	raster     *compositor.Result
	disclaimer []quality.Segment
	generated  time.Time
	report     *Report
}

// Render produces the proof for rec. Per-element failures are drawn as
// placeholders; an error is returned only when the context is cancelled or
// no backend can produce a document.
func (r *Renderer) Render(ctx context.Context, rec database.Configuration, code string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := r.prepare(ctx, rec, code)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	st, err := r.renderWith(r.newBackend, p, &buf)
	if err != nil {
		log.Printf("WARNING: rich backend failed for proof %s, using minimal document: %v", code, err)
		p.report.warnf("rich backend failed: %v", err)
		buf.Reset()
		st, err = r.renderWith(minimalFactory, p, &buf)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		p.report.FallbackUsed = true
	}

	p.report.DisclaimerFontSize = st.disclaimerSize
	p.report.DisclaimerOverflow = st.overflow
	p.report.LayoutWarnings = st.layoutWarnings
	p.report.Warnings = append(p.report.Warnings, st.warnings...)
	if st.imageFailed {
		p.report.Placeholder = true
	}

	return &Result{
		PDF:          buf.Bytes(),
		FallbackUsed: p.report.FallbackUsed,
		Report:       *p.report,
	}, nil
}

func (r *Renderer) renderWith(factory BackendFactory, p *page, w *bytes.Buffer) (drawStats, error) {
	b, err := factory()
	if err != nil {
		return drawStats{}, fmt.Errorf("failed to create backend: %w", err)
	}
	st, err := r.draw(b, p)
	if err != nil {
		return st, err
	}
	if err := b.Finish(w); err != nil {
		return st, err
	}
	return st, nil
}

// prepare resolves geometry, buffers, quality, crop and the composited raster.
func (r *Renderer) prepare(ctx context.Context, rec database.Configuration, code string) (*page, error) {
	g := rec.Geometry()
	p := &page{
		rec:       rec,
		code:      code,
		generated: r.now(),
		report: &Report{
			Code:            code,
			ConfigurationID: rec.ID,
			Geometry:        g,
			Warnings:        []string{},
		},
	}
	p.report.GeneratedAt = p.generated
	if g.Fallback {
		p.report.warnf("configuration has no usable wall or print size, placeholder geometry used")
	}

	p.vector = imagestore.IsVector(rec.Image.MimeType, rec.Image.Filename) ||
		imagestore.IsVector(rec.Image.DetectedMime, urlPath(rec.Image.OriginalURL))
	p.platform = r.platformHosted(rec.Image)

	src, err := r.loadSources(ctx, rec.Image, p.vector, p.report)
	if err != nil {
		return nil, err
	}

	p.naturalW, p.naturalH = r.naturalSize(src, rec.Transform, p.report)
	p.assessment = quality.Assess(quality.Input{
		NaturalW: p.naturalW,
		NaturalH: p.naturalH,
		Zoom:     rec.Transform.Zoom,
		WallW:    g.WallW,
		WallH:    g.WallH,
		Vector:   p.vector,
		Platform: p.platform,
	})
	p.disclaimer = quality.BuildDisclaimer(r.disclaimer, p.assessment, p.platform)

	strip := rec.StripWidthCm
	if strip <= 0 {
		strip = r.stripCm
	}
	p.strip = strip
	p.layout = layout.Compute(r.layout, g, strip, nil)

	p.report.Source.DisplayRef = src.displayRef
	p.report.Source.CropRef = src.cropRef
	p.report.Source.NaturalW, p.report.Source.NaturalH = p.naturalW, p.naturalH
	p.report.Source.Vector = p.vector
	p.report.Source.Platform = p.platform
	p.report.Quality = p.assessment
	p.report.Strips = p.layout.Strips

	r.composite(p, src)
	return p, nil
}

// composite resolves the crop window on the crop source and builds the
// display raster. Failures leave p.raster nil and mark the placeholder.
func (r *Renderer) composite(p *page, src sources) {
	if src.crop == nil {
		p.report.Placeholder = true
		p.report.warnf("no image buffer available")
		return
	}
	meta, err := imagestore.Probe(src.crop)
	if err != nil {
		log.Printf("WARNING: failed to probe crop source of proof %s: %v", p.code, err)
		p.report.Placeholder = true
		p.report.warnf("crop source unreadable: %v", err)
		return
	}
	p.report.Source.CropW, p.report.Source.CropH = meta.Width, meta.Height

	g := p.layout.Geometry
	t := p.rec.Transform
	p.window = crop.Resolve(meta.Width, meta.Height, g.PrintW, g.PrintH, t.Zoom, t.OffsetXPct, t.OffsetYPct)
	p.report.Crop = p.window

	w, h := compositor.TargetSize(p.layout.Frame.W, p.layout.Frame.H, r.rasterDPI, p.window)
	res, err := compositor.Composite(src.crop, p.window, compositor.Options{
		FlipH:  t.FlipH,
		FlipV:  t.FlipV,
		Width:  w,
		Height: h,
	})
	if err != nil {
		log.Printf("WARNING: failed to composite proof %s: %v", p.code, err)
		p.report.Placeholder = true
		p.report.warnf("compositing failed: %v", err)
		return
	}
	if res.SafeFallback {
		p.report.warnf("crop window %s outside decoded image, used %s", p.window, res.Extracted)
	}
	p.raster = res
	p.report.Output = OutputReport{
		Width:        res.Width,
		Height:       res.Height,
		Extracted:    res.Extracted,
		SafeFallback: res.SafeFallback,
	}
}

// loadSources reads the display and crop-source buffers concurrently.
// Read failures degrade to missing buffers; only cancellation is an error.
func (r *Renderer) loadSources(ctx context.Context, img database.Image, vector bool, report *Report) (sources, error) {
	var src sources
	if r.images == nil || img.Empty() {
		return src, nil
	}

	displayRefs := []string{img.Preview, img.URL, img.OriginalURL}
	var cropRefs []string
	if !vector {
		cropRefs = []string{img.OriginalURL, img.URL}
	}

	var displayWarn, cropWarn []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		src.display, src.displayRef, displayWarn = r.readFirst(gctx, displayRefs)
		return nil
	})
	g.Go(func() error {
		src.crop, src.cropRef, cropWarn = r.readFirst(gctx, cropRefs)
		return nil
	})
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return src, err
	}

	report.Warnings = append(report.Warnings, displayWarn...)
	report.Warnings = append(report.Warnings, cropWarn...)

	if src.crop == nil && src.display != nil {
		src.crop, src.cropRef = src.display, src.displayRef
		src.cropFromDisplay = true
	}
	return src, nil
}

// readFirst returns the first readable buffer of refs.
func (r *Renderer) readFirst(ctx context.Context, refs []string) ([]byte, string, []string) {
	var warnings []string
	seen := make(map[string]bool)
	for _, ref := range refs {
		if ref == "" || seen[ref] {
			continue
		}
		seen[ref] = true
		data, err := r.images.ReadBuffer(ctx, r.resolveRef(ref))
		if err != nil {
			log.Printf("WARNING: failed to read image %s: %v", ref, err)
			warnings = append(warnings, fmt.Sprintf("image %s unavailable: %v", ref, err))
			continue
		}
		return data, ref, warnings
	}
	return nil, "", warnings
}

// naturalSize prefers the probed original, then the editor's transform, then
// the probed display buffer.
func (r *Renderer) naturalSize(src sources, t database.Transform, report *Report) (int, int) {
	if src.crop != nil && !src.cropFromDisplay {
		if meta, err := imagestore.Probe(src.crop); err == nil {
			report.Source.NaturalFrom = "original"
			return meta.Width, meta.Height
		}
	}
	if t.NaturalWidth > 0 && t.NaturalHeight > 0 {
		report.Source.NaturalFrom = "transform"
		return t.NaturalWidth, t.NaturalHeight
	}
	if src.display != nil {
		if meta, err := imagestore.Probe(src.display); err == nil {
			report.Source.NaturalFrom = "display"
			return meta.Width, meta.Height
		}
	}
	return 0, 0
}

// resolveRef makes relative references absolute against the base URL.
func (r *Renderer) resolveRef(ref string) string {
	if r.baseURL == "" || strings.Contains(ref, "://") || strings.HasPrefix(ref, "/") {
		return ref
	}
	return r.baseURL + "/" + ref
}

func (r *Renderer) platformHosted(img database.Image) bool {
	for _, ref := range []string{img.URL, img.OriginalURL, img.Preview} {
		if ref != "" && r.isPlatform(r.resolveRef(ref)) {
			return true
		}
	}
	return false
}

// urlPath strips the query and fragment of a reference.
func urlPath(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		return ref[:i]
	}
	return ref
}
