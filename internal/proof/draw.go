package proof

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kozaktomas/wallproof/internal/geometry"
	"github.com/kozaktomas/wallproof/internal/layout"
	"github.com/kozaktomas/wallproof/internal/quality"
)

const (
	defaultDisclaimerSize    = 8.0
	defaultMinDisclaimerSize = 6.0
	placeholderFontSize      = 10.0
	stripLineWidth           = 0.6
)

var stripDash = []float64{4, 3}

// drawStats are the per-document outcomes of drawing, applied to the report
// only when the backend finishes successfully.
type drawStats struct {
	disclaimerSize float64
	overflow       bool
	layoutWarnings []layout.Warning
	warnings       []string
	imageFailed    bool
}

// draw executes the drawing operations of the page on b.
func (r *Renderer) draw(b Backend, p *page) (drawStats, error) {
	var st drawStats
	cfg := r.layout
	if err := b.StartPage(cfg.PageW, cfg.PageH); err != nil {
		return st, fmt.Errorf("failed to start page: %w", err)
	}

	// Label boxes depend on the backend's font metrics.
	l := layout.Compute(cfg, p.layout.Geometry, p.strip, b)

	r.drawHeader(b, p, l, &st)
	r.drawImage(b, p, l, &st)
	r.drawHatching(b, l)
	r.drawFrames(b, l)
	r.drawLabels(b, l)

	tables := buildTables(r.texts, p)
	minTop := layout.MinTablesTop(cfg, l)
	tablesH := cfg.TitleRowH + float64(tables.rows())*cfg.RowH
	block := r.fitDisclaimer(b, p.disclaimer, cfg.PageH-cfg.Margin-cfg.FooterGap-tablesH-minTop)
	footerTop := layout.FooterTop(cfg, block.height)
	placed := layout.PlaceTables(cfg, len(tables.data), tables.rows(), footerTop, minTop)

	r.drawTables(b, tables, placed)
	r.drawDisclaimer(b, block, footerTop)
	r.drawTimestamp(b, p, footerTop)
	if r.debug {
		r.drawDebug(b, l, placed, footerTop, block.height)
	}

	st.disclaimerSize = block.size
	st.overflow = block.overflow
	if block.overflow {
		st.warnings = append(st.warnings, fmt.Sprintf(
			"disclaimer needs %.1fpt at %.0fpt font, only %.1fpt available", block.height, block.size, block.avail))
	}
	st.layoutWarnings = layout.Validate(l, placed, cfg)
	return st, nil
}

func (r *Renderer) drawHeader(b Backend, p *page, l layout.Layout, st *drawStats) {
	cfg := r.layout
	h := l.Header
	textW := cfg.ContentWidth() - cfg.LogoMaxW - cfg.ColGap

	b.DrawText(Text{
		X:     h.TitleX,
		Y:     h.TitleY,
		Text:  truncate(b, r.texts.Title, cfg.TitleSize, true, textW),
		Size:  cfg.TitleSize,
		Bold:  true,
		Color: r.style.TitleColor,
	})

	if caption := r.caption(p); caption != "" {
		b.DrawText(Text{
			X:     h.TitleX,
			Y:     h.CaptionY,
			Text:  truncate(b, caption, cfg.CaptionSize, false, textW),
			Size:  cfg.CaptionSize,
			Color: r.style.MutedColor,
		})
	}

	if r.logo != nil {
		s := geometry.FitScale(h.Logo.W, h.Logo.H, float64(r.logo.w), float64(r.logo.h))
		w, lh := float64(r.logo.w)*s, float64(r.logo.h)*s
		err := b.DrawImage(Image{
			X:     h.Logo.Right() - w,
			Y:     h.Logo.Y,
			W:     w,
			H:     lh,
			Data:  r.logo.png,
			Type:  "PNG",
			Label: "logo",
		})
		if err != nil {
			st.warnings = append(st.warnings, fmt.Sprintf("logo not drawn: %v", err))
		}
	}

	if p.code != "" {
		r.drawRightAligned(b, h.CodeRight, h.CodeY, fill(r.texts.CodeLine, "{code}", p.code),
			cfg.CodeSize, true, r.style.TitleColor)
	}
	if p.report.Source.CropW > 0 {
		line := fill(r.texts.CropLine,
			"{crop}", p.window.String(),
			"{width}", strconv.Itoa(p.report.Source.CropW),
			"{height}", strconv.Itoa(p.report.Source.CropH),
		)
		r.drawRightAligned(b, h.CodeRight, h.CropY, line, cfg.CropLineSize, false, r.style.MutedColor)
	}
}

// caption is the source line under the title: file name and pixel size for
// uploads, product title and SKU for platform images.
func (r *Renderer) caption(p *page) string {
	if p.platform {
		title := p.rec.Title()
		if title == "" {
			return ""
		}
		line := fill(r.texts.ProductLine, "{title}", title, "{sku}", p.rec.SKU())
		if p.rec.SKU() == "" {
			line = title
		}
		return line
	}
	name := p.rec.Image.Filename
	if name == "" || p.naturalW == 0 {
		return name
	}
	return fill(r.texts.SourceCaption,
		"{filename}", name,
		"{width}", strconv.Itoa(p.naturalW),
		"{height}", strconv.Itoa(p.naturalH),
	)
}

func (r *Renderer) drawRightAligned(b Backend, right, y float64, text string, size float64, bold bool, c quality.RGB) {
	b.DrawText(Text{
		X:     right - b.TextWidth(text, size, bold),
		Y:     y,
		Text:  text,
		Size:  size,
		Bold:  bold,
		Color: c,
	})
}

func (r *Renderer) drawImage(b Backend, p *page, l layout.Layout, st *drawStats) {
	if p.raster != nil {
		label := p.rec.Image.Filename
		if label == "" {
			label = r.texts.Placeholder
		}
		err := b.DrawImage(Image{
			X:     l.Frame.X,
			Y:     l.Frame.Y,
			W:     l.Frame.W,
			H:     l.Frame.H,
			Data:  p.raster.JPEG,
			Type:  "JPG",
			Label: label,
		})
		if err == nil {
			return
		}
		st.imageFailed = true
		st.warnings = append(st.warnings, fmt.Sprintf("preview not drawn: %v", err))
	}
	r.drawPlaceholder(b, l.Frame)
}

func (r *Renderer) drawPlaceholder(b Backend, frame layout.Rect) {
	b.DrawRect(Rect{
		X: frame.X, Y: frame.Y, W: frame.W, H: frame.H,
		Fill:   rgbPtr(r.style.Placeholder),
		Stroke: rgbPtr(r.style.MutedColor),
	})
	b.DrawLine(Line{X1: frame.X, Y1: frame.Y, X2: frame.Right(), Y2: frame.Bottom(), Color: r.style.HatchColor})
	b.DrawLine(Line{X1: frame.X, Y1: frame.Bottom(), X2: frame.Right(), Y2: frame.Y, Color: r.style.HatchColor})

	text := truncate(b, r.texts.Placeholder, placeholderFontSize, true, frame.W-8)
	b.DrawText(Text{
		X:     frame.X + (frame.W-b.TextWidth(text, placeholderFontSize, true))/2,
		Y:     frame.Y + frame.H/2 + placeholderFontSize*0.35,
		Text:  text,
		Size:  placeholderFontSize,
		Bold:  true,
		Color: r.style.MutedColor,
	})
}

// drawHatching fills the bleed bands with 45 degree lines.
func (r *Renderer) drawHatching(b Backend, l layout.Layout) {
	step := r.layout.HatchSpacing
	if step <= 0 {
		return
	}
	for _, band := range l.Bleed {
		b.ClipRect(band.X, band.Y, band.W, band.H)
		for x := band.X - band.H; x < band.Right(); x += step {
			b.DrawLine(Line{
				X1: x, Y1: band.Bottom(),
				X2: x + band.H, Y2: band.Y,
				Color: r.style.HatchColor,
				Width: r.style.HatchWidth,
			})
		}
		b.ClipEnd()
	}
}

func (r *Renderer) drawFrames(b Backend, l layout.Layout) {
	s := r.style
	b.DrawRect(Rect{X: l.Frame.X, Y: l.Frame.Y, W: l.Frame.W, H: l.Frame.H, Stroke: rgbPtr(s.FrameColor), LineWidth: s.FrameWidth})
	o := l.WallOverlay
	b.DrawRect(Rect{X: o.X, Y: o.Y, W: o.W, H: o.H, Stroke: rgbPtr(s.OverlayColor), LineWidth: s.OverlayWidth})

	if c := r.layout.CornerMark; c > 0 {
		corners := []struct{ x, y, dx, dy float64 }{
			{o.X, o.Y, 1, 1},
			{o.Right(), o.Y, -1, 1},
			{o.X, o.Bottom(), 1, -1},
			{o.Right(), o.Bottom(), -1, -1},
		}
		for _, k := range corners {
			b.DrawLine(Line{X1: k.x, Y1: k.y, X2: k.x + k.dx*c, Y2: k.y, Color: s.OverlayColor, Width: s.CornerWidth})
			b.DrawLine(Line{X1: k.x, Y1: k.y, X2: k.x, Y2: k.y + k.dy*c, Color: s.OverlayColor, Width: s.CornerWidth})
		}
	}

	if l.Strips != nil {
		for _, x := range l.Strips.Boundaries {
			b.DrawLine(Line{
				X1: x, Y1: l.Frame.Y,
				X2: x, Y2: l.Frame.Bottom(),
				Color: s.StripColor,
				Width: stripLineWidth,
				Dash:  stripDash,
			})
		}
	}
}

func (r *Renderer) drawLabels(b Backend, l layout.Layout) {
	labels := append(append([]layout.Label{}, l.WidthLabels...), l.HeightLabels...)
	for _, lb := range labels {
		fillColor := r.style.PrintLabelFill
		if lb.Kind == layout.LabelWall {
			fillColor = r.style.WallLabelFill
		}
		b.DrawRect(Rect{X: lb.Box.X, Y: lb.Box.Y, W: lb.Box.W, H: lb.Box.H, Fill: rgbPtr(fillColor)})
		b.DrawText(Text{
			X:        lb.TextX,
			Y:        lb.TextY,
			Text:     lb.Text,
			Size:     r.layout.LabelFontSize,
			Color:    r.style.LabelText,
			Rotation: lb.Rotation,
		})
	}
}

func (r *Renderer) drawTables(b Backend, set tableSet, placed layout.Tables) {
	for i, rect := range placed.Columns {
		if i < len(set.data) {
			r.drawTable(b, set.data[i], rect)
		}
	}
	if placed.HasSide {
		r.drawTable(b, set.side, placed.Side)
	}
}

func (r *Renderer) drawTable(b Backend, t Table, rect layout.Rect) {
	cfg := r.layout
	size := cfg.TableFontSize

	b.DrawText(Text{
		X:     rect.X,
		Y:     rect.Y + cfg.TitleRowH*0.7,
		Text:  truncate(b, t.Title, size, true, rect.W),
		Size:  size,
		Bold:  true,
		Color: r.style.TitleColor,
	})
	ruleY := rect.Y + cfg.TitleRowH - 2
	b.DrawLine(Line{X1: rect.X, Y1: ruleY, X2: rect.Right(), Y2: ruleY, Color: r.style.TableRule})

	for i, row := range t.Rows {
		y := rect.Y + cfg.TitleRowH + float64(i+1)*cfg.RowH - cfg.RowH*0.3
		if row.Note {
			b.DrawText(Text{
				X:     rect.X,
				Y:     y,
				Text:  truncate(b, row.Label, size-1, false, rect.W),
				Size:  size - 1,
				Color: r.style.MutedColor,
			})
			continue
		}
		value := truncate(b, row.Value, size, true, rect.W*0.6)
		valueW := b.TextWidth(value, size, true)
		b.DrawText(Text{
			X:     rect.X,
			Y:     y,
			Text:  truncate(b, row.Label, size, false, rect.W-valueW-4),
			Size:  size,
			Color: r.style.MutedColor,
		})
		b.DrawText(Text{
			X:     rect.Right() - valueW,
			Y:     y,
			Text:  value,
			Size:  size,
			Bold:  true,
			Color: r.style.TitleColor,
		})
	}
}

// disclaimerBlock is the wrapped disclaimer at a chosen font size.
type disclaimerBlock struct {
	size     float64
	lines    []disclaimerLine
	height   float64
	avail    float64
	overflow bool
}

type disclaimerLine struct {
	text  string
	color quality.RGB
	bold  bool
	y     float64 // baseline relative to the block top
}

// fitDisclaimer wraps the paragraphs to the footer width and shrinks the
// font one point at a time until they fit; at the minimum size the overflow
// is accepted.
func (r *Renderer) fitDisclaimer(m layout.Measurer, segs []quality.Segment, room float64) disclaimerBlock {
	cfg := r.layout
	avail := room
	if cfg.DisclaimerMaxH > 0 {
		avail = min(avail, cfg.DisclaimerMaxH)
	}
	width := cfg.ContentWidth() - cfg.TimestampW - cfg.FooterGap

	size := cfg.DisclaimerFontSize
	if size <= 0 {
		size = defaultDisclaimerSize
	}
	minSize := cfg.MinDisclaimerFontSize
	if minSize <= 0 {
		minSize = defaultMinDisclaimerSize
	}

	for {
		block := layoutDisclaimer(m, segs, size, width)
		block.avail = avail
		if block.height <= avail {
			return block
		}
		if size-1 < minSize {
			block.overflow = true
			return block
		}
		size--
	}
}

func layoutDisclaimer(m layout.Measurer, segs []quality.Segment, size, width float64) disclaimerBlock {
	block := disclaimerBlock{size: size}
	leading := size * 1.25
	cursor := 0.0
	for i, seg := range segs {
		if i > 0 {
			cursor += size * 0.5
		}
		for _, text := range wrap(m, seg.Text, size, seg.Bold, width) {
			cursor += leading
			block.lines = append(block.lines, disclaimerLine{
				text:  text,
				color: seg.Color,
				bold:  seg.Bold,
				y:     cursor - size*0.25,
			})
		}
	}
	block.height = cursor
	return block
}

func (r *Renderer) drawDisclaimer(b Backend, block disclaimerBlock, top float64) {
	for _, line := range block.lines {
		b.DrawText(Text{
			X:     r.layout.ContentX(),
			Y:     top + line.y,
			Text:  line.text,
			Size:  block.size,
			Bold:  line.bold,
			Color: line.color,
		})
	}
}

func (r *Renderer) drawTimestamp(b Backend, p *page, top float64) {
	size := r.layout.CaptionSize
	text := fill(r.texts.Timestamp, "{time}", p.generated.Format("2006-01-02 15:04"))
	r.drawRightAligned(b, r.layout.PageW-r.layout.Margin, top+size, text, size, false, r.style.MutedColor)
}

// drawDebug outlines the layout boxes.
func (r *Renderer) drawDebug(b Backend, l layout.Layout, placed layout.Tables, footerTop, footerH float64) {
	c := rgbPtr(r.style.DebugColor)
	boxes := []layout.Rect{
		l.Envelope,
		l.Header.Logo,
		{X: r.layout.ContentX(), Y: footerTop, W: r.layout.ContentWidth(), H: footerH},
	}
	boxes = append(boxes, placed.Columns...)
	if placed.HasSide {
		boxes = append(boxes, placed.Side)
	}
	for _, lb := range append(append([]layout.Label{}, l.WidthLabels...), l.HeightLabels...) {
		boxes = append(boxes, lb.Box)
	}
	for _, box := range boxes {
		b.DrawRect(Rect{X: box.X, Y: box.Y, W: box.W, H: box.H, Stroke: c, LineWidth: 0.3})
	}
	b.DrawLine(Line{
		X1: r.layout.ContentX(), Y1: placed.MinTop,
		X2: r.layout.ContentX() + r.layout.ContentWidth(), Y2: placed.MinTop,
		Color: r.style.DebugColor, Width: 0.3, Dash: []float64{2, 2},
	})
}

// fill replaces {name} placeholders given as old/new pairs.
func fill(tmpl string, pairs ...string) string {
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
