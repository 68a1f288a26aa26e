package proof

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kozaktomas/wallproof/internal/constants"
	"github.com/kozaktomas/wallproof/internal/layout"
	"github.com/kozaktomas/wallproof/internal/quality"
)

// Row is a key/value line of a table.
type Row struct {
	Label string
	Value string
	// Note rows span the column and are drawn muted.
	Note bool
}

// Table is a titled list of rows.
type Table struct {
	Title string
	Rows  []Row
}

// tableSet is the data tables plus the side info block.
type tableSet struct {
	data []Table
	side Table
}

// rows returns the row count of the tallest table.
func (s tableSet) rows() int {
	n := len(s.side.Rows)
	for _, t := range s.data {
		n = max(n, len(t.Rows))
	}
	return n
}

type formatter struct {
	p        *message.Printer
	currency string
}

func newFormatter(t Texts) formatter {
	tag, err := language.Parse(t.Language)
	if err != nil {
		tag = language.English
	}
	return formatter{p: message.NewPrinter(tag), currency: t.Currency}
}

func (f formatter) cm(v float64) string {
	return f.p.Sprintf("%v cm", roundTo(v, 1))
}

func (f formatter) size(w, h float64) string {
	return f.p.Sprintf("%v x %v cm", roundTo(w, 1), roundTo(h, 1))
}

func (f formatter) area(v float64) string {
	return f.p.Sprintf("%.2f m²", v)
}

func (f formatter) money(v float64, currency string) string {
	if currency == "" {
		currency = f.currency
	}
	return f.p.Sprintf("%.2f %s", v, currency)
}

func roundTo(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}

// buildTables assembles the measurement, price and info tables of a page.
func buildTables(t Texts, p *page) tableSet {
	f := newFormatter(t)
	g := p.layout.Geometry

	measure := Table{Title: t.MeasurementsTitle, Rows: []Row{
		{Label: t.WallSize, Value: f.size(g.WallW, g.WallH)},
		{Label: t.PrintSize, Value: f.size(g.PrintW, g.PrintH)},
		{Label: t.Area, Value: f.area(p.rec.Area())},
		{Label: t.Bleed, Value: f.size(max(g.PrintW-g.WallW, 0), max(g.PrintH-g.WallH, 0))},
	}}
	if s := p.layout.Strips; s != nil {
		measure.Rows = append(measure.Rows,
			Row{Label: t.Strips, Value: f.p.Sprintf("%d x %v cm", s.Count, roundTo(s.WidthCm, 1))},
			Row{Label: t.Overage, Value: f.cm(s.OverageCm)},
		)
	}

	area := p.rec.Area()
	billed := max(area, constants.MinBilledAreaM2)
	price := Table{Title: t.PriceTitle}
	if pr := p.rec.Price; pr != nil && pr.PerM2 > 0 {
		total := pr.Total
		if total <= 0 {
			total = pr.PerM2 * billed
		}
		price.Rows = []Row{
			{Label: t.PricePerM2, Value: f.money(pr.PerM2, pr.Currency)},
			{Label: t.BilledArea, Value: f.area(billed)},
			{Label: t.Total, Value: f.money(total, pr.Currency)},
		}
	} else {
		price.Rows = []Row{
			{Label: t.PricePerM2, Value: t.NotAvailable},
			{Label: t.BilledArea, Value: f.area(billed)},
			{Label: t.Total, Value: t.NotAvailable},
		}
	}
	if area < constants.MinBilledAreaM2 {
		note := strings.ReplaceAll(t.MinimumNote, "{min}", f.p.Sprintf("%v", constants.MinBilledAreaM2))
		price.Rows = append(price.Rows, Row{Label: note, Note: true})
	}

	info := Table{Title: t.InfoTitle, Rows: []Row{{Label: t.Reference, Value: p.code}}}
	if title := p.rec.Title(); title != "" {
		info.Rows = append(info.Rows, Row{Label: t.Product, Value: title})
	}
	if sku := p.rec.SKU(); sku != "" {
		info.Rows = append(info.Rows, Row{Label: t.SKU, Value: sku})
	}
	info.Rows = append(info.Rows, Row{Label: t.Source, Value: sourceKind(t, p)})
	if p.assessment.Tier != quality.None || (!p.platform && !p.vector && p.naturalW > 0) {
		info.Rows = append(info.Rows, Row{Label: t.Quality, Value: f.p.Sprintf("%s (%d x %d px)",
			p.assessment.Tier, p.naturalW, p.naturalH)})
	}
	if !p.rec.CreatedAt.IsZero() {
		info.Rows = append(info.Rows, Row{Label: t.Created, Value: p.rec.CreatedAt.Format("2006-01-02 15:04")})
	}

	return tableSet{data: []Table{measure, price}, side: info}
}

func sourceKind(t Texts, p *page) string {
	switch {
	case p.platform:
		return t.SourcePlatform
	case p.vector:
		return t.SourceVector
	default:
		return t.SourceUpload
	}
}

// truncate shortens text with an ellipsis until it fits maxW.
func truncate(m layout.Measurer, text string, size float64, bold bool, maxW float64) string {
	if maxW <= 0 {
		return ""
	}
	if m.TextWidth(text, size, bold) <= maxW {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := strings.TrimRight(string(runes), " ") + "..."
		if m.TextWidth(candidate, size, bold) <= maxW {
			return candidate
		}
	}
	return ""
}

// wrap breaks text into lines no wider than maxW. Words longer than a line
// are kept whole.
func wrap(m layout.Measurer, text string, size float64, bold bool, maxW float64) []string {
	var lines []string
	var line string
	for _, word := range strings.Fields(text) {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if line != "" && m.TextWidth(candidate, size, bold) > maxW {
			lines = append(lines, line)
			line = word
			continue
		}
		line = candidate
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}
