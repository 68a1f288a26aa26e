package proof

import "github.com/kozaktomas/wallproof/internal/quality"

// Style holds the colors and stroke widths of the proof page.
type Style struct {
	TitleColor     quality.RGB `yaml:"title_color"`
	MutedColor     quality.RGB `yaml:"muted_color"`
	FrameColor     quality.RGB `yaml:"frame_color"`
	OverlayColor   quality.RGB `yaml:"overlay_color"`
	HatchColor     quality.RGB `yaml:"hatch_color"`
	StripColor     quality.RGB `yaml:"strip_color"`
	PrintLabelFill quality.RGB `yaml:"print_label_fill"`
	WallLabelFill  quality.RGB `yaml:"wall_label_fill"`
	LabelText      quality.RGB `yaml:"label_text"`
	TableRule      quality.RGB `yaml:"table_rule"`
	Placeholder    quality.RGB `yaml:"placeholder"`
	DebugColor     quality.RGB `yaml:"debug_color"`

	FrameWidth   float64 `yaml:"frame_width"`
	OverlayWidth float64 `yaml:"overlay_width"`
	CornerWidth  float64 `yaml:"corner_width"`
	HatchWidth   float64 `yaml:"hatch_width"`
}

// DefaultStyle returns the built-in color scheme.
func DefaultStyle() Style {
	return Style{
		TitleColor:     quality.RGB{R: 30, G: 30, B: 30},
		MutedColor:     quality.RGB{R: 110, G: 110, B: 110},
		FrameColor:     quality.RGB{R: 120, G: 120, B: 120},
		OverlayColor:   quality.RGB{R: 220, G: 40, B: 40},
		HatchColor:     quality.RGB{R: 170, G: 170, B: 170},
		StripColor:     quality.RGB{R: 40, G: 110, B: 200},
		PrintLabelFill: quality.RGB{R: 235, G: 235, B: 235},
		WallLabelFill:  quality.RGB{R: 250, G: 222, B: 222},
		LabelText:      quality.RGB{R: 40, G: 40, B: 40},
		TableRule:      quality.RGB{R: 200, G: 200, B: 200},
		Placeholder:    quality.RGB{R: 238, G: 238, B: 238},
		DebugColor:     quality.RGB{R: 0, G: 160, B: 220},

		FrameWidth:   0.8,
		OverlayWidth: 1,
		CornerWidth:  2,
		HatchWidth:   0.4,
	}
}

// Texts are the fixed labels printed on the proof. Templates use {name}
// placeholders.
type Texts struct {
	Language string `yaml:"language"` // BCP 47 tag for number formatting
	Currency string `yaml:"currency"`

	Title         string `yaml:"title"`
	SourceCaption string `yaml:"source_caption"` // {filename} {width} {height}
	ProductLine   string `yaml:"product_line"`   // {title} {sku}
	CodeLine      string `yaml:"code_line"`      // {code}
	CropLine      string `yaml:"crop_line"`      // {crop} {width} {height}
	Placeholder   string `yaml:"placeholder"`
	Timestamp     string `yaml:"timestamp"` // {time}

	MeasurementsTitle string `yaml:"measurements_title"`
	WallSize          string `yaml:"wall_size"`
	PrintSize         string `yaml:"print_size"`
	Area              string `yaml:"area"`
	Bleed             string `yaml:"bleed"`
	Strips            string `yaml:"strips"`
	Overage           string `yaml:"overage"`

	PriceTitle   string `yaml:"price_title"`
	PricePerM2   string `yaml:"price_per_m2"`
	BilledArea   string `yaml:"billed_area"`
	Total        string `yaml:"total"`
	MinimumNote  string `yaml:"minimum_note"` // {min}
	NotAvailable string `yaml:"not_available"`

	InfoTitle      string `yaml:"info_title"`
	Reference      string `yaml:"reference"`
	Product        string `yaml:"product"`
	SKU            string `yaml:"sku"`
	Source         string `yaml:"source"`
	SourceUpload   string `yaml:"source_upload"`
	SourcePlatform string `yaml:"source_platform"`
	SourceVector   string `yaml:"source_vector"`
	Quality        string `yaml:"quality"`
	Created        string `yaml:"created"`
}

// DefaultTexts returns the built-in English labels.
func DefaultTexts() Texts {
	return Texts{
		Language: "en",
		Currency: "EUR",

		Title:         "Print proof",
		SourceCaption: "{filename} ({width} x {height} px)",
		ProductLine:   "{title} / SKU {sku}",
		CodeLine:      "Code {code}",
		CropLine:      "crop {crop} of {width}x{height}",
		Placeholder:   "Image unavailable",
		Timestamp:     "Generated {time}",

		MeasurementsTitle: "Measurements",
		WallSize:          "Wall size",
		PrintSize:         "Print size",
		Area:              "Print area",
		Bleed:             "Bleed",
		Strips:            "Strips",
		Overage:           "Overage",

		PriceTitle:   "Price",
		PricePerM2:   "Price per m²",
		BilledArea:   "Billed area",
		Total:        "Total",
		MinimumNote:  "Minimum billed area {min} m²",
		NotAvailable: "n/a",

		InfoTitle:      "Details",
		Reference:      "Reference",
		Product:        "Product",
		SKU:            "SKU",
		Source:         "Image",
		SourceUpload:   "Customer upload",
		SourcePlatform: "Platform collection",
		SourceVector:   "Vector artwork",
		Quality:        "Resolution",
		Created:        "Configured",
	}
}
