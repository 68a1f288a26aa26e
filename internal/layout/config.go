package layout

// Page dimensions in points (A4 landscape).
const (
	PageW = 841.89
	PageH = 595.28
)

// Config holds the fixed page geometry of a proof. All values are points
// unless the field name says otherwise.
type Config struct {
	PageW  float64 `yaml:"page_w"`
	PageH  float64 `yaml:"page_h"`
	Margin float64 `yaml:"margin"`

	// Header zone
	HeaderH      float64 `yaml:"header_h"`
	TitleSize    float64 `yaml:"title_size"`
	CaptionSize  float64 `yaml:"caption_size"`
	CodeSize     float64 `yaml:"code_size"`
	CropLineSize float64 `yaml:"crop_line_size"`
	LogoMaxW     float64 `yaml:"logo_max_w"`
	LogoMaxH     float64 `yaml:"logo_max_h"`

	// Image envelope; the display frame never exceeds it
	EnvelopeMaxW float64 `yaml:"envelope_max_w"`
	EnvelopeMaxH float64 `yaml:"envelope_max_h"`

	// Dimension labels
	LabelH        float64 `yaml:"label_h"`
	LabelGap      float64 `yaml:"label_gap"`
	LabelPadding  float64 `yaml:"label_padding"`
	LabelFontSize float64 `yaml:"label_font_size"`

	// Frame decorations
	HatchSpacing float64 `yaml:"hatch_spacing"`
	CornerMark   float64 `yaml:"corner_mark"`
	StripWidthCm float64 `yaml:"strip_width_cm"` // 0 disables strip guides

	// Tables
	ColW          float64 `yaml:"col_w"`
	ColGap        float64 `yaml:"col_gap"`
	RowH          float64 `yaml:"row_h"`
	TitleRowH     float64 `yaml:"title_row_h"`
	TableFontSize float64 `yaml:"table_font_size"`
	SideInfoW     float64 `yaml:"side_info_w"`
	MinSideInfoW  float64 `yaml:"min_side_info_w"`

	// Footer
	FooterGap             float64 `yaml:"footer_gap"`
	DisclaimerFontSize    float64 `yaml:"disclaimer_font_size"`
	MinDisclaimerFontSize float64 `yaml:"min_disclaimer_font_size"`
	DisclaimerMaxH        float64 `yaml:"disclaimer_max_h"`
	TimestampW            float64 `yaml:"timestamp_w"`

	Labels LabelTexts `yaml:"labels"`
}

// LabelTexts are the dimension label templates; {cm} is replaced by the size.
type LabelTexts struct {
	PrintWidth  string `yaml:"print_width"`
	WallWidth   string `yaml:"wall_width"`
	PrintHeight string `yaml:"print_height"`
	WallHeight  string `yaml:"wall_height"`
}

// DefaultConfig returns the print-proof page configuration.
func DefaultConfig() Config {
	return Config{
		PageW:  PageW,
		PageH:  PageH,
		Margin: 28,

		HeaderH:      60,
		TitleSize:    16,
		CaptionSize:  8,
		CodeSize:     9,
		CropLineSize: 6,
		LogoMaxW:     120,
		LogoMaxH:     26,

		EnvelopeMaxW: 520,
		EnvelopeMaxH: 250,

		LabelH:        12,
		LabelGap:      3,
		LabelPadding:  4,
		LabelFontSize: 7,

		HatchSpacing: 6,
		CornerMark:   10,
		StripWidthCm: 0,

		ColW:          170,
		ColGap:        16,
		RowH:          12,
		TitleRowH:     16,
		TableFontSize: 8,
		SideInfoW:     240,
		MinSideInfoW:  100,

		FooterGap:             10,
		DisclaimerFontSize:    8,
		MinDisclaimerFontSize: 6,
		DisclaimerMaxH:        96,
		TimestampW:            110,

		Labels: LabelTexts{
			PrintWidth:  "Print width {cm} cm",
			WallWidth:   "Wall width {cm} cm",
			PrintHeight: "Print height {cm} cm",
			WallHeight:  "Wall height {cm} cm",
		},
	}
}

// ContentX returns the left edge of the content area.
func (c Config) ContentX() float64 {
	return c.Margin
}

// ContentWidth returns the usable horizontal space.
// 841.89 - 2*28 = 785.89pt.
func (c Config) ContentWidth() float64 {
	return c.PageW - 2*c.Margin
}

// LabelBand returns the space reserved for two stacked labels.
func (c Config) LabelBand() float64 {
	return 2 * (c.LabelH + c.LabelGap)
}

// EnvelopeTop returns the Y of the top edge of the image envelope.
func (c Config) EnvelopeTop() float64 {
	return c.Margin + c.HeaderH + c.LabelBand()
}
