package quality

import (
	"strconv"
	"strings"
)

// RGB is an 8-bit color.
type RGB struct {
	R uint8 `yaml:"r" json:"r"`
	G uint8 `yaml:"g" json:"g"`
	B uint8 `yaml:"b" json:"b"`
}

// Texts are the disclaimer paragraphs. Warning templates accept the
// placeholders {max_width} and {max_height} (whole centimeters).
type Texts struct {
	Base          string `yaml:"base"`
	Closing       string `yaml:"closing"`
	Platform      string `yaml:"platform"`
	OrangeWarning string `yaml:"orange_warning"`
	RedWarning    string `yaml:"red_warning"`

	TextColor   RGB `yaml:"text_color"`
	OrangeColor RGB `yaml:"orange_color"`
	RedColor    RGB `yaml:"red_color"`
}

// DefaultTexts returns the built-in English disclaimer.
func DefaultTexts() Texts {
	return Texts{
		Base: "By approving this proof the customer confirms that they hold all rights to the submitted image, " +
			"including copyright and the consent of any persons depicted, and accepts full responsibility for its use.",
		Closing: "Once approved, the order is released to production and can no longer be changed or cancelled. " +
			"Colors on screen and on this proof may differ slightly from the printed material.",
		Platform: "This proof shows an image from our own collection. Once approved, the order is released to production " +
			"and can no longer be changed or cancelled.",
		OrangeWarning: "Note: the resolution of the selected image is borderline for this wall size. " +
			"For a sharp result we recommend a maximum size of {max_width} x {max_height} cm.",
		RedWarning: "Warning: the resolution of the selected image is insufficient for this wall size. " +
			"The maximum recommended size is {max_width} x {max_height} cm.",
		TextColor:   RGB{R: 60, G: 60, B: 60},
		OrangeColor: RGB{R: 214, G: 134, B: 0},
		RedColor:    RGB{R: 200, G: 30, B: 30},
	}
}

// Segment is one paragraph of the disclaimer.
type Segment struct {
	Text  string `json:"text"`
	Color RGB    `json:"color"`
	Bold  bool   `json:"bold,omitempty"`
}

// BuildDisclaimer assembles the disclaimer paragraphs. Platform assets get the
// single short paragraph regardless of tier.
func BuildDisclaimer(t Texts, a Assessment, platform bool) []Segment {
	if platform {
		return []Segment{{Text: t.Platform, Color: t.TextColor}}
	}

	segments := []Segment{{Text: t.Base, Color: t.TextColor}}
	switch a.Tier {
	case Orange:
		segments = append(segments, Segment{Text: fillWarning(t.OrangeWarning, a), Color: t.OrangeColor, Bold: true})
	case Red:
		segments = append(segments, Segment{Text: fillWarning(t.RedWarning, a), Color: t.RedColor, Bold: true})
	}
	return append(segments, Segment{Text: t.Closing, Color: t.TextColor})
}

func fillWarning(tmpl string, a Assessment) string {
	return strings.NewReplacer(
		"{max_width}", strconv.Itoa(a.MaxWidthCm),
		"{max_height}", strconv.Itoa(a.MaxHeightCm),
	).Replace(tmpl)
}
