package proof

import (
	"fmt"
	"time"

	"github.com/kozaktomas/wallproof/internal/crop"
	"github.com/kozaktomas/wallproof/internal/geometry"
	"github.com/kozaktomas/wallproof/internal/layout"
	"github.com/kozaktomas/wallproof/internal/quality"
)

// Report describes how a proof was produced, for audit and debugging.
type Report struct {
	Code            string                 `json:"code"`
	ConfigurationID string                 `json:"configuration_id,omitempty"`
	Geometry        geometry.PrintGeometry `json:"geometry"`
	Source          SourceReport           `json:"source"`
	Crop            crop.Window            `json:"crop"`
	Output          OutputReport           `json:"output"`
	Quality         quality.Assessment     `json:"quality"`
	Strips          *layout.Strips         `json:"strips,omitempty"`

	DisclaimerFontSize float64 `json:"disclaimer_font_size"`
	DisclaimerOverflow bool    `json:"disclaimer_overflow"`
	FallbackUsed       bool    `json:"fallback_used"`
	Placeholder        bool    `json:"placeholder"`

	Warnings       []string         `json:"warnings"`
	LayoutWarnings []layout.Warning `json:"layout_warnings,omitempty"`
	GeneratedAt    time.Time        `json:"generated_at"`
}

// SourceReport describes the image buffers used for the proof.
type SourceReport struct {
	DisplayRef string `json:"display_ref,omitempty"`
	CropRef    string `json:"crop_ref,omitempty"`
	NaturalW   int    `json:"natural_width"`
	NaturalH   int    `json:"natural_height"`
	// NaturalFrom is "original", "transform", "display" or empty when unknown.
	NaturalFrom string `json:"natural_from,omitempty"`
	CropW       int    `json:"crop_source_width"`
	CropH       int    `json:"crop_source_height"`
	Vector      bool   `json:"vector"`
	Platform    bool   `json:"platform"`
}

// OutputReport describes the composited display raster.
type OutputReport struct {
	Width        int         `json:"width"`
	Height       int         `json:"height"`
	Extracted    crop.Window `json:"extracted"`
	SafeFallback bool        `json:"safe_fallback"`
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}
