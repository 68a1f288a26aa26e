// Package quality classifies whether a source image carries enough pixels for
// the requested wall size and builds the disclaimer shown on the proof.
package quality

import (
	"fmt"
	"math"

	"github.com/kozaktomas/wallproof/internal/constants"
)

// Tier is the resolution-adequacy classification of an image.
type Tier int

const (
	None Tier = iota
	Green
	Orange
	Red
)

func (t Tier) String() string {
	switch t {
	case Green:
		return "green"
	case Orange:
		return "orange"
	case Red:
		return "red"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(b []byte) error {
	switch string(b) {
	case "none", "":
		*t = None
	case "green":
		*t = Green
	case "orange":
		*t = Orange
	case "red":
		*t = Red
	default:
		return fmt.Errorf("unknown quality tier %q", string(b))
	}
	return nil
}

// HasWarning reports whether the tier produces a warning paragraph.
func (t Tier) HasWarning() bool {
	return t == Orange || t == Red
}

// Input holds everything the classification depends on.
type Input struct {
	NaturalW int
	NaturalH int
	Zoom     float64
	WallW    float64 // cm
	WallH    float64 // cm
	Vector   bool    // PDF/SVG/EPS source, resolution independent
	Platform bool    // hosted by the commerce platform
}

// Assessment is the classification plus the numbers quoted in warnings.
type Assessment struct {
	Tier        Tier `json:"tier"`
	EffW        int  `json:"effective_width"`
	EffH        int  `json:"effective_height"`
	MaxWidthCm  int  `json:"max_width_cm"`
	MaxHeightCm int  `json:"max_height_cm"`
}

// Assess classifies the input. Platform and vector assets are never checked,
// and neither is an image whose pixel size is unknown.
func Assess(in Input) Assessment {
	if in.Platform || in.Vector {
		return Assessment{Tier: None}
	}
	if in.NaturalW <= 0 || in.NaturalH <= 0 {
		return Assessment{Tier: None}
	}
	zoom := in.Zoom
	if !(zoom > 0) || math.IsInf(zoom, 0) {
		zoom = 1
	}
	effW := int(math.Floor(float64(in.NaturalW) / zoom))
	effH := int(math.Floor(float64(in.NaturalH) / zoom))

	a := Assessment{
		EffW:        effW,
		EffH:        effH,
		MaxWidthCm:  effW / constants.RecommendedPxPerCm,
		MaxHeightCm: effH / constants.RecommendedPxPerCm,
	}
	below := func(mult float64) bool {
		return float64(effW) < in.WallW*mult || float64(effH) < in.WallH*mult
	}
	switch {
	case below(constants.QualityRedPxPerCm):
		a.Tier = Red
	case below(constants.QualityOrangePxPerCm):
		a.Tier = Orange
	case below(constants.QualityGreenPxPerCm):
		a.Tier = Green
	default:
		a.Tier = None
	}
	return a
}

// Classify returns only the tier for the given source and wall size.
func Classify(naturalW, naturalH int, zoom, wallW, wallH float64, isVector, isPlatform bool) Tier {
	return Assess(Input{
		NaturalW: naturalW,
		NaturalH: naturalH,
		Zoom:     zoom,
		WallW:    wallW,
		WallH:    wallH,
		Vector:   isVector,
		Platform: isPlatform,
	}).Tier
}
