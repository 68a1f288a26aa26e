package layout

import (
	"fmt"
	"math"
)

// Warning describes a layout issue found during validation. Warnings are
// reported in the proof report and never stop rendering.
type Warning struct {
	Element  string `json:"element"`
	Message  string `json:"message"`
	Severity string `json:"severity"` // "error" or "warning"
}

// Validate checks the computed layout for containment and overlap issues.
func Validate(l Layout, t Tables, cfg Config) []Warning {
	var warnings []Warning
	const eps = 0.01

	if l.Geometry.Fallback {
		warnings = append(warnings, Warning{
			Element:  "geometry",
			Message:  "configuration has no wall or print size; placeholder geometry used",
			Severity: "warning",
		})
	}

	// Frame inside the envelope
	env := l.Envelope
	if l.Frame.X < env.X-eps || l.Frame.Right() > env.Right()+eps ||
		l.Frame.Y < env.Y-eps || l.Frame.Bottom() > env.Bottom()+eps {
		warnings = append(warnings, Warning{
			Element: "frame",
			Message: fmt.Sprintf("frame (%.2f,%.2f %.2fx%.2f) exceeds envelope (%.2f,%.2f %.2fx%.2f)",
				l.Frame.X, l.Frame.Y, l.Frame.W, l.Frame.H, env.X, env.Y, env.W, env.H),
			Severity: "error",
		})
	}

	// Frame keeps the print aspect
	if l.Frame.H > 0 && l.Geometry.AspectRatio > 0 {
		got := l.Frame.W / l.Frame.H
		if math.Abs(got-l.Geometry.AspectRatio) > 0.001*l.Geometry.AspectRatio {
			warnings = append(warnings, Warning{
				Element:  "frame",
				Message:  fmt.Sprintf("frame aspect %.4f differs from print aspect %.4f", got, l.Geometry.AspectRatio),
				Severity: "error",
			})
		}
	}

	// Overlay inside the frame
	if !rectContains(l.Frame, l.WallOverlay, eps) {
		warnings = append(warnings, Warning{
			Element:  "wall_overlay",
			Message:  "wall overlay extends past the display frame",
			Severity: "error",
		})
	}

	// Labels on the page
	for _, lb := range append(append([]Label{}, l.WidthLabels...), l.HeightLabels...) {
		if lb.Box.X < cfg.Margin-eps || lb.Box.Y < cfg.Margin-eps ||
			lb.Box.Right() > cfg.PageW-cfg.Margin+eps {
			warnings = append(warnings, Warning{
				Element:  "label",
				Message:  fmt.Sprintf("label %q extends past the page margin", lb.Text),
				Severity: "warning",
			})
		}
	}

	// Tables
	if t.Y < t.MinTop-eps {
		warnings = append(warnings, Warning{
			Element:  "tables",
			Message:  fmt.Sprintf("tables top (%.2f) overlaps the image block (min %.2f)", t.Y, t.MinTop),
			Severity: "warning",
		})
	}
	if w := t.GroupWidth(); w > cfg.ContentWidth()+eps {
		warnings = append(warnings, Warning{
			Element:  "tables",
			Message:  fmt.Sprintf("table columns (%.2f) exceed the content width (%.2f)", w, cfg.ContentWidth()),
			Severity: "warning",
		})
	}
	for i := 0; i < len(t.Columns); i++ {
		for j := i + 1; j < len(t.Columns); j++ {
			if rectsOverlap(t.Columns[i], t.Columns[j], eps) {
				warnings = append(warnings, Warning{
					Element:  "tables",
					Message:  fmt.Sprintf("table column %d overlaps with column %d", i, j),
					Severity: "error",
				})
			}
		}
	}

	return warnings
}

func rectContains(outer, inner Rect, eps float64) bool {
	return inner.X >= outer.X-eps && inner.Y >= outer.Y-eps &&
		inner.Right() <= outer.Right()+eps && inner.Bottom() <= outer.Bottom()+eps
}

// rectsOverlap checks if two axis-aligned rectangles overlap with tolerance.
func rectsOverlap(a, b Rect, eps float64) bool {
	if a.Right() <= b.X+eps || b.Right() <= a.X+eps {
		return false
	}
	if a.Bottom() <= b.Y+eps || b.Bottom() <= a.Y+eps {
		return false
	}
	return true
}
