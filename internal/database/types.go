package database

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/kozaktomas/wallproof/internal/geometry"
)

// Price is the optional pricing of a configuration.
type Price struct {
	PerM2    float64 `json:"perM2,omitempty"`
	Total    float64 `json:"total,omitempty"`
	Currency string  `json:"currency,omitempty"`
}

// Image references the stored assets of a configuration.
type Image struct {
	URL          string `json:"url,omitempty"`
	OriginalURL  string `json:"originalUrl,omitempty"`
	Preview      string `json:"preview,omitempty"`
	Filename     string `json:"filename,omitempty"`
	MimeType     string `json:"mimetype,omitempty"`
	DetectedMime string `json:"detectedMime,omitempty"`
}

// Empty reports whether the record references no image at all.
func (i Image) Empty() bool {
	return i.URL == "" && i.OriginalURL == "" && i.Preview == ""
}

// Transform is the pan/zoom/flip state chosen in the editor. Offsets are the
// crop center as fractions of the natural image size.
type Transform struct {
	Zoom          float64 `json:"zoom"`
	OffsetXPct    float64 `json:"offsetXPct"`
	OffsetYPct    float64 `json:"offsetYPct"`
	FlipH         bool    `json:"flipH"`
	FlipV         bool    `json:"flipV"`
	NaturalWidth  int     `json:"naturalWidth,omitempty"`
	NaturalHeight int     `json:"naturalHeight,omitempty"`
}

// DefaultTransform is a centered, unzoomed, unflipped transform.
func DefaultTransform() Transform {
	return Transform{Zoom: 1, OffsetXPct: 0.5, OffsetYPct: 0.5}
}

// Product is descriptive metadata shown in the proof header.
type Product struct {
	Title string `json:"title,omitempty"`
	SKU   string `json:"sku,omitempty"`
}

// Configuration is a stored wallpaper configuration record.
type Configuration struct {
	ID        string        `json:"id,omitempty"`
	ShortCode string        `json:"shortCode,omitempty"`
	Wall      geometry.Size `json:"wall"`
	Print     geometry.Size `json:"print"`
	AreaM2    float64       `json:"areaM2,omitempty"`
	Price     *Price        `json:"price,omitempty"`
	Image     Image         `json:"image"`
	Transform Transform     `json:"transform"`
	Product   *Product      `json:"product,omitempty"`
	Context   *Product      `json:"context,omitempty"`
	// StripWidthCm enables strip guides on the proof when positive.
	StripWidthCm float64   `json:"stripWidthCm,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UnmarshalJSON decodes a record, defaulting missing transform fields to a
// centered unzoomed view.
func (c *Configuration) UnmarshalJSON(b []byte) error {
	type alias Configuration
	a := alias{Transform: DefaultTransform()}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*c = Configuration(a)
	return nil
}

// ErrIncompleteConfiguration is returned when neither wall nor print size is usable.
var ErrIncompleteConfiguration = errors.New("configuration needs a wall or print size")

// Validate checks the record can be stored.
func (c *Configuration) Validate() error {
	if !c.Wall.Valid() && !c.Print.Valid() {
		return ErrIncompleteConfiguration
	}
	if c.Transform.OffsetXPct < 0 || c.Transform.OffsetXPct > 1 ||
		c.Transform.OffsetYPct < 0 || c.Transform.OffsetYPct > 1 {
		return errors.New("transform offsets must be within [0, 1]")
	}
	if c.Transform.Zoom < 0 {
		return errors.New("transform zoom must not be negative")
	}
	return nil
}

// Geometry resolves the wall and print size with fallbacks applied.
func (c *Configuration) Geometry() geometry.PrintGeometry {
	return geometry.Resolve(c.Wall, c.Print)
}

// Area returns the stored print area, recomputed from the geometry when absent.
func (c *Configuration) Area() float64 {
	if c.AreaM2 > 0 {
		return c.AreaM2
	}
	return c.Geometry().AreaM2()
}

// Title returns the product title from the product or context metadata.
func (c *Configuration) Title() string {
	if c.Product != nil && c.Product.Title != "" {
		return c.Product.Title
	}
	if c.Context != nil {
		return c.Context.Title
	}
	return ""
}

// SKU returns the product SKU from the product or context metadata.
func (c *Configuration) SKU() string {
	if c.Product != nil && c.Product.SKU != "" {
		return c.Product.SKU
	}
	if c.Context != nil {
		return c.Context.SKU
	}
	return ""
}
