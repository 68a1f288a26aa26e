package database

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestConfiguration_UnmarshalDefaults(t *testing.T) {
	var c Configuration
	if err := json.Unmarshal([]byte(`{"wall":{"widthCm":300,"heightCm":250}}`), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Transform != DefaultTransform() {
		t.Errorf("expected default transform, got %+v", c.Transform)
	}

	if err := json.Unmarshal([]byte(`{"transform":{"zoom":2,"flipH":true}}`), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Transform.Zoom != 2 || !c.Transform.FlipH || c.Transform.OffsetXPct != 0.5 {
		t.Errorf("expected partial transform merged with defaults, got %+v", c.Transform)
	}
}

func TestConfiguration_UnmarshalEditorPayload(t *testing.T) {
	payload := `{
		"wall": {"widthCm": 300, "heightCm": 250},
		"print": {"widthCm": 310, "heightCm": 260},
		"areaM2": 8.06,
		"price": {"perM2": 39.9, "total": 321.59},
		"image": {"url": "/uploads/a.jpg", "originalUrl": "/uploads/a-orig.tif", "preview": "/uploads/a-prev.jpg",
			"filename": "holiday.tif", "mimetype": "image/tiff", "detectedMime": "image/tiff"},
		"transform": {"zoom": 1.2, "offsetXPct": 0.4, "offsetYPct": 0.6, "flipH": false, "flipV": true,
			"naturalWidth": 6000, "naturalHeight": 4000},
		"product": {"title": "Photo wallpaper", "sku": "WP-1"},
		"createdAt": "2026-03-01T10:00:00Z"
	}`
	var c Configuration
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Print.WidthCm != 310 || c.Image.OriginalURL != "/uploads/a-orig.tif" || c.Transform.NaturalWidth != 6000 {
		t.Errorf("unexpected decode %+v", c)
	}
	if !c.Transform.FlipV || c.Price == nil || c.Price.PerM2 != 39.9 {
		t.Errorf("unexpected transform/price %+v %+v", c.Transform, c.Price)
	}
	if c.Title() != "Photo wallpaper" || c.SKU() != "WP-1" {
		t.Errorf("unexpected product %q %q", c.Title(), c.SKU())
	}
}

func TestConfiguration_Validate(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr bool
	}{
		{"wall only", `{"wall":{"widthCm":300,"heightCm":250}}`, false},
		{"print only", `{"print":{"widthCm":300,"heightCm":250}}`, false},
		{"no sizes", `{}`, true},
		{"zero sizes", `{"wall":{"widthCm":0,"heightCm":250}}`, true},
		{"offset out of range", `{"wall":{"widthCm":300,"heightCm":250},"transform":{"offsetXPct":1.5}}`, true},
		{"negative zoom", `{"wall":{"widthCm":300,"heightCm":250},"transform":{"zoom":-1}}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Configuration
			if err := json.Unmarshal([]byte(tt.json), &c); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	var c Configuration
	if err := c.Validate(); !errors.Is(err, ErrIncompleteConfiguration) {
		t.Errorf("expected ErrIncompleteConfiguration, got %v", err)
	}
}

func TestConfiguration_Area(t *testing.T) {
	c := Configuration{}
	c.Print.WidthCm, c.Print.HeightCm = 310, 260
	if got := c.Area(); math.Abs(got-8.06) > 1e-9 {
		t.Errorf("expected recomputed area 8.06, got %v", got)
	}
	c.AreaM2 = 9
	if c.Area() != 9 {
		t.Errorf("expected stored area, got %v", c.Area())
	}
}

func TestShortCode(t *testing.T) {
	seen := make(map[string]bool)
	for range 200 {
		code := NewShortCode()
		if len(code) != ShortCodeLength {
			t.Fatalf("unexpected length %q", code)
		}
		if !IsShortCode(code) {
			t.Fatalf("generated code %q not recognized", code)
		}
		seen[code] = true
	}
	if len(seen) < 195 {
		t.Errorf("too many collisions: %d unique of 200", len(seen))
	}
}

func TestNormalizeShortCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abcd-efgh", "ABCDEFGH"},
		{" o1il2345 ", "01112345"},
		{"7K3M9QZP", "7K3M9QZP"},
	}
	for _, tt := range tests {
		if got := NormalizeShortCode(tt.in); got != tt.want {
			t.Errorf("NormalizeShortCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if IsShortCode("550e8400-e29b-41d4-a716-446655440000") {
		t.Error("UUID must not be taken for a short code")
	}
}
