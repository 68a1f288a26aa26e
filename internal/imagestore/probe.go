package imagestore

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"net/http"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// Metadata is the probed size and format of an image buffer. Width and
// Height are in displayed orientation, after applying the EXIF orientation.
type Metadata struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Format      string `json:"format"`
	MIME        string `json:"mime"`
	Orientation int    `json:"orientation,omitempty"`
}

// Pixels returns the decoded pixel count.
func (m Metadata) Pixels() int64 {
	return int64(m.Width) * int64(m.Height)
}

// Probe reads the image header without decoding the pixels.
func Probe(data []byte) (Metadata, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to probe image: %w", err)
	}
	meta := Metadata{
		Width:       cfg.Width,
		Height:      cfg.Height,
		Format:      format,
		MIME:        "image/" + format,
		Orientation: orientationNormal,
	}
	if format == "jpeg" {
		meta.Orientation = jpegOrientation(data)
		if swapsAxes(meta.Orientation) {
			meta.Width, meta.Height = meta.Height, meta.Width
		}
	}
	return meta, nil
}

var vectorMIMEs = map[string]bool{
	"application/pdf":          true,
	"image/svg+xml":            true,
	"application/postscript":   true,
	"application/eps":          true,
	"application/x-eps":        true,
	"image/eps":                true,
	"image/x-eps":              true,
	"application/illustrator":  true,
	"application/vnd.adobe.ai": true,
}

var vectorExts = map[string]bool{
	".pdf": true,
	".svg": true,
	".eps": true,
	".ai":  true,
}

// IsVector reports whether the image is resolution independent, judged by its
// declared MIME type or file extension.
func IsVector(mime, filename string) bool {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if vectorMIMEs[mime] {
		return true
	}
	return vectorExts[strings.ToLower(filepath.Ext(filename))]
}

// SniffMIME detects the content type of a buffer.
func SniffMIME(data []byte) string {
	return http.DetectContentType(data)
}
