package imagestore

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/jpeg"
	"testing"
)

// orientedJPEG encodes a w x h JPEG and inserts an APP1 segment carrying the
// given EXIF orientation.
func orientedJPEG(t *testing.T, w, h, orientation int, order binary.AppendByteOrder) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h)), nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	raw := buf.Bytes()

	tiff := []byte("MM")
	if order == binary.LittleEndian {
		tiff = []byte("II")
	}
	tiff = order.AppendUint16(tiff, 0x002a)
	tiff = order.AppendUint32(tiff, 8)
	tiff = order.AppendUint16(tiff, 1)
	tiff = order.AppendUint16(tiff, tagOrientation)
	tiff = order.AppendUint16(tiff, typeShort)
	tiff = order.AppendUint32(tiff, 1)
	tiff = order.AppendUint16(tiff, uint16(orientation))
	tiff = order.AppendUint16(tiff, 0)
	tiff = order.AppendUint32(tiff, 0)

	payload := append(append([]byte{}, exifHeader...), tiff...)
	out := append([]byte{}, raw[:2]...)
	out = append(out, 0xff, markerAPP1)
	out = binary.BigEndian.AppendUint16(out, uint16(len(payload)+2))
	out = append(out, payload...)
	return append(out, raw[2:]...)
}

func TestProbe_Orientation(t *testing.T) {
	tests := []struct {
		name        string
		orientation int
		order       binary.AppendByteOrder
		wantW       int
		wantH       int
	}{
		{"normal", 1, binary.BigEndian, 400, 200},
		{"upside down keeps axes", 3, binary.BigEndian, 400, 200},
		{"rotated 90 cw swaps axes", 6, binary.BigEndian, 200, 400},
		{"rotated 90 ccw swaps axes", 8, binary.BigEndian, 200, 400},
		{"transpose swaps axes", 5, binary.BigEndian, 200, 400},
		{"little endian", 6, binary.LittleEndian, 200, 400},
		{"out of range ignored", 9, binary.BigEndian, 400, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, err := Probe(orientedJPEG(t, 400, 200, tt.orientation, tt.order))
			if err != nil {
				t.Fatalf("Probe() error: %v", err)
			}
			if meta.Width != tt.wantW || meta.Height != tt.wantH {
				t.Errorf("expected %dx%d, got %dx%d", tt.wantW, tt.wantH, meta.Width, meta.Height)
			}
		})
	}
}

func TestJPEGOrientation_Malformed(t *testing.T) {
	valid := orientedJPEG(t, 40, 20, 6, binary.BigEndian)
	if got := jpegOrientation(valid); got != 6 {
		t.Fatalf("expected orientation 6, got %d", got)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not a jpeg", pngBytes(t, 4, 4)},
		{"truncated segment", valid[:12]},
		{"bad byte order", bytes.Replace(valid, []byte("MM"), []byte("XX"), 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := jpegOrientation(tt.data); got != orientationNormal {
				t.Errorf("expected orientation 1, got %d", got)
			}
		})
	}

	var plain bytes.Buffer
	if err := jpeg.Encode(&plain, image.NewGray(image.Rect(0, 0, 8, 8)), nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	if got := jpegOrientation(plain.Bytes()); got != orientationNormal {
		t.Errorf("jpeg without exif: expected 1, got %d", got)
	}
}
