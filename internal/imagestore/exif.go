package imagestore

import (
	"bytes"
	"encoding/binary"
)

// EXIF orientation values. 5 to 8 store the image rotated by 90 degrees, so
// the displayed width and height are the stored ones swapped.
const (
	orientationNormal    = 1
	orientationTranspose = 5
	orientationRotate90  = 8
)

const (
	markerSOI  = 0xd8
	markerAPP1 = 0xe1
	markerSOS  = 0xda
	markerEOI  = 0xd9

	tagOrientation = 0x0112
	typeShort      = 3
)

var exifHeader = []byte("Exif\x00\x00")

// jpegOrientation returns the EXIF orientation of a JPEG buffer, or 1 when the
// buffer is not a JPEG or carries no valid orientation tag.
func jpegOrientation(data []byte) int {
	if len(data) < 4 || data[0] != 0xff || data[1] != markerSOI {
		return orientationNormal
	}
	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xff {
			return orientationNormal
		}
		marker := data[pos+1]
		switch {
		case marker == 0xff:
			// fill byte
			pos++
			continue
		case marker == markerSOS || marker == markerEOI:
			return orientationNormal
		case marker >= 0xd0 && marker <= 0xd7, marker == 0x01:
			pos += 2
			continue
		}
		size := int(binary.BigEndian.Uint16(data[pos+2:]))
		if size < 2 || pos+2+size > len(data) {
			return orientationNormal
		}
		segment := data[pos+4 : pos+2+size]
		if marker == markerAPP1 && bytes.HasPrefix(segment, exifHeader) {
			return tiffOrientation(segment[len(exifHeader):])
		}
		pos += 2 + size
	}
	return orientationNormal
}

// tiffOrientation reads the orientation tag from IFD0 of a TIFF structure.
func tiffOrientation(tiff []byte) int {
	if len(tiff) < 8 {
		return orientationNormal
	}
	var order binary.ByteOrder
	switch string(tiff[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return orientationNormal
	}
	if order.Uint16(tiff[2:]) != 0x002a {
		return orientationNormal
	}
	ifd := int(order.Uint32(tiff[4:]))
	if ifd < 8 || ifd+2 > len(tiff) {
		return orientationNormal
	}
	count := int(order.Uint16(tiff[ifd:]))
	entries := tiff[ifd+2:]
	for i := range count {
		off := i * 12
		if off+12 > len(entries) {
			break
		}
		entry := entries[off : off+12]
		if order.Uint16(entry) != tagOrientation {
			continue
		}
		if order.Uint16(entry[2:]) != typeShort || order.Uint32(entry[4:]) != 1 {
			return orientationNormal
		}
		v := int(order.Uint16(entry[8:]))
		if v < orientationNormal || v > orientationRotate90 {
			return orientationNormal
		}
		return v
	}
	return orientationNormal
}

// swapsAxes reports whether displaying an image with orientation o swaps its
// stored width and height.
func swapsAxes(o int) bool {
	return o >= orientationTranspose && o <= orientationRotate90
}
