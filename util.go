package cr2

import (
	"fmt"
)

// A FormatError reports that the container is malformed: a bad header or
// directory, a byte range outside the file, or slice geometry that disagrees
// with itself or with the declared image size.
type FormatError string

func (e FormatError) Error() string {
	return fmt.Sprintf("cr2: invalid format: %s", string(e))
}

// An UnsupportedError reports that the container shape is not recognisable
// as a CR2 this decoder handles.
type UnsupportedError string

func (e UnsupportedError) Error() string {
	return fmt.Sprintf("cr2: unsupported: %s", string(e))
}

// A MissingEntryError reports that a required TIFF tag is absent.
type MissingEntryError uint16

func (e MissingEntryError) Error() string {
	return fmt.Sprintf("cr2: missing entry: %s", tagname(uint16(e)))
}

// A DecodeError reports that the lossless-JPEG collaborator failed on a
// slice. Fatal on slice 0, logged on the raster otherwise.
type DecodeError string

func (e DecodeError) Error() string {
	return fmt.Sprintf("cr2: decode: %s", string(e))
}

// minInt returns the smaller of a or b.
func minInt(a, b int) int {
	if a <= b {
		return a
	}
	return b
}

// clamp16 clamps v to the unsigned 16-bit range.
func clamp16(v int) uint16 {
	if v < 0 {
		return 0
	}
	if v > 0xffff {
		return 0xffff
	}
	return uint16(v)
}

func tagname(t uint16) string {
	switch t {
	case tImageWidth:
		return "ImageWidth"
	case tImageLength:
		return "ImageLength"
	case tCompression:
		return "Compression"
	case tMake:
		return "Make"
	case tModel:
		return "Model"
	case tStripOffsets:
		return "StripOffsets"
	case tStripByteCounts:
		return "StripByteCounts"
	case tSubIFDs:
		return "SubIFDs"
	case tJPEGInterchange:
		return "JPEGInterchangeFormat"
	case tJPEGLength:
		return "JPEGInterchangeFormatLength"
	case tCFAPattern:
		return "CFAPattern"
	case tExifIFD:
		return "ExifIFD"
	case tISOSpeedRatings:
		return "ISOSpeedRatings"
	case tMakerNote:
		return "MakerNote"
	case tCanonShotInfo:
		return "Canon.ShotInfo"
	case tCanonModelID:
		return "Canon.ModelID"
	case tCanonPowerShotG9WB:
		return "Canon.PowerShotG9WB"
	case tCanonColorData:
		return "Canon.ColorData"
	case tCr2Slice:
		return "Canon.CR2Slice"
	case tCr2RawFormat:
		return "Canon.RawFormat"
	case tOldRawOffset:
		return "Canon.OldRawOffset"
	case tOldWB:
		return "Canon.OldWB"
	case tOldCurve:
		return "Canon.OldCurve"
	default:
		return fmt.Sprintf("Unknown(0x%x)", t)
	}
}
