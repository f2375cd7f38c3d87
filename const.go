package cr2

// A CR2 file is a TIFF container: a chain of Image File Directories (IFDs)
// whose entries are 12 bytes each,
//
//  - a tag, which describes the signification of the entry,
//  - the data type and length of the entry,
//  - the data itself or a pointer to it if it is more than 4 bytes.
//
// IFD0 holds camera metadata plus a full-size JPEG preview, IFD1 a thumbnail,
// IFD2 a small uncompressed RGB preview, and IFD3 the lossless-JPEG raw
// payload. The Exif sub-IFD hangs off IFD0, the Canon MakerNote off the
// Exif sub-IFD.
//
// See http://lclevy.free.fr/cr2/ for the container layout and the sRaw/mRaw
// sample organisation.

const (
	leHeader = "II\x2A\x00" // Header for little-endian files.
	beHeader = "MM\x00\x2A" // Header for big-endian files.

	ifdLen = 12 // Length of an IFD entry in bytes.
)

// Data types (p. 14-16 of the TIFF spec).
const (
	dtByte      = 1
	dtASCII     = 2
	dtShort     = 3
	dtLong      = 4
	dtRational  = 5
	dtSByte     = 6
	dtUndefined = 7
	dtSShort    = 8
	dtSLong     = 9
	dtSRational = 10
	dtFloat     = 11
	dtDouble    = 12
)

// The length of one instance of each data type in bytes.
var lengths = [...]uint32{0, 1, 1, 2, 4, 8, 1, 1, 2, 4, 8, 4, 8}

// Baseline TIFF and Exif tags used by the decoder.
const (
	tImageWidth      = 0x100
	tImageLength     = 0x101
	tCompression     = 0x103
	tMake            = 0x10f
	tModel           = 0x110
	tStripOffsets    = 0x111
	tStripByteCounts = 0x117
	tSubIFDs         = 0x14a
	tJPEGInterchange = 0x201
	tJPEGLength      = 0x202

	tCFAPattern = 0x828e

	tExifIFD         = 0x8769
	tISOSpeedRatings = 0x8827
	tMakerNote       = 0x927c
)

// Canon MakerNote tags.
const (
	tCanonShotInfo      = 0x0004
	tCanonModelID       = 0x0010
	tCanonPowerShotG9WB = 0x0029
	tCanonColorData     = 0x4001
)

// CR2-specific tags found in the raw IFD.
const (
	tCr2Magic     = 0xc5d8 // present in the raw IFD of every new-format file
	tCr2Slice     = 0xc640 // (count-1, repeated width, last width)
	tCr2RawFormat = 0xc6c5 // 4 means sRaw/mRaw sample organisation
)

// Old-format (TIF, D30/D60 era) tags.
const (
	tOldRawOffset = 0x81  // payload offset anywhere in the tree
	tOldWB        = 0xa4  // WB for the old 1D and 1DS, three floats
	tOldCurve     = 0x123 // 4096-entry linearisation table
)

// Strip compression ids handled by the preview extractor.
const (
	cNone       = 1
	cLZW        = 5
	cJPEGOld    = 6 // Superseded by cJPEG.
	cJPEG       = 7
	cDeflate    = 8 // zlib compression.
	cDeflateOld = 32946
)

// Canon model ids with the halved sRaw hue bias convention. Cameras from the
// 5D Mark III (0x80000281) on, plus the EOS M (0x80000218), encode chroma
// with the new bias.
const (
	modelID5DMkIII = 0x80000281
	modelIDEOSM    = 0x80000218
)

// Number of entries in an old-format linearisation table.
const curveLen = 4096
