package cr2

// CFAColor identifies one cell of the 2x2 Bayer pattern.
type CFAColor uint8

const (
	CFARed CFAColor = iota
	CFAGreen
	CFAGreen2
	CFABlue
)

func (c CFAColor) String() string {
	switch c {
	case CFARed:
		return "R"
	case CFAGreen:
		return "G"
	case CFAGreen2:
		return "g"
	case CFABlue:
		return "B"
	}
	return "?"
}

// CFAPattern is the 2x2 colour filter arrangement, row major.
type CFAPattern [4]CFAColor

// Point2D is an integer pair: image dimensions or subsampling factors.
type Point2D struct {
	X, Y int
}

// Metadata is the per-image record filled during decode.
type Metadata struct {
	WBCoeffs    [3]float32
	Subsampling Point2D
	ISO         int
	Mode        string
}

// RawImage is a mutable 2-D buffer of 16-bit samples. It is created empty by
// the decoder once dimensions are known, filled by the lossless-JPEG
// collaborator, optionally rewritten in place by the sRaw interpolator, and
// returned to the caller. The sample buffer is exclusively owned.
type RawImage struct {
	Dim      Point2D
	Cpp      int // components per pixel: 1 mosaic, 3 subsampled
	IsCFA    bool
	CFA      CFAPattern
	Metadata Metadata

	data  []uint16
	pitch int // samples per row

	table []uint16 // linearisation table, nil or curveLen entries

	errs []string
}

func newRawImage() *RawImage {
	return &RawImage{Cpp: 1, IsCFA: true}
}

// createData allocates the sample buffer for the current dimensions. Large
// make() allocations land on their own size class, which keeps the start of
// the buffer aligned for vector loads downstream. Rows are not padded, so a
// later row starts aligned only when the pitch allows it.
func (r *RawImage) createData() {
	r.pitch = r.Dim.X * r.Cpp
	r.data = make([]uint16, r.pitch*r.Dim.Y)
}

// Row returns the y-th row of samples.
func (r *RawImage) Row(y int) []uint16 {
	return r.data[y*r.pitch : (y+1)*r.pitch]
}

// Data returns the whole sample buffer.
func (r *RawImage) Data() []uint16 {
	return r.data
}

// SetError appends a non-fatal diagnostic to the error log.
func (r *RawImage) SetError(msg string) {
	r.errs = append(r.errs, msg)
}

// Errors returns the non-fatal diagnostics collected during decode.
func (r *RawImage) Errors() []string {
	return r.errs
}

// SetTable installs (or detaches, with nil) the linearisation table.
func (r *RawImage) SetTable(table []uint16) {
	r.table = table
}

// Table returns the installed linearisation table, nil when absent.
func (r *RawImage) Table() []uint16 {
	return r.table
}

// sixteenBitLookup replaces every sample by table[sample & 0xfff]. The raster
// dimensions are unchanged.
func (r *RawImage) sixteenBitLookup() {
	if r.table == nil {
		return
	}
	for i, s := range r.data {
		r.data[i] = r.table[s&0xfff]
	}
}
