package cr2

// Options is the typed set of per-camera decode quirks. The zero value is
// the default behaviour; the camera database supplies the right combination
// for each model.
type Options struct {
	// OldFormat forces the old (TIF, D30/D60 era) decode path.
	OldFormat bool

	// DoubleLineLJpeg selects the old-format half-height layout where every
	// two output rows are stored as one double-width source row.
	DoubleLineLJpeg bool

	// UncorrectedRawValues keeps the linearisation table installed on the
	// raster without applying it.
	UncorrectedRawValues bool

	// WBOffset overrides the white-balance byte offset inside ColorData.
	// Zero means the default of 126.
	WBOffset int

	// InvertSRawWB inverts the outer sRaw coefficients.
	InvertSRawWB bool

	// SRaw40D selects the 40D-era YUV formula (4:2:2 only).
	SRaw40D bool

	// SRawNew selects the 5D Mark III era YUV formula.
	SRawNew bool

	// OldSRawHue disables the model-based hue halving.
	OldSRawHue bool

	// ForceNewSRawHue applies the hue halving regardless of model id.
	ForceNewSRawHue bool
}
