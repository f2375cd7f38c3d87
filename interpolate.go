package cr2

// sRaw rasters come out of the entropy decoder as packed (Y, Cb, Cr)
// triplets with subsampled chroma. sRawInterpolate rewrites them in place to
// full-resolution (R, G, B). Three camera generations use three different
// integer matrices; the formula is a zero-size type parameter of the row
// loops. All three formula types have the same underlying type, so the Go
// compiler builds one shared instantiation of each loop and calls convert
// through its dictionary: an indirect call per pixel.

// rgbCoeffs are the three integer multipliers derived from the white-balance
// entry, in units of 1/1024.
type rgbCoeffs [3]int

type yuvFormula interface {
	convert(c rgbCoeffs, y, cb, cr int) (r, g, b int)
}

// classicYUV is the default matrix for 4:2:2 and 4:2:0.
type classicYUV struct{}

func (classicYUV) convert(c rgbCoeffs, y, cb, cr int) (r, g, b int) {
	r = c[0] * (y + ((50*cb + 22929*cr) >> 12))
	g = c[1] * (y + ((-5640*cb - 11751*cr) >> 12))
	b = c[2] * (y + ((29040*cb - 101*cr) >> 12))
	return r >> 8, g >> 8, b >> 8
}

// yuv40D is the 40D-era matrix, 4:2:2 only.
type yuv40D struct{}

func (yuv40D) convert(c rgbCoeffs, y, cb, cr int) (r, g, b int) {
	r = c[0] * (y + cr - 512)
	g = c[1] * (y + ((-778*cb - (cr << 11)) >> 12) - 512)
	b = c[2] * (y + cb - 512)
	return r >> 8, g >> 8, b >> 8
}

// yuv5DMkIII is the matrix found in the EOS 5D Mark III.
type yuv5DMkIII struct{}

func (yuv5DMkIII) convert(c rgbCoeffs, y, cb, cr int) (r, g, b int) {
	r = c[0] * (y + cr)
	g = c[1] * (y + ((-778*cb - (cr << 11)) >> 12))
	b = c[2] * (y + cb)
	return r >> 8, g >> 8, b >> 8
}

func storeRGB[F yuvFormula](f F, line []uint16, off int, c rgbCoeffs, y, cb, cr int) {
	r, g, b := f.convert(c, y, cb, cr)
	line[off] = clamp16(r)
	line[off+1] = clamp16(g)
	line[off+2] = clamp16(b)
}

// hue returns the camera-generation chroma offset. Cameras from the 5D Mark
// III on halve the subsampling product.
func (d *Decoder) hue() int {
	sub := d.raw.Metadata.Subsampling
	base := sub.X * sub.Y
	if d.opts.OldSRawHue {
		return base
	}
	e, ok := d.c.entryRecursive(tCanonModelID)
	if !ok {
		return 0
	}
	modelID := e.Int(0)
	if modelID >= modelID5DMkIII || modelID == modelIDEOSM || d.opts.ForceNewSRawHue {
		return (base - 1) >> 1
	}
	return base
}

// srawCoeffs extracts the three multipliers used to reconstruct uncorrected
// RGB data from the ColorData entry, optionally inverting the outer pair.
func srawCoeffs(wb *entry, invert bool) rgbCoeffs {
	const offset = 78
	var c rgbCoeffs
	c[0] = int(wb.Short(offset + 0))
	c[1] = (int(wb.Short(offset+1)) + int(wb.Short(offset+2)) + 1) >> 1
	c[2] = int(wb.Short(offset + 3))

	if invert {
		c[0] = int(1024.0 / (float32(c[0]) / 1024.0))
		c[2] = int(1024.0 / (float32(c[2]) / 1024.0))
	}
	return c
}

// sRawInterpolate converts the packed Y/Cb/Cr raster to RGB in place.
func (d *Decoder) sRawInterpolate() error {
	img := d.raw
	data := d.c.dirsWithTag(tCanonColorData)
	if len(data) == 0 {
		return MissingEntryError(tCanonColorData)
	}
	wb, _ := data[0].entry(tCanonColorData)
	coeffs := srawCoeffs(wb, d.opts.InvertSRawWB)

	hueBias := -d.hue() + 16384
	sub := img.Metadata.Subsampling
	switch {
	case sub.X == 2 && sub.Y == 1:
		switch {
		case d.opts.SRaw40D:
			interpolate422(yuv40D{}, img, coeffs, hueBias, 16384, img.Dim.X/2, 0, img.Dim.Y)
		case d.opts.SRawNew:
			interpolate422(yuv5DMkIII{}, img, coeffs, hueBias, 16384, img.Dim.X/2, 0, img.Dim.Y)
		default:
			interpolate422(classicYUV{}, img, coeffs, hueBias, hueBias, img.Dim.X/2, 0, img.Dim.Y)
		}
	case sub.X == 2 && sub.Y == 2:
		if d.opts.SRawNew {
			interpolate420(yuv5DMkIII{}, img, coeffs, hueBias, img.Dim.X/2, img.Dim.Y/2, 0, img.Dim.Y/2)
		} else {
			interpolate420(classicYUV{}, img, coeffs, hueBias, img.Dim.X/2, img.Dim.Y/2, 0, img.Dim.Y/2)
		}
	default:
		return UnsupportedError("unknown subsampling")
	}
	return nil
}

// interpolate422 expands one source triplet into two output pixels per row.
// Rows are independent, so disjoint [startH, endH) ranges may run
// concurrently. edgeBias is the chroma offset applied to the trailing pixel
// pair, which has no next sample to average with.
func interpolate422[F yuvFormula](f F, img *RawImage, c rgbCoeffs, hueBias, edgeBias, w, startH, endH int) {
	// Last pixel pair is not interpolated.
	w--

	for y := startH; y < endH; y++ {
		line := img.Row(y)
		off := 0
		for x := 0; x < w; x++ {
			yy := int(line[off])
			cb := int(line[off+1]) - hueBias
			cr := int(line[off+2]) - hueBias
			storeRGB(f, line, off, c, yy, cb, cr)
			off += 3

			yy = int(line[off])
			cb2 := (cb + int(line[off+1+3]) - hueBias) >> 1
			cr2 := (cr + int(line[off+2+3]) - hueBias) >> 1
			storeRGB(f, line, off, c, yy, cb2, cr2)
			off += 3
		}
		// Last two pixels reuse the final chroma pair.
		yy := int(line[off])
		cb := int(line[off+1]) - edgeBias
		cr := int(line[off+2]) - edgeBias
		storeRGB(f, line, off, c, yy, cb, cr)

		yy = int(line[off+3])
		storeRGB(f, line, off+3, c, yy, cb, cr)
	}
}

// interpolate420 expands one source triplet into a 2x2 output block, reading
// chroma from the right neighbour and the row pair below. It rewrites rows it
// still reads from, so a [startH, endH) range must not run concurrently with
// the range above it: single writer per row pair.
func interpolate420[F yuvFormula](f F, img *RawImage, c rgbCoeffs, hueBias, w, h, startH, endH int) {
	// Last pixel pair is not interpolated.
	w--

	atLastLine := false
	if endH == h {
		endH--
		atLastLine = true
	}

	for y := startH; y < endH; y++ {
		cur := img.Row(y * 2)
		next := img.Row(y*2 + 1)
		below := img.Row(y*2 + 2)
		off := 0
		for x := 0; x < w; x++ {
			yy := int(cur[off])
			cb := int(cur[off+1]) - hueBias
			cr := int(cur[off+2]) - hueBias
			storeRGB(f, cur, off, c, yy, cb, cr)

			yy = int(cur[off+3])
			cb2 := (cb + int(cur[off+1+6]) - hueBias) >> 1
			cr2 := (cr + int(cur[off+2+6]) - hueBias) >> 1
			storeRGB(f, cur, off+3, c, yy, cb2, cr2)

			yy = int(next[off])
			cb3 := (cb + int(below[off+1]) - hueBias) >> 1
			cr3 := (cr + int(below[off+2]) - hueBias) >> 1
			storeRGB(f, next, off, c, yy, cb3, cr3)

			yy = int(next[off+3])
			cb = (cb + cb2 + cb3 + int(below[off+1+6]) - hueBias) >> 2 // source + above + left + below-right
			cr = (cr + cr2 + cr3 + int(below[off+2+6]) - hueBias) >> 2
			storeRGB(f, next, off+3, c, yy, cb, cr)
			off += 6
		}
		// Last column has no right neighbour.
		yy := int(cur[off])
		cb := int(cur[off+1]) - hueBias
		cr := int(cur[off+2]) - hueBias
		storeRGB(f, cur, off, c, yy, cb, cr)

		yy = int(cur[off+3])
		storeRGB(f, cur, off+3, c, yy, cb, cr)

		yy = int(next[off])
		cb = (cb + int(below[off+1]) - hueBias) >> 1
		cr = (cr + int(below[off+2]) - hueBias) >> 1
		storeRGB(f, next, off, c, yy, cb, cr)

		yy = int(next[off+3])
		storeRGB(f, next, off+3, c, yy, cb, cr)
	}

	if atLastLine {
		// No next row pair: a 4:2:2-style pass over the bottom two rows.
		cur := img.Row(endH * 2)
		next := img.Row(endH*2 + 1)
		off := 0
		for x := 0; x < w; x++ {
			yy := int(cur[off])
			cb := int(cur[off+1]) - hueBias
			cr := int(cur[off+2]) - hueBias
			storeRGB(f, cur, off, c, yy, cb, cr)

			yy = int(cur[off+3])
			storeRGB(f, cur, off+3, c, yy, cb, cr)

			yy = int(next[off])
			storeRGB(f, next, off, c, yy, cb, cr)

			yy = int(next[off+3])
			storeRGB(f, next, off+3, c, yy, cb, cr)
			off += 6
		}
	}
}
