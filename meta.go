package cr2

// CameraDatabase is the external camera metadata collaborator: it knows
// which (make, model, mode) triples the pipeline has profiles for.
type CameraDatabase interface {
	Supported(make, model, mode string) bool
}

// g9WBLookup maps the shot-info white-balance index of PowerShot G9 class
// cameras to a sub-offset in the WB entry. Opaque data, preserved verbatim.
const g9WBLookup = "012347800000005896"

// CheckSupport verifies that the camera the file came from is known to db.
// sRaw-capable files are looked up under the "sRaw1" mode.
func (d *Decoder) CheckSupport(db CameraDatabase) error {
	data := d.c.dirsWithTag(tModel)
	if len(data) == 0 {
		return MissingEntryError(tModel)
	}
	makeE, ok := data[0].entry(tMake)
	if !ok {
		return MissingEntryError(tMake)
	}
	modelE, _ := data[0].entry(tModel)
	cameraMake := makeE.String()
	model := modelE.String()

	mode := ""
	if raws := d.c.dirsWithTag(tCr2Magic); len(raws) > 0 {
		if e, ok := raws[0].entry(tCr2RawFormat); ok && e.Int(0) == 4 {
			mode = "sRaw1"
		}
	}
	if !db.Supported(cameraMake, model, mode) {
		return UnsupportedError("camera " + cameraMake + " " + model + " " + mode)
	}
	return nil
}

// DecodeMetadata populates the raster's CFA pattern, white balance, ISO and
// mode string. It must run after DecodeRaw. Failures reading white balance
// are logged on the raster, never fatal.
func (d *Decoder) DecodeMetadata() error {
	img := d.raw
	if img == nil {
		return DecodeError("no raster decoded")
	}
	img.CFA = CFAPattern{CFARed, CFAGreen, CFAGreen2, CFABlue}

	if len(d.c.dirsWithTag(tModel)) == 0 {
		return MissingEntryError(tModel)
	}

	sub := img.Metadata.Subsampling
	switch {
	case sub.X == 2 && sub.Y == 2:
		img.Metadata.Mode = "sRaw1"
	case sub.X == 2 && sub.Y == 1:
		img.Metadata.Mode = "sRaw2"
	}

	if e, ok := d.c.entryRecursive(tISOSpeedRatings); ok {
		img.Metadata.ISO = int(e.Int(0))
	}

	d.decodeWB()
	return nil
}

// decodeWB reads the white-balance triplet from one of its three possible
// homes, in priority order.
func (d *Decoder) decodeWB() {
	img := d.raw

	if wb, ok := d.c.entryRecursive(tCanonColorData); ok {
		// ColorData is a big table and cameras store the active WB in
		// different parts of it; 126 is the most common offset.
		offset := 126
		if d.opts.WBOffset != 0 {
			offset = d.opts.WBOffset
		}
		offset /= 2
		if uint32(offset+3) >= wb.count {
			img.SetError("white balance: ColorData too short")
			return
		}
		img.Metadata.WBCoeffs[0] = float32(wb.Short(offset + 0))
		img.Metadata.WBCoeffs[1] = float32(wb.Short(offset + 1))
		img.Metadata.WBCoeffs[2] = float32(wb.Short(offset + 3))
		return
	}

	shotInfo, haveShot := d.c.entryRecursive(tCanonShotInfo)
	g9wb, haveG9 := d.c.entryRecursive(tCanonPowerShotG9WB)
	if haveShot && haveG9 {
		if shotInfo.count < 8 {
			img.SetError("white balance: ShotInfo too short")
			return
		}
		wbIndex := shotInfo.Short(7)
		wbOffset := 0
		if wbIndex < 18 {
			wbOffset = int(g9WBLookup[wbIndex] - '0')
		}
		wbOffset = wbOffset*8 + 2
		if uint32(wbOffset+3) >= g9wb.count {
			img.SetError("white balance: G9 WB entry too short")
			return
		}
		img.Metadata.WBCoeffs[0] = float32(g9wb.Int(wbOffset + 1))
		img.Metadata.WBCoeffs[1] = (float32(g9wb.Int(wbOffset+0)) + float32(g9wb.Int(wbOffset+3))) / 2.0
		img.Metadata.WBCoeffs[2] = float32(g9wb.Int(wbOffset + 2))
		return
	}

	// WB for the old 1D and 1DS.
	if wb, ok := d.c.entryRecursive(tOldWB); ok {
		if wb.count >= 3 {
			img.Metadata.WBCoeffs[0] = float32(wb.Float(0))
			img.Metadata.WBCoeffs[1] = float32(wb.Float(1))
			img.Metadata.WBCoeffs[2] = float32(wb.Float(2))
		}
	}
}
