package cr2

import (
	"image"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/hdrcolor"
)

// HDRImage converts an interpolated 3-component raster to a linear HDR
// image, scaling channels by the white-balance multipliers normalised to
// green. Mosaic rasters must be demosaiced first and are rejected.
func HDRImage(img *RawImage) (*hdr.RGB, error) {
	if img.Cpp != 3 {
		return nil, UnsupportedError("mosaic raster, demosaic first")
	}

	mul := [3]float64{1, 1, 1}
	if wb := img.Metadata.WBCoeffs; wb[1] != 0 {
		mul[0] = float64(wb[0]) / float64(wb[1])
		mul[2] = float64(wb[2]) / float64(wb[1])
	}

	m := hdr.NewRGB(image.Rect(0, 0, img.Dim.X, img.Dim.Y))
	for y := 0; y < img.Dim.Y; y++ {
		row := img.Row(y)
		for x := 0; x < img.Dim.X; x++ {
			m.SetRGB(x, y, hdrcolor.RGB{
				R: float64(row[3*x]) / 65535 * mul[0],
				G: float64(row[3*x+1]) / 65535,
				B: float64(row[3*x+2]) / 65535 * mul[2],
			})
		}
	}
	return m, nil
}
