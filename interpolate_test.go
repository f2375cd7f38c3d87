package cr2

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func yuvRaster(w, h int) *RawImage {
	img := newRawImage()
	img.Dim = Point2D{X: w, Y: h}
	img.Cpp = 3
	img.IsCFA = false
	img.createData()
	return img
}

func setYUV(img *RawImage, x, y int, yy, cb, cr uint16) {
	row := img.Row(y)
	row[3*x], row[3*x+1], row[3*x+2] = yy, cb, cr
}

func rgbAt(img *RawImage, x, y int) (r, g, b uint16) {
	row := img.Row(y)
	return row[3*x], row[3*x+1], row[3*x+2]
}

func TestYUVFormulas(t *testing.T) {
	c := rgbCoeffs{1024, 1024, 1024}

	r, g, b := classicYUV{}.convert(c, 1000, 100, 200)
	assert.Equal(t, [3]int{8480, 1152, 6816}, [3]int{r, g, b})

	r, g, b = yuv40D{}.convert(c, 1000, 100, 200)
	assert.Equal(t, [3]int{2752, 1476, 2352}, [3]int{r, g, b})

	r, g, b = yuv5DMkIII{}.convert(c, 1000, 100, 200)
	assert.Equal(t, [3]int{4800, 3524, 4400}, [3]int{r, g, b})
}

func TestInterpolate422Clamp(t *testing.T) {
	// Saturated luma with neutral chroma must clamp every channel to the
	// 16-bit ceiling.
	img := yuvRaster(4, 1)
	for x := 0; x < 4; x++ {
		setYUV(img, x, 0, 65535, 16384, 16384)
	}

	c := rgbCoeffs{1024, 1024, 1024}
	interpolate422(classicYUV{}, img, c, 16384, 16384, img.Dim.X/2, 0, 1)

	for x := 0; x < 4; x++ {
		r, g, b := rgbAt(img, x, 0)
		assert.Equal(t, [3]uint16{65535, 65535, 65535}, [3]uint16{r, g, b}, "x=%d", x)
	}
}

func TestInterpolate422Averaging(t *testing.T) {
	const bias = 16384
	img := yuvRaster(6, 1)
	setYUV(img, 0, 0, 1000, bias+100, bias+200)
	setYUV(img, 1, 0, 1100, 0, 0) // own chroma ignored, averaged from 0 and 2
	setYUV(img, 2, 0, 1200, bias+300, bias+400)
	setYUV(img, 3, 0, 1300, 0, 0)
	setYUV(img, 4, 0, 2000, bias+40, bias+60)
	setYUV(img, 5, 0, 2100, bias+999, bias+999)

	c := rgbCoeffs{1024, 1024, 1024}
	conv := func(y, cb, cr int) [3]uint16 {
		r, g, b := classicYUV{}.convert(c, y, cb, cr)
		return [3]uint16{clamp16(r), clamp16(g), clamp16(b)}
	}
	want0 := conv(1000, 100, 200)
	want1 := conv(1100, (100+300)>>1, (200+400)>>1)
	// Trailing pair replicates the previous chroma, no averaging.
	want4 := conv(2000, 40, 60)
	want5 := conv(2100, 40, 60)

	interpolate422(classicYUV{}, img, c, bias, bias, img.Dim.X/2, 0, 1)

	r, g, b := rgbAt(img, 0, 0)
	assert.Equal(t, want0, [3]uint16{r, g, b})
	r, g, b = rgbAt(img, 1, 0)
	assert.Equal(t, want1, [3]uint16{r, g, b})
	r, g, b = rgbAt(img, 4, 0)
	assert.Equal(t, want4, [3]uint16{r, g, b})
	r, g, b = rgbAt(img, 5, 0)
	assert.Equal(t, want5, [3]uint16{r, g, b})
}

func TestInterpolate420UniformChroma(t *testing.T) {
	// With uniform chroma every average degenerates to the same value, so
	// each output pixel is the plain conversion of its own luma.
	const bias = 16384
	img := yuvRaster(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			setYUV(img, x, y, uint16(1000+100*y+x), bias+100, bias+200)
		}
	}

	c := rgbCoeffs{1024, 1024, 1024}
	conv := func(y, cb, cr int) [3]uint16 {
		r, g, b := classicYUV{}.convert(c, y, cb, cr)
		return [3]uint16{clamp16(r), clamp16(g), clamp16(b)}
	}

	interpolate420(classicYUV{}, img, c, bias, img.Dim.X/2, img.Dim.Y/2, 0, img.Dim.Y/2)

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			// The bottom row pair keeps its trailing column raw: the last
			// line pass has no right-neighbour step.
			if y >= 2 && x >= 2 {
				continue
			}
			r, g, b := rgbAt(img, x, y)
			assert.Equal(t, conv(1000+100*y+x, 100, 200), [3]uint16{r, g, b}, "x=%d y=%d", x, y)
		}
	}
}

func TestSrawCoeffs(t *testing.T) {
	raw := make([]byte, 2*82)
	for i, v := range []uint16{1024, 1000, 1047, 512} {
		binary.LittleEndian.PutUint16(raw[2*(78+i):], v)
	}
	e := &entry{id: tCanonColorData, datatype: dtShort, count: 82, raw: raw, byteOrder: binary.LittleEndian}

	c := srawCoeffs(e, false)
	assert.Equal(t, rgbCoeffs{1024, 1024, 512}, c)

	// Inverting the outer coefficients: 1024*1024/512 = 2048.
	c = srawCoeffs(e, true)
	assert.Equal(t, rgbCoeffs{1024, 1024, 2048}, c)
}

func TestInvertWBRoundTrip(t *testing.T) {
	for _, x := range []int{512, 1024, 1536, 2048} {
		inv := int(1024.0 / (float32(x) / 1024.0))
		inv2 := int(1024.0 / (float32(inv) / 1024.0))
		assert.InDelta(t, x, inv2, 2, "x=%d", x)
	}
}

func TestUnknownSubsampling(t *testing.T) {
	fb := newCR2([]tEntry{
		longsE(tStripOffsets, 0x2000),
		longsE(tStripByteCounts, 0x800),
		shortsE(tCr2Magic, 1),
		shortsE(tCr2RawFormat, 4),
	}, []tEntry{colorDataE(1024, 1024, 1024, 1024)})
	fb.pad(0x2800)

	lj := &fakeLJpeg{
		sofs: map[uint32]SOF{0x2000: {W: 120, H: 80, Cps: 3}},
		sub:  Point2D{X: 2, Y: 3},
		fill: fillNeutral,
	}
	d, err := NewDecoder(fb.b, lj, Options{})
	require.NoError(t, err)

	_, err = d.DecodeRaw()
	assert.ErrorContains(t, err, "unknown subsampling")
}

func TestHueSelection(t *testing.T) {
	build := func(maker []tEntry) *Decoder {
		fb := newCR2([]tEntry{shortsE(tCr2Magic, 1)}, maker)
		d, err := NewDecoder(fb.b, &fakeLJpeg{}, Options{})
		require.NoError(t, err)
		d.raw = &RawImage{Metadata: Metadata{Subsampling: Point2D{X: 2, Y: 2}}}
		return d
	}

	// No model id: no bias at all.
	d := build(nil)
	assert.Equal(t, 0, d.hue())

	// Old generation keeps the full subsampling product.
	d = build([]tEntry{longsE(tCanonModelID, 0x80000001)})
	assert.Equal(t, 4, d.hue())

	// 5D Mark III and later halve it.
	d = build([]tEntry{longsE(tCanonModelID, modelID5DMkIII)})
	assert.Equal(t, 1, d.hue())

	d = build([]tEntry{longsE(tCanonModelID, modelIDEOSM)})
	assert.Equal(t, 1, d.hue())

	// Hints override the model-based choice.
	d = build([]tEntry{longsE(tCanonModelID, 0x80000001)})
	d.opts.ForceNewSRawHue = true
	assert.Equal(t, 1, d.hue())

	d = build([]tEntry{longsE(tCanonModelID, modelID5DMkIII)})
	d.opts.OldSRawHue = true
	assert.Equal(t, 4, d.hue())
}
