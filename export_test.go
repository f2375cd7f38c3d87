package cr2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHDRImage(t *testing.T) {
	img := yuvRaster(2, 1)
	row := img.Row(0)
	copy(row, []uint16{65535, 32768, 16384, 100, 200, 300})
	img.Metadata.WBCoeffs = [3]float32{2048, 1024, 512}

	m, err := HDRImage(img)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Bounds().Dx())
	assert.Equal(t, 1, m.Bounds().Dy())

	r, g, b, _ := m.HDRAt(0, 0).HDRRGBA()
	assert.InDelta(t, 2.0, r, 1e-6)
	assert.InDelta(t, 0.5, g, 1e-4)
	assert.InDelta(t, 0.125, b, 1e-4)
}

func TestHDRImageNeutralWB(t *testing.T) {
	img := yuvRaster(1, 1)
	copy(img.Row(0), []uint16{65535, 65535, 65535})

	m, err := HDRImage(img)
	require.NoError(t, err)

	r, g, b, _ := m.HDRAt(0, 0).HDRRGBA()
	assert.InDelta(t, 1.0, r, 1e-6)
	assert.InDelta(t, 1.0, g, 1e-6)
	assert.InDelta(t, 1.0, b, 1e-6)
}

func TestHDRImageRejectsMosaic(t *testing.T) {
	img := newRawImage()
	img.Dim = Point2D{X: 2, Y: 2}
	img.createData()

	_, err := HDRImage(img)
	assert.ErrorContains(t, err, "mosaic")
}
