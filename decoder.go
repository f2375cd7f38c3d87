package cr2

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Decoder decodes the raw payload of one CR2 file. It borrows the file
// buffer and the parsed directory tree for its lifetime; the lossless-JPEG
// collaborator is supplied by the caller.
type Decoder struct {
	c     *container
	ljpeg FrameDecoder
	opts  Options
	raw   *RawImage
}

// NewDecoder parses the TIFF structure of buf and returns a decoder using
// fd for the compressed payload.
func NewDecoder(buf []byte, fd FrameDecoder, opts Options) (*Decoder, error) {
	c, err := newContainer(buf)
	if err != nil {
		return nil, errors.Wrap(err, "cr2: unsupported format")
	}
	return &Decoder{c: c, ljpeg: fd, opts: opts}, nil
}

// DecodeRaw locates the compressed payload, reassembles its slices and
// returns the raster. For subsampled modes the raster has been rewritten to
// full-resolution RGB triplets. Non-fatal slice errors are collected in the
// raster's error log.
func (d *Decoder) DecodeRaw() (*RawImage, error) {
	if d.opts.OldFormat {
		return d.decodeOldFormat()
	}
	return d.decodeNewFormat()
}

// cr2Slice is one compressed sub-image: its byte range in the file and its
// raster footprint in samples.
type cr2Slice struct {
	w, h   int
	offset uint32
	size   uint32
}

func (d *Decoder) decodeNewFormat() (*RawImage, error) {
	if len(d.c.dirs) < 4 {
		return nil, UnsupportedError("no image data found")
	}
	raw := d.c.subDir(3)
	img := newRawImage()
	d.raw = img

	offsets, ok := raw.entry(tStripOffsets)
	if !ok {
		return nil, MissingEntryError(tStripOffsets)
	}
	counts, ok := raw.entry(tStripByteCounts)
	if !ok {
		return nil, MissingEntryError(tStripByteCounts)
	}

	var slices []cr2Slice
	completeH := 0
	for s := 0; uint32(s) < offsets.count; s++ {
		sl := cr2Slice{
			offset: offsets.Int(s),
			size:   counts.Int(s),
		}
		sof, err := d.ljpeg.SOF(sl.offset, sl.size)
		if err != nil {
			return nil, errors.Wrap(err, "cr2: slice frame header")
		}
		if sof.Cps == 4 && sof.W > sof.H {
			// Canon stores some frames (e.g. 5Ds) with doubled width and
			// halved height.
			sof.W /= 2
			sof.H *= 2
		}
		sl.w = sof.W * sof.Cps
		sl.h = sof.H
		if len(slices) > 0 && slices[0].w != sl.w {
			return nil, FormatError("slice width does not match")
		}
		if d.c.isValid(sl.offset, sl.size) {
			slices = append(slices, sl)
		}
		completeH += sl.h
	}

	if len(slices) == 0 {
		return nil, FormatError("no slices found")
	}
	img.Dim = Point2D{X: slices[0].w, Y: completeH}

	if e, ok := raw.entry(tCr2RawFormat); ok {
		if e.Int(0) == 4 { // sRaw/mRaw; any other value decodes as Bayer
			img.Dim.X /= 3
			img.Cpp = 3
			img.IsCFA = false

			// Some cameras (80D mRaw) disagree between the LJpeg frame
			// size and the raw file size; the pixel count must match.
			we, wok := raw.entry(tImageWidth)
			he, hok := raw.entry(tImageLength)
			if wok && hok {
				w := int(we.Int(0))
				h := int(he.Int(0))
				if w*h != img.Dim.X*img.Dim.Y {
					return nil, FormatError("wrapped slices don't match image size")
				}
				img.Dim = Point2D{X: w, Y: h}
			}
		}
		// 6D mRaw stores width and height flipped for part of the image.
		if img.Dim.X < img.Dim.Y {
			img.Dim.X, img.Dim.Y = img.Dim.Y, img.Dim.X
		}
	}

	img.createData()

	var sliceWidths []int
	if e, ok := raw.entry(tCr2Slice); ok {
		for i := 0; i < int(e.Short(0)); i++ {
			sliceWidths = append(sliceWidths, int(e.Short(1)))
		}
		sliceWidths = append(sliceWidths, int(e.Short(2)))
	} else {
		sliceWidths = append(sliceWidths, slices[0].w)
	}

	offX := 0
	for i, sl := range slices {
		err := d.ljpeg.Decode(img, sl.offset, sl.size, offX, 0, sliceWidths)
		if err != nil {
			if i == 0 {
				return nil, errors.Wrap(err, "cr2: slice 0")
			}
			// Possibly a single bad or truncated slice - keep what decoded.
			img.SetError(err.Error())
		}
		offX += sl.w
	}

	if img.Metadata.Subsampling.X > 1 || img.Metadata.Subsampling.Y > 1 {
		if err := d.sRawInterpolate(); err != nil {
			return nil, err
		}
	}

	return img, nil
}

func (d *Decoder) decodeOldFormat() (*RawImage, error) {
	var off uint32
	if e, ok := d.c.entryRecursive(tOldRawOffset); ok {
		off = e.Int(0)
	} else {
		data := d.c.dirsWithTag(tCFAPattern)
		if len(data) == 0 {
			return nil, MissingEntryError(tOldRawOffset)
		}
		e, ok := data[0].entry(tStripOffsets)
		if !ok {
			return nil, MissingEntryError(tStripOffsets)
		}
		off = e.Int(0)
	}

	// Width and height live in a fixed record 41 bytes into the payload,
	// big-endian regardless of the container's byte order.
	if !d.c.isValid(off, 45) {
		return nil, FormatError("old-format header out of bounds")
	}
	height := int(binary.BigEndian.Uint16(d.c.buf[off+41:]))
	width := int(binary.BigEndian.Uint16(d.c.buf[off+43:]))

	img := newRawImage()
	d.raw = img

	// Every two output rows can be stored as one double-width source row,
	// keeping the RGBG sequence constant per row for better compression.
	if d.opts.DoubleLineLJpeg {
		height *= 2
		img.Dim = Point2D{X: width * 2, Y: height / 2}
	} else {
		width *= 2
		img.Dim = Point2D{X: width, Y: height}
	}
	img.createData()

	size := uint32(len(d.c.buf)) - off
	if err := d.ljpeg.Decode(img, off, size, 0, 0, nil); err != nil {
		if !isIOErr(err) {
			return nil, errors.Wrap(err, "cr2: old-format payload")
		}
		// Truncated data - something may still be useful.
		img.SetError(err.Error())
	}

	if d.opts.DoubleLineLJpeg {
		proc := newRawImage()
		proc.Dim = Point2D{X: width, Y: height}
		proc.Metadata = img.Metadata
		proc.errs = append(proc.errs, img.errs...)
		proc.createData()

		for y := 0; y < height; y++ {
			src := img.Row(y / 2)
			if y%2 != 0 {
				src = src[width:]
			}
			copy(proc.Row(y), src[:width])
		}
		img = proc
		d.raw = img
	}

	if e, ok := d.c.entryRecursive(tOldCurve); ok && e.datatype == dtShort && e.count == curveLen {
		img.SetTable(e.Shorts())
		if !d.opts.UncorrectedRawValues {
			img.sixteenBitLookup()
			img.SetTable(nil)
		}
	}

	return img, nil
}

// isIOErr reports whether err stems from truncated or out-of-range input
// rather than a malformed bitstream.
func isIOErr(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
