package cr2

import (
	"bytes"
	"compress/zlib"
	"io"

	"golang.org/x/image/tiff/lzw"
)

// Preview is one embedded preview image: the full-size JPEG in IFD0, the
// thumbnail in IFD1 or the small uncompressed RGB strip in IFD2.
type Preview struct {
	Width, Height int
	Compression   int
	Data          []byte // JPEG stream, or raw strip bytes after decompression
}

// Previews extracts the embedded previews from the non-raw directories, in
// chain order. Directories without image data, and the raw payload itself,
// are skipped; a malformed preview is dropped rather than failing the lot.
func (d *Decoder) Previews() []Preview {
	var out []Preview
	for i, dir := range d.c.dirs {
		if i == 3 { // raw IFD
			continue
		}
		p, err := d.preview(dir)
		if err != nil || p.Data == nil {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (d *Decoder) preview(dir *ifd) (Preview, error) {
	var p Preview
	if e, ok := dir.entry(tImageWidth); ok {
		p.Width = int(e.Int(0))
	}
	if e, ok := dir.entry(tImageLength); ok {
		p.Height = int(e.Int(0))
	}

	// Thumbnails publish a whole JPEG stream instead of strips.
	if off, ok := dir.entry(tJPEGInterchange); ok {
		n, ok := dir.entry(tJPEGLength)
		if !ok {
			return p, MissingEntryError(tJPEGLength)
		}
		if !d.c.isValid(off.Int(0), n.Int(0)) {
			return p, FormatError("thumbnail out of bounds")
		}
		p.Compression = cJPEG
		p.Data = d.c.buf[off.Int(0) : off.Int(0)+n.Int(0)]
		return p, nil
	}

	offsets, ok := dir.entry(tStripOffsets)
	if !ok {
		return p, MissingEntryError(tStripOffsets)
	}
	counts, ok := dir.entry(tStripByteCounts)
	if !ok {
		return p, MissingEntryError(tStripByteCounts)
	}

	p.Compression = cNone
	if e, ok := dir.entry(tCompression); ok {
		p.Compression = int(e.Int(0))
	}

	var buf bytes.Buffer
	for s := 0; uint32(s) < offsets.count; s++ {
		off, n := offsets.Int(s), counts.Int(s)
		if !d.c.isValid(off, n) {
			return p, FormatError("preview strip out of bounds")
		}
		strip, err := d.decompressStrip(off, n, p.Compression)
		if err != nil {
			return p, err
		}
		buf.Write(strip)
	}
	p.Data = buf.Bytes()
	return p, nil
}

// decompressStrip undoes the strip compression. JPEG strips pass through
// unchanged for image/jpeg.
func (d *Decoder) decompressStrip(offset, n uint32, compression int) ([]byte, error) {
	raw := d.c.buf[offset : offset+n]
	switch compression {
	// Some tools interpret a missing Compression value as none, so do the
	// same for zero.
	case cNone, 0, cJPEG, cJPEGOld:
		return raw, nil
	case cLZW:
		r := lzw.NewReader(bytes.NewReader(raw), lzw.MSB, 8)
		defer r.Close()
		return io.ReadAll(r)
	case cDeflate, cDeflateOld:
		r, err := zlib.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	default:
		return nil, UnsupportedError("preview compression")
	}
}
