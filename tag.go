package cr2

import (
	"encoding/binary"
	"fmt"
	"math"
)

// entry is a tagged IFD value. It keeps the raw value bytes (already
// dereferenced when the entry did not fit inline) and decodes on demand with
// the container's byte order. It does not own the backing file buffer.
type entry struct {
	id        uint16
	datatype  uint16
	count     uint32
	raw       []byte
	byteOrder binary.ByteOrder
}

// Int returns the i-th element coerced to an unsigned integer,
// or 0 when the index or the datatype does not fit.
func (e *entry) Int(i int) uint32 {
	if i < 0 || uint32(i) >= e.count {
		return 0
	}
	switch e.datatype {
	case dtByte, dtUndefined:
		return uint32(e.raw[i])
	case dtShort:
		return uint32(e.byteOrder.Uint16(e.raw[2*i:]))
	case dtLong, dtSLong:
		return e.byteOrder.Uint32(e.raw[4*i:])
	}
	return 0
}

// Short returns the i-th element as an unsigned 16-bit value.
func (e *entry) Short(i int) uint16 {
	if i < 0 || uint32(i) >= e.count {
		return 0
	}
	switch e.datatype {
	case dtByte, dtUndefined:
		return uint16(e.raw[i])
	case dtShort:
		return e.byteOrder.Uint16(e.raw[2*i:])
	case dtLong:
		return uint16(e.byteOrder.Uint32(e.raw[4*i:]))
	}
	return 0
}

// Float returns the i-th element coerced to float64.
func (e *entry) Float(i int) float64 {
	if i < 0 || uint32(i) >= e.count {
		return 0
	}
	switch e.datatype {
	case dtFloat:
		return float64(math.Float32frombits(e.byteOrder.Uint32(e.raw[4*i:])))
	case dtDouble:
		return math.Float64frombits(e.byteOrder.Uint64(e.raw[8*i:]))
	case dtRational:
		num := e.byteOrder.Uint32(e.raw[8*i:])
		denom := e.byteOrder.Uint32(e.raw[8*i+4:])
		if denom == 0 {
			return 0
		}
		return float64(num) / float64(denom)
	case dtSRational:
		num := int32(e.byteOrder.Uint32(e.raw[8*i:]))
		denom := int32(e.byteOrder.Uint32(e.raw[8*i+4:]))
		if denom == 0 {
			return 0
		}
		return float64(num) / float64(denom)
	default:
		return float64(e.Int(i))
	}
}

// String returns the entry as an ASCII string, trimming the NUL terminator.
func (e *entry) String() string {
	if e.datatype != dtASCII || len(e.raw) == 0 {
		return ""
	}
	s := e.raw
	if s[len(s)-1] == 0 {
		s = s[:len(s)-1]
	}
	return string(s)
}

// Shorts copies the whole entry out as unsigned 16-bit values.
func (e *entry) Shorts() []uint16 {
	s := make([]uint16, e.count)
	for i := range s {
		s[i] = e.Short(i)
	}
	return s
}

func (e *entry) GoString() string {
	return fmt.Sprintf("%s type=%d count=%d", tagname(e.id), e.datatype, e.count)
}
