package libpattern

import (
	"github.com/2x3systems/gopattern/gopattern"
	"github.com/pkg/errors"
)

const (
	// ByteUnitBits is the storage unit width of raw byte codes.
	ByteUnitBits = 8

	// ASCIIUnitBits is the storage unit width of printable (7-bit) codes.
	ASCIIUnitBits = 7
)

// BitWriter accumulates fixed-width fields into one flat bit string.
//
// The first field appended occupies the least significant bits.
type BitWriter struct {
	words []uint64
	nbits int
}

// BitLen returns the number of bits appended so far.
func (w *BitWriter) BitLen() int {
	return w.nbits
}

// AppendField appends value as a field of the given width and returns the field's absolute head and tail bit positions.
//
// A value that does not fit within width bits is a fatal encoder sizing error.
func (w *BitWriter) AppendField(value int, width int) (head, tail int) {
	if width <= 0 || width > gopattern.MaxFieldBits {
		panic(errors.Wrapf(gopattern.ErrBadEncoding, "field width %d out of range", width))
	}
	if value < 0 || value >= 1<<width {
		panic(errors.Wrapf(gopattern.ErrBadEncoding, "value %d does not fit in %d bits", value, width))
	}

	tail = w.nbits
	head = tail + width - 1
	for len(w.words)*64 <= head {
		w.words = append(w.words, 0)
	}

	idx, off := tail/64, uint(tail%64)
	w.words[idx] |= uint64(value) << off
	if spill := int(off) + width - 64; spill > 0 {
		w.words[idx+1] |= uint64(value) >> (uint(width) - uint(spill))
	}
	w.nbits += width
	return
}

func (w *BitWriter) bit(pos int) uint64 {
	switch {
	case pos < w.nbits:
		return (w.words[pos/64] >> uint(pos%64)) & 1
	case pos == w.nbits:
		return 1 // end of content marker
	}
	return 0
}

// Finalize packs the bit string into storage units of unitBits each, most significant unit first.
//
// One marker bit is set just past the last content bit so the content length survives any leading zero units.
func (w *BitWriter) Finalize(unitBits int) []byte {
	if unitBits <= 0 || unitBits > 8 {
		panic(errors.Wrapf(gopattern.ErrBadEncoding, "storage unit width %d out of range", unitBits))
	}
	units := w.nbits/unitBits + 1
	out := make([]byte, units)
	for u := 0; u < units; u++ {
		var val uint64
		for b := unitBits - 1; b >= 0; b-- {
			val = val<<1 | w.bit(u*unitBits+b)
		}
		out[units-1-u] = byte(val)
	}
	return out
}

// DecodeField returns the value held in bits [tail, head] of src, where src is a sequence of
// unitBits-wide storage units, most significant unit first.
func DecodeField(src []byte, head, tail, unitBits int) int {
	if head < tail || tail < 0 {
		panic(errors.Wrapf(gopattern.ErrBadEncoding, "bad field range [%d, %d]", head, tail))
	}
	if head-tail+1 > 63 {
		panic(errors.Wrapf(gopattern.ErrBadEncoding, "field range [%d, %d] too wide", head, tail))
	}
	if head >= len(src)*unitBits {
		panic(errors.Wrapf(gopattern.ErrBadEncoding, "field head %d beyond %d-bit code", head, len(src)*unitBits))
	}

	var value uint64
	for pos := head; pos >= tail; {
		unit := pos / unitBits
		lo := unit * unitBits
		if lo < tail {
			lo = tail
		}
		n := pos - lo + 1
		bits := (uint64(src[len(src)-1-unit]) >> uint(lo-unit*unitBits)) & (1<<uint(n) - 1)
		value = value<<uint(n) | bits
		pos = lo - 1
	}
	return int(value)
}

// EffectiveBits returns one plus the position of the highest set bit in src (0 if no bit is set).
func EffectiveBits(src []byte, unitBits int) int {
	mask := byte(int(1)<<uint(unitBits) - 1)
	for i, unit := range src {
		unit &= mask
		if unit == 0 {
			continue
		}
		top := 0
		for b := unitBits - 1; b >= 0; b-- {
			if unit&(1<<uint(b)) != 0 {
				top = b
				break
			}
		}
		return (len(src)-1-i)*unitBits + top + 1
	}
	return 0
}

// BitReader reads fields back out of a code produced by a BitWriter, least significant field first.
type BitReader struct {
	src      []byte
	unitBits int
	pos      int
	limit    int
}

// NewBitReader locates the end of content marker of src.  A code lacking one is a fatal decoding error.
func NewBitReader(src []byte, unitBits int) *BitReader {
	limit := EffectiveBits(src, unitBits) - 1
	if limit < 0 {
		panic(errors.Wrap(gopattern.ErrBadEncoding, "code has no end of content marker"))
	}
	return &BitReader{
		src:      src,
		unitBits: unitBits,
		limit:    limit,
	}
}

// Remaining returns the number of content bits not yet read.
func (r *BitReader) Remaining() int {
	return r.limit - r.pos
}

// ReadField reads the next field of the given width.
func (r *BitReader) ReadField(width int) int {
	if width <= 0 || r.pos+width > r.limit {
		panic(errors.Wrapf(gopattern.ErrBadEncoding, "%d-bit field overruns code content", width))
	}
	val := DecodeField(r.src, r.pos+width-1, r.pos, r.unitBits)
	r.pos += width
	return val
}

// RepackCode rewrites a code stored in fromUnitBits-wide units into toUnitBits-wide units.
//
// The content bits are unchanged, so e.g. a catalog's byte codes can be printed as 7-bit codes.
func RepackCode(code []byte, fromUnitBits, toUnitBits int) []byte {
	r := NewBitReader(code, fromUnitBits)
	w := BitWriter{}
	for r.Remaining() > 0 {
		n := r.Remaining()
		if n > 16 {
			n = 16
		}
		w.AppendField(r.ReadField(n), n)
	}
	return w.Finalize(toUnitBits)
}
