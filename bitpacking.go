package parquet

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

var errBufferFull = errors.New("parquet: encode buffer full")

// bitWriter packs values into a fixed-size byte buffer little-endian,
// least significant bit first. The buffer never grows; callers size it
// up front with the relevant max-size bound.
type bitWriter struct {
	buf        []byte
	byteOffset int
	bitOffset  uint
	current    uint64
}

func newBitWriter(buf []byte) *bitWriter {
	return &bitWriter{buf: buf}
}

// putValue appends the low width bits of v.
func (w *bitWriter) putValue(v uint64, width uint) error {
	w.current |= v << w.bitOffset
	w.bitOffset += width
	for w.bitOffset >= 8 {
		if w.byteOffset >= len(w.buf) {
			return errBufferFull
		}
		w.buf[w.byteOffset] = byte(w.current)
		w.byteOffset++
		w.current >>= 8
		w.bitOffset -= 8
	}
	return nil
}

// putVlqInt appends v as an unsigned LEB128 varint. Must be called on a
// byte boundary.
func (w *bitWriter) putVlqInt(v uint64) error {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	if w.byteOffset+n > len(w.buf) {
		return errBufferFull
	}
	copy(w.buf[w.byteOffset:], tmp[:n])
	w.byteOffset += n
	return nil
}

// putAligned appends the low numBytes bytes of v little-endian. Must be
// called on a byte boundary.
func (w *bitWriter) putAligned(v uint64, numBytes int) error {
	if w.byteOffset+numBytes > len(w.buf) {
		return errBufferFull
	}
	for i := 0; i < numBytes; i++ {
		w.buf[w.byteOffset] = byte(v >> (8 * uint(i)))
		w.byteOffset++
	}
	return nil
}

// reserveByte skips one byte so its value can be patched in later. Must
// be called on a byte boundary; returns the reserved index.
func (w *bitWriter) reserveByte() (int, error) {
	if w.byteOffset >= len(w.buf) {
		return 0, errBufferFull
	}
	i := w.byteOffset
	w.buf[i] = 0
	w.byteOffset++
	return i, nil
}

// flush writes out any partially filled trailing byte.
func (w *bitWriter) flush() error {
	if w.bitOffset > 0 {
		if w.byteOffset >= len(w.buf) {
			return errBufferFull
		}
		w.buf[w.byteOffset] = byte(w.current)
		w.byteOffset++
		w.current = 0
		w.bitOffset = 0
	}
	return nil
}

func (w *bitWriter) len() int {
	return w.byteOffset
}

// bitReader is the inverse of bitWriter.
type bitReader struct {
	buf        []byte
	byteOffset int
	bitOffset  uint
}

func newBitReader(buf []byte) *bitReader {
	return &bitReader{buf: buf}
}

func (r *bitReader) getValue(width uint) (uint64, error) {
	var v uint64
	var filled uint
	// Consume the remainder of the current byte first, then whole
	// bytes until width bits have been read.
	for filled < width {
		if r.byteOffset >= len(r.buf) {
			return 0, errors.New("parquet: bit-packed input truncated")
		}
		b := uint64(r.buf[r.byteOffset]) >> r.bitOffset
		avail := 8 - r.bitOffset
		need := width - filled
		if need < avail {
			v |= (b & (uint64(1)<<need - 1)) << filled
			r.bitOffset += need
			return v, nil
		}
		v |= b << filled
		filled += avail
		r.bitOffset = 0
		r.byteOffset++
	}
	return v & (uint64(1)<<width - 1), nil
}

func (r *bitReader) getVlqInt() (uint64, error) {
	r.align()
	v, n := binary.Uvarint(r.buf[r.byteOffset:])
	if n <= 0 {
		return 0, errors.New("parquet: invalid varint")
	}
	r.byteOffset += n
	return v, nil
}

func (r *bitReader) getAligned(numBytes int) (uint64, error) {
	r.align()
	if r.byteOffset+numBytes > len(r.buf) {
		return 0, errors.New("parquet: aligned read past end of input")
	}
	var v uint64
	for i := 0; i < numBytes; i++ {
		v |= uint64(r.buf[r.byteOffset+i]) << (8 * uint(i))
	}
	r.byteOffset += numBytes
	return v, nil
}

func (r *bitReader) align() {
	if r.bitOffset > 0 {
		r.bitOffset = 0
		r.byteOffset++
	}
}
