package parquet

import (
	"math/bits"

	"github.com/pkg/errors"
)

// dictEncoder maps distinct values to small integer codes in first
// occurrence order and buffers one code per value written. Data pages
// carry the codes as a one-byte bit width followed by the hybrid
// RLE/bit-packed code sequence; the distinct values themselves go to a
// separate dictionary page ahead of all data pages.
type dictEncoder[T Value] struct {
	descr    *ColumnDescriptor
	encoding Encoding

	codes   map[T]int32
	ordered []T
	indices []int32
}

func newDictEncoder[T Value](descr *ColumnDescriptor, encoding Encoding) *dictEncoder[T] {
	return &dictEncoder[T]{
		descr:    descr,
		encoding: encoding,
		codes:    make(map[T]int32),
	}
}

func (e *dictEncoder[T]) Put(values []T) error {
	for _, v := range values {
		code, ok := e.codes[v]
		if !ok {
			code = int32(len(e.ordered))
			e.codes[v] = code
			e.ordered = append(e.ordered, v)
		}
		e.indices = append(e.indices, code)
	}
	return nil
}

// bitWidth is derived from the dictionary cardinality at the moment of
// the call. Earlier pages of the same column may legitimately use a
// narrower width than later ones. A single-entry dictionary still takes
// one bit per index; only an empty dictionary encodes at width zero.
func (e *dictEncoder[T]) bitWidth() int {
	switch {
	case len(e.ordered) == 0:
		return 0
	case len(e.ordered) == 1:
		return 1
	default:
		return bits.Len(uint(len(e.ordered) - 1))
	}
}

func (e *dictEncoder[T]) EstimatedSize() int {
	return 1 + (len(e.indices)*e.bitWidth()+7)/8
}

func (e *dictEncoder[T]) FlushValues() ([]byte, error) {
	width := e.bitWidth()
	buf := make([]byte, 1+maxHybridSize(width, len(e.indices)))
	buf[0] = byte(width)
	enc := newHybridEncoder(buf[1:], width)
	for _, code := range e.indices {
		if err := enc.Put(uint64(code)); err != nil {
			return nil, err
		}
	}
	n, err := enc.Flush()
	if err != nil {
		return nil, err
	}
	e.indices = e.indices[:0]
	return buf[:1+n], nil
}

func (e *dictEncoder[T]) Encoding() Encoding {
	return e.encoding
}

func (e *dictEncoder[T]) NumEntries() int {
	return len(e.ordered)
}

func (e *dictEncoder[T]) DictByteSize() int {
	switch e.descr.PhysicalType {
	case Int32, Float:
		return 4 * len(e.ordered)
	case Int64, Double:
		return 8 * len(e.ordered)
	case Int96Type:
		return 12 * len(e.ordered)
	case FixedLenByteArray:
		return e.descr.TypeLength * len(e.ordered)
	default:
		n := 0
		for _, v := range e.ordered {
			n += 4 + len(any(v).(string))
		}
		return n
	}
}

func (e *dictEncoder[T]) WriteDict(buf []byte) error {
	pe := newPlainEncoder[T](e.descr)
	if err := pe.Put(e.ordered); err != nil {
		return err
	}
	b, err := pe.FlushValues()
	if err != nil {
		return err
	}
	if len(b) > len(buf) {
		return errors.Errorf("parquet: dictionary buffer of %d bytes needs %d", len(buf), len(b))
	}
	copy(buf, b)
	return nil
}
