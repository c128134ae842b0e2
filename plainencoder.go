package parquet

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// plainEncoder serializes values with the fixed PLAIN layouts:
// little-endian fixed width for numerics, bit-packed booleans, 4-byte
// length prefixed byte arrays and raw fixed-length byte arrays.
type plainEncoder[T Value] struct {
	descr *ColumnDescriptor
	buf   []byte

	boolByte byte
	boolBits uint
}

func newPlainEncoder[T Value](descr *ColumnDescriptor) *plainEncoder[T] {
	return &plainEncoder[T]{descr: descr}
}

func (e *plainEncoder[T]) Put(values []T) error {
	switch vs := any(values).(type) {
	case []bool:
		for _, v := range vs {
			if v {
				e.boolByte |= 1 << e.boolBits
			}
			e.boolBits++
			if e.boolBits == 8 {
				e.buf = append(e.buf, e.boolByte)
				e.boolByte, e.boolBits = 0, 0
			}
		}
	case []int32:
		for _, v := range vs {
			e.buf = binary.LittleEndian.AppendUint32(e.buf, uint32(v))
		}
	case []int64:
		for _, v := range vs {
			e.buf = binary.LittleEndian.AppendUint64(e.buf, uint64(v))
		}
	case []Int96:
		for _, v := range vs {
			e.buf = append(e.buf, v[:]...)
		}
	case []float32:
		for _, v := range vs {
			e.buf = binary.LittleEndian.AppendUint32(e.buf, math.Float32bits(v))
		}
	case []float64:
		for _, v := range vs {
			e.buf = binary.LittleEndian.AppendUint64(e.buf, math.Float64bits(v))
		}
	case []string:
		if e.descr.PhysicalType == FixedLenByteArray {
			for _, v := range vs {
				if len(v) != e.descr.TypeLength {
					return errors.Errorf("parquet: fixed length value of %d bytes in column of length %d", len(v), e.descr.TypeLength)
				}
				e.buf = append(e.buf, v...)
			}
		} else {
			for _, v := range vs {
				e.buf = binary.LittleEndian.AppendUint32(e.buf, uint32(len(v)))
				e.buf = append(e.buf, v...)
			}
		}
	default:
		return errors.Errorf("parquet: unsupported value type %T", values)
	}
	return nil
}

func (e *plainEncoder[T]) EstimatedSize() int {
	n := len(e.buf)
	if e.boolBits > 0 {
		n++
	}
	return n
}

func (e *plainEncoder[T]) FlushValues() ([]byte, error) {
	// A partial boolean byte is padded out; pages are self contained.
	if e.boolBits > 0 {
		e.buf = append(e.buf, e.boolByte)
		e.boolByte, e.boolBits = 0, 0
	}
	out := e.buf
	e.buf = nil
	return out, nil
}

func (e *plainEncoder[T]) Encoding() Encoding {
	return EncodingPlain
}
