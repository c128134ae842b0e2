package parquet

import (
	"encoding/binary"
	"math/bits"

	"github.com/pkg/errors"
)

// levelBitWidth returns the number of bits needed to store levels in
// [0, maxLevel].
func levelBitWidth(maxLevel int16) int {
	return bits.Len(uint(maxLevel))
}

// maxLevelEncodedSize returns the buffer size callers must provide to
// encode numValues levels bounded by maxLevel. The level encoder does
// not grow its buffer.
func maxLevelEncodedSize(maxLevel int16, numValues int) int {
	return maxHybridSize(levelBitWidth(maxLevel), numValues)
}

// levelEncoder encodes definition or repetition levels with the hybrid
// RLE/bit-packed scheme at the width implied by maxLevel.
type levelEncoder struct {
	maxLevel int16
	enc      *hybridEncoder
}

func newLevelEncoder(maxLevel int16, buf []byte) *levelEncoder {
	return &levelEncoder{
		maxLevel: maxLevel,
		enc:      newHybridEncoder(buf, levelBitWidth(maxLevel)),
	}
}

// Encode writes all levels and returns the number of encoded payload
// bytes. A level above maxLevel is a defect in the caller's batching
// logic and fails with ErrLevelOverflow.
func (e *levelEncoder) Encode(levels []int16) (int, error) {
	for _, l := range levels {
		if l < 0 || l > e.maxLevel {
			return 0, errors.Wrapf(ErrLevelOverflow, "level %d with max %d", l, e.maxLevel)
		}
		if err := e.enc.Put(uint64(l)); err != nil {
			return 0, err
		}
	}
	return e.enc.Flush()
}

// encodeLevelsFramed encodes levels and prepends the 4-byte little
// endian length that frames every level buffer inside a data page.
func encodeLevelsFramed(maxLevel int16, levels []int16) ([]byte, error) {
	buf := make([]byte, 4+maxLevelEncodedSize(maxLevel, len(levels)))
	n, err := newLevelEncoder(maxLevel, buf[4:]).Encode(levels)
	if err != nil {
		return nil, err
	}
	binary.LittleEndian.PutUint32(buf[:4], uint32(n))
	return buf[:4+n], nil
}

// levelDecoder reads a framed level buffer back into int16 levels.
type levelDecoder struct {
	dec *hybridDecoder
}

func newLevelDecoder(maxLevel int16, framed []byte) (*levelDecoder, error) {
	if len(framed) < 4 {
		return nil, errors.New("parquet: level buffer shorter than its length prefix")
	}
	n := int(binary.LittleEndian.Uint32(framed[:4]))
	if 4+n > len(framed) {
		return nil, errors.Errorf("parquet: level buffer length %d exceeds input", n)
	}
	return &levelDecoder{
		dec: newHybridDecoder(framed[4:4+n], levelBitWidth(maxLevel)),
	}, nil
}

// Decode fills out with the next len(out) levels.
func (d *levelDecoder) Decode(out []int16) error {
	for i := range out {
		v, err := d.dec.Get()
		if err != nil {
			return err
		}
		out[i] = int16(v)
	}
	return nil
}
