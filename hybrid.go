package parquet

import (
	"github.com/pkg/errors"
)

const (
	// A literal run is announced by a single indicator byte holding
	// (numGroups<<1)|1, so it can cover at most 63 groups of 8 values.
	maxLiteralGroups = 63
	// Runs shorter than one full group are cheaper bit-packed.
	minRepeatRun = 8
)

// maxHybridSize returns an upper bound on the encoded size of numValues
// values of the given bit width in the hybrid RLE/bit-packed form.
// Encoders write into fixed buffers and rely on this bound instead of
// growing dynamically.
func maxHybridSize(bitWidth, numValues int) int {
	if bitWidth == 0 {
		return 0
	}
	groups := (numValues + 7) / 8
	// All-literal worst case: bitWidth payload bytes per group and, for
	// literal runs interrupted after a single group, one indicator byte
	// each.
	literal := groups * (1 + bitWidth)
	// All-repeated worst case: a separate run per 8 equal values, each
	// a one-byte varint header plus the aligned value.
	repeated := groups * (1 + (bitWidth+7)/8)
	if repeated > literal {
		return repeated
	}
	return literal
}

// hybridEncoder writes the parquet hybrid RLE/bit-packed encoding:
// repeated runs of at least 8 equal values become (count<<1, value)
// pairs, everything else is buffered into groups of 8 values and
// bit-packed under a shared literal-run indicator byte.
type hybridEncoder struct {
	bw       *bitWriter
	bitWidth uint

	buffered    [8]uint64
	numBuffered int

	current     uint64
	repeatCount int

	literalCount     int
	literalIndicator int
}

func newHybridEncoder(buf []byte, bitWidth int) *hybridEncoder {
	return &hybridEncoder{
		bw:               newBitWriter(buf),
		bitWidth:         uint(bitWidth),
		literalIndicator: -1,
	}
}

// Put appends one value. Values must fit in the encoder's bit width.
func (e *hybridEncoder) Put(v uint64) error {
	if e.bitWidth == 0 {
		// Width zero means every value is zero and the body is empty.
		return nil
	}
	if v == e.current {
		e.repeatCount++
		if e.repeatCount > minRepeatRun {
			// Continuation of an existing repeated run, the value
			// is already accounted for.
			return nil
		}
	} else {
		if e.repeatCount >= minRepeatRun {
			if err := e.flushRepeatedRun(); err != nil {
				return err
			}
		}
		e.repeatCount = 1
		e.current = v
	}
	e.buffered[e.numBuffered] = v
	e.numBuffered++
	if e.numBuffered == 8 {
		return e.flushBufferedValues(false)
	}
	return nil
}

// Flush terminates any open run and returns the number of bytes
// written. The encoder must not be reused afterwards.
func (e *hybridEncoder) Flush() (int, error) {
	if e.bitWidth == 0 {
		return 0, nil
	}
	if e.literalCount > 0 || e.repeatCount > 0 || e.numBuffered > 0 {
		allRepeat := e.literalCount == 0 &&
			(e.repeatCount == e.numBuffered || e.numBuffered == 0)
		if e.repeatCount > 0 && allRepeat {
			if err := e.flushRepeatedRun(); err != nil {
				return 0, err
			}
		} else {
			// Pad the final group with zeros; the decoder discards
			// them by value count.
			for e.numBuffered > 0 && e.numBuffered < 8 {
				e.buffered[e.numBuffered] = 0
				e.numBuffered++
			}
			e.literalCount += e.numBuffered
			if err := e.flushLiteralRun(true); err != nil {
				return 0, err
			}
			e.repeatCount = 0
		}
	}
	if err := e.bw.flush(); err != nil {
		return 0, err
	}
	return e.bw.len(), nil
}

func (e *hybridEncoder) flushBufferedValues(done bool) error {
	if e.repeatCount >= minRepeatRun {
		// The buffered values belong to the repeated run; drop them
		// and close out a preceding literal run if one is open.
		e.numBuffered = 0
		if e.literalCount != 0 {
			return e.flushLiteralRun(true)
		}
		return nil
	}
	e.literalCount += e.numBuffered
	numGroups := e.literalCount / 8
	if numGroups >= maxLiteralGroups {
		// The single reserved indicator byte is about to overflow.
		if err := e.flushLiteralRun(true); err != nil {
			return err
		}
	} else {
		if err := e.flushLiteralRun(done); err != nil {
			return err
		}
	}
	e.repeatCount = 0
	return nil
}

func (e *hybridEncoder) flushLiteralRun(updateIndicator bool) error {
	if e.literalIndicator < 0 {
		i, err := e.bw.reserveByte()
		if err != nil {
			return err
		}
		e.literalIndicator = i
	}
	for i := 0; i < e.numBuffered; i++ {
		if err := e.bw.putValue(e.buffered[i], e.bitWidth); err != nil {
			return err
		}
	}
	e.numBuffered = 0
	if updateIndicator {
		numGroups := e.literalCount / 8
		e.bw.buf[e.literalIndicator] = byte(numGroups<<1 | 1)
		e.literalIndicator = -1
		e.literalCount = 0
	}
	return nil
}

func (e *hybridEncoder) flushRepeatedRun() error {
	if err := e.bw.putVlqInt(uint64(e.repeatCount) << 1); err != nil {
		return err
	}
	if err := e.bw.putAligned(e.current, int(e.bitWidth+7)/8); err != nil {
		return err
	}
	e.numBuffered = 0
	e.repeatCount = 0
	return nil
}

// hybridDecoder reads sequences produced by hybridEncoder.
type hybridDecoder struct {
	br       *bitReader
	bitWidth uint

	// Remaining values in the current run.
	runValue    uint64
	runRemain   int
	packedCount int
}

func newHybridDecoder(buf []byte, bitWidth int) *hybridDecoder {
	return &hybridDecoder{
		br:       newBitReader(buf),
		bitWidth: uint(bitWidth),
	}
}

// Get returns the next decoded value.
func (d *hybridDecoder) Get() (uint64, error) {
	if d.bitWidth == 0 {
		return 0, nil
	}
	for d.runRemain == 0 && d.packedCount == 0 {
		if err := d.nextRun(); err != nil {
			return 0, err
		}
	}
	if d.runRemain > 0 {
		d.runRemain--
		return d.runValue, nil
	}
	d.packedCount--
	return d.br.getValue(d.bitWidth)
}

// GetBatch decodes len(out) values into out.
func (d *hybridDecoder) GetBatch(out []uint64) error {
	for i := range out {
		v, err := d.Get()
		if err != nil {
			return err
		}
		out[i] = v
	}
	return nil
}

func (d *hybridDecoder) nextRun() error {
	header, err := d.br.getVlqInt()
	if err != nil {
		return errors.Wrap(err, "reading hybrid run header")
	}
	if header&1 == 1 {
		d.packedCount = int(header>>1) * 8
		if d.packedCount == 0 {
			return errors.New("parquet: empty bit-packed run")
		}
		return nil
	}
	d.runRemain = int(header >> 1)
	if d.runRemain == 0 {
		return errors.New("parquet: empty repeated run")
	}
	d.runValue, err = d.br.getAligned(int(d.bitWidth+7) / 8)
	return err
}
