package parquet

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

// TypedColumnReader decodes the pages of one column chunk back into
// levels and values. It exists to close the loop on the write pipeline;
// it reads page sequences as staged by a PageBuffer or parsed by a
// SerializedPageReader.
type TypedColumnReader[T Value] struct {
	descr *ColumnDescriptor
	dict  []T
	pages []DataPage

	pageIdx   int
	curDef    []int16
	curRep    []int16
	curValues []T
	// Position in the current page's level sequence and value buffer.
	levelPos int
	valuePos int
}

// NewTypedColumnReader returns a reader over the given pages. dict may
// be nil for plain-encoded columns and must otherwise have been emitted
// ahead of every data page that references it.
func NewTypedColumnReader[T Value](descr *ColumnDescriptor, dict *DictionaryPage, pages []DataPage) (*TypedColumnReader[T], error) {
	r := &TypedColumnReader[T]{descr: descr, pages: pages}
	if dict != nil {
		values, err := plainDecode[T](descr, dict.Values, dict.NumEntries)
		if err != nil {
			return nil, errors.Wrap(err, "decoding dictionary page")
		}
		r.dict = values
	}
	return r, nil
}

// ReadBatch fills up to batchSize logical entries. defLevels and
// repLevels receive one entry per logical position when the column has
// the corresponding levels; values receives only defined entries.
// Returns the number of levels and values read; io.EOF once exhausted.
func (r *TypedColumnReader[T]) ReadBatch(batchSize int, defLevels, repLevels []int16, values []T) (int, int, error) {
	levelsRead, valuesRead := 0, 0
	for levelsRead < batchSize {
		if r.levelPos >= len(r.curDef) && r.valuePos >= len(r.curValues) {
			if err := r.loadPage(); err != nil {
				if err == io.EOF && levelsRead > 0 {
					return levelsRead, valuesRead, nil
				}
				return levelsRead, valuesRead, err
			}
		}
		n := batchSize - levelsRead
		if r.curDef != nil {
			if rem := len(r.curDef) - r.levelPos; rem < n {
				n = rem
			}
			for i := 0; i < n; i++ {
				d := r.curDef[r.levelPos]
				if defLevels != nil {
					defLevels[levelsRead] = d
				}
				if r.curRep != nil && repLevels != nil {
					repLevels[levelsRead] = r.curRep[r.levelPos]
				}
				if d == r.descr.MaxDefinitionLevel {
					values[valuesRead] = r.curValues[r.valuePos]
					r.valuePos++
					valuesRead++
				}
				r.levelPos++
				levelsRead++
			}
		} else {
			// Required column: one value per logical entry.
			if rem := len(r.curValues) - r.valuePos; rem < n {
				n = rem
			}
			copy(values[valuesRead:], r.curValues[r.valuePos:r.valuePos+n])
			r.valuePos += n
			valuesRead += n
			levelsRead += n
		}
	}
	return levelsRead, valuesRead, nil
}

func (r *TypedColumnReader[T]) loadPage() error {
	if r.pageIdx >= len(r.pages) {
		return io.EOF
	}
	page := r.pages[r.pageIdx]
	r.pageIdx++
	r.levelPos = 0
	r.valuePos = 0

	r.curDef = nil
	r.curRep = nil
	if r.descr.MaxDefinitionLevel > 0 {
		dec, err := newLevelDecoder(r.descr.MaxDefinitionLevel, page.DefinitionLevels)
		if err != nil {
			return err
		}
		r.curDef = make([]int16, page.NumValues)
		if err := dec.Decode(r.curDef); err != nil {
			return err
		}
	}
	if r.descr.MaxRepetitionLevel > 0 {
		dec, err := newLevelDecoder(r.descr.MaxRepetitionLevel, page.RepetitionLevels)
		if err != nil {
			return err
		}
		r.curRep = make([]int16, page.NumValues)
		if err := dec.Decode(r.curRep); err != nil {
			return err
		}
	}

	numEncoded := int(page.NumEncodedValues)
	switch {
	case page.ValueEncoding == EncodingPlain:
		values, err := plainDecode[T](r.descr, page.Values, numEncoded)
		if err != nil {
			return err
		}
		r.curValues = values
	case page.ValueEncoding.isDictionary():
		if r.dict == nil {
			return errors.New("parquet: dictionary-encoded page without a preceding dictionary page")
		}
		if len(page.Values) < 1 {
			return errors.New("parquet: dictionary page body missing bit width")
		}
		width := int(page.Values[0])
		dec := newHybridDecoder(page.Values[1:], width)
		values := make([]T, numEncoded)
		for i := range values {
			code, err := dec.Get()
			if err != nil {
				return err
			}
			if code >= uint64(len(r.dict)) {
				return errors.Errorf("parquet: dictionary code %d out of range", code)
			}
			values[i] = r.dict[code]
		}
		r.curValues = values
	default:
		return errors.Wrapf(ErrUnsupportedEncoding, "%s", page.ValueEncoding)
	}
	return nil
}

// plainDecode is the inverse of plainEncoder for a known value count.
func plainDecode[T Value](descr *ColumnDescriptor, buf []byte, numValues int) ([]T, error) {
	out := make([]T, numValues)
	switch vs := any(out).(type) {
	case []bool:
		if len(buf) < (numValues+7)/8 {
			return nil, errors.New("parquet: boolean payload truncated")
		}
		for i := range vs {
			vs[i] = buf[i/8]>>(uint(i)%8)&1 == 1
		}
	case []int32:
		if len(buf) < 4*numValues {
			return nil, errors.New("parquet: INT32 payload truncated")
		}
		for i := range vs {
			vs[i] = int32(binary.LittleEndian.Uint32(buf[4*i:]))
		}
	case []int64:
		if len(buf) < 8*numValues {
			return nil, errors.New("parquet: INT64 payload truncated")
		}
		for i := range vs {
			vs[i] = int64(binary.LittleEndian.Uint64(buf[8*i:]))
		}
	case []Int96:
		if len(buf) < 12*numValues {
			return nil, errors.New("parquet: INT96 payload truncated")
		}
		for i := range vs {
			copy(vs[i][:], buf[12*i:12*i+12])
		}
	case []float32:
		if len(buf) < 4*numValues {
			return nil, errors.New("parquet: FLOAT payload truncated")
		}
		for i := range vs {
			vs[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
		}
	case []float64:
		if len(buf) < 8*numValues {
			return nil, errors.New("parquet: DOUBLE payload truncated")
		}
		for i := range vs {
			vs[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[8*i:]))
		}
	case []string:
		if descr.PhysicalType == FixedLenByteArray {
			n := descr.TypeLength
			if len(buf) < n*numValues {
				return nil, errors.New("parquet: FIXED_LEN_BYTE_ARRAY payload truncated")
			}
			for i := range vs {
				vs[i] = string(buf[n*i : n*(i+1)])
			}
		} else {
			off := 0
			for i := range vs {
				if off+4 > len(buf) {
					return nil, errors.New("parquet: BYTE_ARRAY payload truncated")
				}
				n := int(binary.LittleEndian.Uint32(buf[off:]))
				off += 4
				if off+n > len(buf) {
					return nil, errors.New("parquet: BYTE_ARRAY payload truncated")
				}
				vs[i] = string(buf[off : off+n])
				off += n
			}
		}
	default:
		return nil, errors.Errorf("parquet: unsupported value type %T", out)
	}
	return out, nil
}
