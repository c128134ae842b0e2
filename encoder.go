package parquet

import "github.com/pkg/errors"

// encoderBase is the untyped surface of a value encoder, used by the
// column writer core for page-cut decisions and flushing.
type encoderBase interface {
	// EstimatedSize returns the encoded size of the values buffered
	// since the last flush.
	EstimatedSize() int
	// FlushValues returns the encoded buffered values and resets the
	// accumulation buffer.
	FlushValues() ([]byte, error)
	// Encoding returns the tag describing the data page value bytes.
	Encoding() Encoding
}

// dictionaryEncoder is implemented by encoders that build a dictionary
// page in addition to index-coded data pages.
type dictionaryEncoder interface {
	encoderBase
	NumEntries() int
	DictByteSize() int
	// WriteDict serializes the distinct values in code order into buf,
	// which must hold at least DictByteSize bytes.
	WriteDict(buf []byte) error
}

// valueEncoder converts typed values into encoded page bytes.
type valueEncoder[T Value] interface {
	encoderBase
	Put(values []T) error
}

// newValueEncoder dispatches once, at column writer construction, on
// the encoding choice. The choice never changes mid-column.
func newValueEncoder[T Value](descr *ColumnDescriptor, encoding Encoding) (valueEncoder[T], error) {
	switch encoding {
	case EncodingPlain:
		return newPlainEncoder[T](descr), nil
	case EncodingPlainDictionary, EncodingRLEDictionary:
		if descr.PhysicalType == Boolean {
			return nil, errors.Wrap(ErrUnsupportedEncoding, "dictionary of BOOLEAN")
		}
		return newDictEncoder[T](descr, encoding), nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedEncoding, "%s", encoding)
	}
}
