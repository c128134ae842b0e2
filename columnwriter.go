package parquet

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ColumnChunkWriter is the untyped surface of a column writer, as
// returned by the NewColumnWriter factory.
type ColumnChunkWriter interface {
	Descriptor() *ColumnDescriptor
	// RowsWritten returns the number of top-level rows recorded so far.
	RowsWritten() int64
	// Close stages any remaining buffered values as a final page,
	// emits the dictionary page (if any) followed by every staged data
	// page in order, validates the row count and finalizes the page
	// sink. It returns the total bytes the sink reported written.
	Close() (int64, error)
}

// columnWriter holds the orchestration state shared by all typed
// writers: the live level sinks, the buffered counters and the staged
// page sequence. It is mutated only by recordBatch and cutPage so the
// row-accounting invariants stay checkable in one place.
type columnWriter struct {
	descr        *ColumnDescriptor
	pager        PageWriter
	props        *WriterProperties
	expectedRows int64
	enc          encoderBase
	logger       *zap.Logger

	defLevels []int16
	repLevels []int16

	numBufferedValues        int64
	numBufferedEncodedValues int64
	numRows                  int64
	totalBytesWritten        int64

	pages  []DataPage
	closed bool
}

// recordBatch appends raw levels to the live sinks and advances the
// buffered and row counters for one WriteBatch call.
func (w *columnWriter) recordBatch(numValues int, defLevels, repLevels []int16, numEncoded int) {
	if w.descr.MaxDefinitionLevel > 0 {
		if defLevels != nil {
			w.defLevels = append(w.defLevels, defLevels...)
		} else {
			for i := 0; i < numValues; i++ {
				w.defLevels = append(w.defLevels, w.descr.MaxDefinitionLevel)
			}
		}
	}
	if repLevels != nil {
		w.repLevels = append(w.repLevels, repLevels...)
		for _, r := range repLevels {
			if r == 0 {
				w.numRows++
			}
		}
	} else {
		w.numRows += int64(numValues)
	}
	w.numBufferedValues += int64(numValues)
	w.numBufferedEncodedValues += int64(numEncoded)
}

// cutPage snapshots the buffered state into an immutable staged page
// and resets the live sinks. Pages are only handed to the sink at
// Close, after the dictionary page ordering is settled.
func (w *columnWriter) cutPage() error {
	values, err := w.enc.FlushValues()
	if err != nil {
		return err
	}
	page := DataPage{
		NumValues:        w.numBufferedValues,
		NumEncodedValues: w.numBufferedEncodedValues,
		Values:           values,
		ValueEncoding:    w.enc.Encoding(),
	}
	if w.descr.MaxDefinitionLevel > 0 {
		page.DefinitionLevels, err = encodeLevelsFramed(w.descr.MaxDefinitionLevel, w.defLevels)
		if err != nil {
			return err
		}
	}
	if w.descr.MaxRepetitionLevel > 0 {
		page.RepetitionLevels, err = encodeLevelsFramed(w.descr.MaxRepetitionLevel, w.repLevels)
		if err != nil {
			return err
		}
	}
	w.pages = append(w.pages, page)
	w.logger.Debug("staged data page",
		zap.String("column", w.descr.Path),
		zap.Int64("num_values", page.NumValues),
		zap.Int("value_bytes", len(page.Values)))

	w.defLevels = w.defLevels[:0]
	w.repLevels = w.repLevels[:0]
	w.numBufferedValues = 0
	w.numBufferedEncodedValues = 0
	return nil
}

func (w *columnWriter) Descriptor() *ColumnDescriptor {
	return w.descr
}

func (w *columnWriter) RowsWritten() int64 {
	return w.numRows
}

func (w *columnWriter) Close() (int64, error) {
	if w.closed {
		return 0, ErrWriterClosed
	}
	w.closed = true

	if de, ok := w.enc.(dictionaryEncoder); ok {
		buf := make([]byte, de.DictByteSize())
		if err := de.WriteDict(buf); err != nil {
			return 0, err
		}
		n, err := w.pager.WriteDictionaryPage(DictionaryPage{
			NumEntries: de.NumEntries(),
			Values:     buf,
			Encoding:   EncodingPlainDictionary,
		})
		if err != nil {
			return 0, err
		}
		w.totalBytesWritten += n
	}

	if w.numBufferedValues > 0 {
		if err := w.cutPage(); err != nil {
			return 0, err
		}
	}

	for _, page := range w.pages {
		n, err := w.pager.WriteDataPage(page)
		if err != nil {
			return 0, err
		}
		w.totalBytesWritten += n
	}

	if w.numRows != w.expectedRows {
		return 0, errors.Wrapf(ErrRowCountMismatch, "wrote %d rows, expected %d", w.numRows, w.expectedRows)
	}

	if err := w.pager.Close(); err != nil {
		return 0, err
	}
	w.logger.Debug("closed column chunk",
		zap.String("column", w.descr.Path),
		zap.Int64("rows", w.numRows),
		zap.Int64("bytes", w.totalBytesWritten))
	return w.totalBytesWritten, nil
}

// TypedColumnWriter writes batches of values of the column's physical
// Go type.
type TypedColumnWriter[T Value] struct {
	columnWriter
	valueEnc valueEncoder[T]
}

// NewTypedColumnWriter returns a writer for one column chunk. The
// descriptor, page sink, expected row count and properties are fixed
// for the writer's lifetime. A nil props selects the defaults.
func NewTypedColumnWriter[T Value](descr *ColumnDescriptor, pager PageWriter, expectedRows int64, props *WriterProperties) (*TypedColumnWriter[T], error) {
	if props == nil {
		var err error
		props, err = NewWriterProperties()
		if err != nil {
			return nil, err
		}
	}
	if !matchesPhysicalType[T](descr.PhysicalType) {
		return nil, errors.Errorf("parquet: writer value type does not match column type %s", descr.PhysicalType)
	}
	enc, err := newValueEncoder[T](descr, props.Encoding)
	if err != nil {
		return nil, err
	}
	w := &TypedColumnWriter[T]{
		columnWriter: columnWriter{
			descr:        descr,
			pager:        pager,
			props:        props,
			expectedRows: expectedRows,
			enc:          enc,
			logger:       props.Logger,
		},
		valueEnc: enc,
	}
	return w, nil
}

// WriteBatch appends one batch. A nil defLevels means every entry is
// defined at the column's max definition level; a nil repLevels means
// the column is not repeated and every entry starts a row. values must
// hold exactly one entry per defined position.
func (w *TypedColumnWriter[T]) WriteBatch(defLevels, repLevels []int16, values []T) error {
	if w.closed {
		return ErrWriterClosed
	}
	numValues := len(values)
	if defLevels != nil {
		numValues = len(defLevels)
	}

	numDefined := numValues
	if defLevels != nil {
		if w.descr.MaxDefinitionLevel == 0 {
			return errors.New("parquet: definition levels on a column with max definition level 0")
		}
		numDefined = 0
		for _, d := range defLevels {
			if d < 0 || d > w.descr.MaxDefinitionLevel {
				return errors.Wrapf(ErrLevelOverflow, "definition level %d with max %d", d, w.descr.MaxDefinitionLevel)
			}
			if d == w.descr.MaxDefinitionLevel {
				numDefined++
			}
		}
	}
	if len(values) != numDefined {
		return errors.Errorf("parquet: %d values for %d defined entries", len(values), numDefined)
	}
	if repLevels != nil {
		if w.descr.MaxRepetitionLevel == 0 {
			return errors.New("parquet: repetition levels on a non-repeated column")
		}
		if len(repLevels) != numValues {
			return errors.Errorf("parquet: %d repetition levels for %d entries", len(repLevels), numValues)
		}
		for _, r := range repLevels {
			if r < 0 || r > w.descr.MaxRepetitionLevel {
				return errors.Wrapf(ErrLevelOverflow, "repetition level %d with max %d", r, w.descr.MaxRepetitionLevel)
			}
		}
	}

	if err := w.valueEnc.Put(values); err != nil {
		return err
	}
	w.recordBatch(numValues, defLevels, repLevels, len(values))

	if w.enc.EstimatedSize() >= w.props.DataPageSize {
		return w.cutPage()
	}
	return nil
}

func matchesPhysicalType[T Value](t PhysicalType) bool {
	var zero T
	switch any(zero).(type) {
	case bool:
		return t == Boolean
	case int32:
		return t == Int32
	case int64:
		return t == Int64
	case Int96:
		return t == Int96Type
	case float32:
		return t == Float
	case float64:
		return t == Double
	case string:
		return t == ByteArray || t == FixedLenByteArray
	default:
		return false
	}
}

// Typed aliases mirroring the physical types.
type (
	BoolColumnWriter      = TypedColumnWriter[bool]
	Int32ColumnWriter     = TypedColumnWriter[int32]
	Int64ColumnWriter     = TypedColumnWriter[int64]
	Int96ColumnWriter     = TypedColumnWriter[Int96]
	FloatColumnWriter     = TypedColumnWriter[float32]
	DoubleColumnWriter    = TypedColumnWriter[float64]
	ByteArrayColumnWriter = TypedColumnWriter[string]
)

// NewColumnWriter constructs the writer matching the descriptor's
// physical type.
func NewColumnWriter(descr *ColumnDescriptor, pager PageWriter, expectedRows int64, props *WriterProperties) (ColumnChunkWriter, error) {
	switch descr.PhysicalType {
	case Boolean:
		return NewTypedColumnWriter[bool](descr, pager, expectedRows, props)
	case Int32:
		return NewTypedColumnWriter[int32](descr, pager, expectedRows, props)
	case Int64:
		return NewTypedColumnWriter[int64](descr, pager, expectedRows, props)
	case Int96Type:
		return NewTypedColumnWriter[Int96](descr, pager, expectedRows, props)
	case Float:
		return NewTypedColumnWriter[float32](descr, pager, expectedRows, props)
	case Double:
		return NewTypedColumnWriter[float64](descr, pager, expectedRows, props)
	case ByteArray, FixedLenByteArray:
		return NewTypedColumnWriter[string](descr, pager, expectedRows, props)
	default:
		return nil, errors.Errorf("parquet: no writer for physical type %s", descr.PhysicalType)
	}
}
