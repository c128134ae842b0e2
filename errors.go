package parquet

import "github.com/pkg/errors"

var (
	// ErrUnsupportedEncoding is returned at construction when the
	// requested encoding is not implemented for the column's type.
	ErrUnsupportedEncoding = errors.New("parquet: unsupported encoding")
	// ErrRowCountMismatch is returned by Close when the number of rows
	// written differs from the expected row count supplied at
	// construction. The column chunk must be discarded.
	ErrRowCountMismatch = errors.New("parquet: row count mismatch")
	// ErrLevelOverflow is returned when a definition or repetition
	// level exceeds the descriptor's maximum. This indicates a defect
	// in the caller's batching logic.
	ErrLevelOverflow = errors.New("parquet: level exceeds maximum")
	// ErrWriterClosed is returned on any operation after Close.
	ErrWriterClosed = errors.New("parquet: writer is closed")
)
