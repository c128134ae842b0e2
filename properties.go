package parquet

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultDataPageSize is the encoded-value byte threshold that triggers
// an automatic page cut mid stream.
const DefaultDataPageSize = 1024 * 1024

// WriterProperties carries the per-column-chunk configuration fixed at
// writer construction: value encoding, page compression, the page-size
// policy and an optional logger.
type WriterProperties struct {
	Encoding     Encoding
	Compression  CompressionKind
	DataPageSize int
	Logger       *zap.Logger
}

// WriterOption configures WriterProperties.
type WriterOption func(*WriterProperties) error

// NewWriterProperties returns properties with plain encoding, no
// compression, the default page size and a nop logger, then applies the
// provided options.
func NewWriterProperties(opts ...WriterOption) (*WriterProperties, error) {
	p := &WriterProperties{
		Encoding:     EncodingPlain,
		Compression:  CompressionKindNone,
		DataPageSize: DefaultDataPageSize,
		Logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// WithEncoding selects the data page value encoding.
func WithEncoding(e Encoding) WriterOption {
	return func(p *WriterProperties) error {
		switch e {
		case EncodingPlain, EncodingPlainDictionary, EncodingRLEDictionary:
			p.Encoding = e
			return nil
		default:
			return errors.Wrapf(ErrUnsupportedEncoding, "%s", e)
		}
	}
}

// WithCompression selects the serialized page compression codec.
func WithCompression(kind CompressionKind) WriterOption {
	return func(p *WriterProperties) error {
		if _, err := codecFor(kind); err != nil {
			return err
		}
		p.Compression = kind
		return nil
	}
}

// WithDataPageSize sets the page-cut threshold in encoded value bytes.
func WithDataPageSize(n int) WriterOption {
	return func(p *WriterProperties) error {
		if n <= 0 {
			return errors.Errorf("parquet: data page size must be positive, got %d", n)
		}
		p.DataPageSize = n
		return nil
	}
}

// WithLogger attaches a logger for debug output on page cuts and close.
func WithLogger(l *zap.Logger) WriterOption {
	return func(p *WriterProperties) error {
		p.Logger = l
		return nil
	}
}
