package parquet

import (
	"encoding/binary"
	"io"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DataPage is an immutable snapshot of one page cut: the buffered
// counts, the framed encoded level buffers and the encoded values.
// Level buffers are nil when the corresponding max level is zero and
// are always encoded with EncodingRLE otherwise.
type DataPage struct {
	// NumValues counts logical entries including nulls.
	NumValues int64
	// NumEncodedValues counts entries carried in Values.
	NumEncodedValues int64
	DefinitionLevels []byte
	RepetitionLevels []byte
	Values           []byte
	ValueEncoding    Encoding
}

// DictionaryPage carries the distinct-value table referenced by
// index-coded data pages of the same column chunk.
type DictionaryPage struct {
	NumEntries int
	Values     []byte
	Encoding   Encoding
}

// PageWriter receives finished pages from a column writer. A
// dictionary page, when present, always arrives before any data page.
// Implementations apply compression and framing; failures propagate to
// the column writer verbatim and abort the column chunk.
type PageWriter interface {
	WriteDataPage(page DataPage) (int64, error)
	WriteDictionaryPage(page DictionaryPage) (int64, error)
	Close() error
}

// PageBuffer is an in-memory PageWriter that retains pages in arrival
// order. It backs column readers and tests.
type PageBuffer struct {
	Dictionary *DictionaryPage
	Pages      []DataPage
	closed     bool
}

func NewPageBuffer() *PageBuffer {
	return &PageBuffer{}
}

func (b *PageBuffer) WriteDataPage(page DataPage) (int64, error) {
	if b.closed {
		return 0, errors.New("parquet: page buffer is closed")
	}
	b.Pages = append(b.Pages, page)
	return int64(len(page.DefinitionLevels) + len(page.RepetitionLevels) + len(page.Values)), nil
}

func (b *PageBuffer) WriteDictionaryPage(page DictionaryPage) (int64, error) {
	if b.closed {
		return 0, errors.New("parquet: page buffer is closed")
	}
	if len(b.Pages) > 0 {
		return 0, errors.New("parquet: dictionary page after data pages")
	}
	b.Dictionary = &page
	return int64(len(page.Values)), nil
}

func (b *PageBuffer) Close() error {
	b.closed = true
	return nil
}

// Serialized page layout, all integers little endian like the level
// framing:
//
//	byte    page type (0 data, 1 dictionary)
//	byte    value encoding
//	uint32  num values / num dictionary entries
//	uint32  num encoded values (data pages only)
//	uint32  uncompressed payload size
//	uint32  compressed payload size
//	bytes   payload
//
// The payload of a data page is definitionLevels || repetitionLevels ||
// values. Equal uncompressed and compressed sizes mean the payload is
// stored raw; the writer falls back to raw storage whenever the codec
// does not shrink the page.
const (
	pageTypeData       = 0
	pageTypeDictionary = 1
)

// compressBuffers holds scratch space for page compression. Columns
// written on separate goroutines share it safely; there is no
// cross-column bookkeeping.
var compressBuffers = sync.Pool{
	New: func() interface{} {
		b := make([]byte, 0, DefaultDataPageSize)
		return &b
	},
}

// SerializedPageWriter frames and compresses pages onto an io.Writer.
type SerializedPageWriter struct {
	w      io.Writer
	codec  CompressionCodec
	logger *zap.Logger
	closed bool
}

func NewSerializedPageWriter(w io.Writer, kind CompressionKind, logger *zap.Logger) (*SerializedPageWriter, error) {
	codec, err := codecFor(kind)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SerializedPageWriter{w: w, codec: codec, logger: logger}, nil
}

func (s *SerializedPageWriter) WriteDataPage(page DataPage) (int64, error) {
	if s.closed {
		return 0, errors.New("parquet: page writer is closed")
	}
	payload := make([]byte, 0, len(page.DefinitionLevels)+len(page.RepetitionLevels)+len(page.Values))
	payload = append(payload, page.DefinitionLevels...)
	payload = append(payload, page.RepetitionLevels...)
	payload = append(payload, page.Values...)

	header := make([]byte, 0, 18)
	header = append(header, pageTypeData, byte(page.ValueEncoding))
	header = binary.LittleEndian.AppendUint32(header, uint32(page.NumValues))
	header = binary.LittleEndian.AppendUint32(header, uint32(page.NumEncodedValues))
	n, err := s.writeFramed(header, payload)
	if err == nil {
		s.logger.Debug("wrote data page",
			zap.Int64("num_values", page.NumValues),
			zap.Int64("bytes", n))
	}
	return n, err
}

func (s *SerializedPageWriter) WriteDictionaryPage(page DictionaryPage) (int64, error) {
	if s.closed {
		return 0, errors.New("parquet: page writer is closed")
	}
	header := make([]byte, 0, 14)
	header = append(header, pageTypeDictionary, byte(page.Encoding))
	header = binary.LittleEndian.AppendUint32(header, uint32(page.NumEntries))
	n, err := s.writeFramed(header, page.Values)
	if err == nil {
		s.logger.Debug("wrote dictionary page",
			zap.Int("num_entries", page.NumEntries),
			zap.Int64("bytes", n))
	}
	return n, err
}

func (s *SerializedPageWriter) writeFramed(header, payload []byte) (int64, error) {
	scratch := compressBuffers.Get().(*[]byte)
	defer compressBuffers.Put(scratch)

	compressed, err := s.codec.Compress((*scratch)[:0], payload)
	if err != nil {
		return 0, err
	}
	// Hand any growth from the codec back to the pool.
	*scratch = compressed[:0]
	if len(compressed) >= len(payload) {
		compressed = payload
	}
	header = binary.LittleEndian.AppendUint32(header, uint32(len(payload)))
	header = binary.LittleEndian.AppendUint32(header, uint32(len(compressed)))
	if _, err := s.w.Write(header); err != nil {
		return 0, err
	}
	if _, err := s.w.Write(compressed); err != nil {
		return 0, err
	}
	return int64(len(header) + len(compressed)), nil
}

func (s *SerializedPageWriter) Close() error {
	s.closed = true
	return nil
}

// SerializedPageReader parses pages written by SerializedPageWriter.
// It needs the column descriptor to know which level buffers are
// present in data page payloads.
type SerializedPageReader struct {
	r     io.Reader
	descr *ColumnDescriptor
	codec CompressionCodec
}

func NewSerializedPageReader(r io.Reader, descr *ColumnDescriptor, kind CompressionKind) (*SerializedPageReader, error) {
	codec, err := codecFor(kind)
	if err != nil {
		return nil, err
	}
	return &SerializedPageReader{r: r, descr: descr, codec: codec}, nil
}

// Next returns the next page as either *DataPage or *DictionaryPage,
// or io.EOF when the input is exhausted.
func (s *SerializedPageReader) Next() (interface{}, error) {
	var kind [2]byte
	if _, err := io.ReadFull(s.r, kind[:]); err != nil {
		return nil, err
	}
	switch kind[0] {
	case pageTypeData:
		var fixed [16]byte
		if _, err := io.ReadFull(s.r, fixed[:]); err != nil {
			return nil, errors.Wrap(err, "reading data page header")
		}
		numValues := binary.LittleEndian.Uint32(fixed[0:4])
		numEncoded := binary.LittleEndian.Uint32(fixed[4:8])
		payload, err := s.readPayload(fixed[8:16])
		if err != nil {
			return nil, err
		}
		page := &DataPage{
			NumValues:        int64(numValues),
			NumEncodedValues: int64(numEncoded),
			ValueEncoding:    Encoding(kind[1]),
		}
		rest := payload
		if s.descr.MaxDefinitionLevel > 0 {
			n, err := framedLen(rest)
			if err != nil {
				return nil, err
			}
			page.DefinitionLevels, rest = rest[:n], rest[n:]
		}
		if s.descr.MaxRepetitionLevel > 0 {
			n, err := framedLen(rest)
			if err != nil {
				return nil, err
			}
			page.RepetitionLevels, rest = rest[:n], rest[n:]
		}
		page.Values = rest
		return page, nil
	case pageTypeDictionary:
		var fixed [12]byte
		if _, err := io.ReadFull(s.r, fixed[:]); err != nil {
			return nil, errors.Wrap(err, "reading dictionary page header")
		}
		numEntries := binary.LittleEndian.Uint32(fixed[0:4])
		payload, err := s.readPayload(fixed[4:12])
		if err != nil {
			return nil, err
		}
		return &DictionaryPage{
			NumEntries: int(numEntries),
			Values:     payload,
			Encoding:   Encoding(kind[1]),
		}, nil
	default:
		return nil, errors.Errorf("parquet: unknown page type %d", kind[0])
	}
}

func (s *SerializedPageReader) readPayload(sizes []byte) ([]byte, error) {
	uncompressedSize := int(binary.LittleEndian.Uint32(sizes[0:4]))
	compressedSize := int(binary.LittleEndian.Uint32(sizes[4:8]))
	raw := make([]byte, compressedSize)
	if _, err := io.ReadFull(s.r, raw); err != nil {
		return nil, errors.Wrap(err, "reading page payload")
	}
	if compressedSize == uncompressedSize {
		return raw, nil
	}
	dst := make([]byte, uncompressedSize)
	return s.codec.Decompress(dst, raw)
}

// framedLen returns the total size, prefix included, of the level
// buffer at the start of buf.
func framedLen(buf []byte) (int, error) {
	if len(buf) < 4 {
		return 0, errors.New("parquet: level buffer shorter than its length prefix")
	}
	n := 4 + int(binary.LittleEndian.Uint32(buf[:4]))
	if n > len(buf) {
		return 0, errors.New("parquet: level buffer overruns page payload")
	}
	return n, nil
}
