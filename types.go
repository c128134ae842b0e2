package parquet

import "fmt"

// PhysicalType identifies the primitive storage type of a column. The
// numeric values match the parquet physical type codes.
type PhysicalType int

const (
	Boolean PhysicalType = iota
	Int32
	Int64
	Int96Type
	Float
	Double
	ByteArray
	FixedLenByteArray
)

func (t PhysicalType) String() string {
	switch t {
	case Boolean:
		return "BOOLEAN"
	case Int32:
		return "INT32"
	case Int64:
		return "INT64"
	case Int96Type:
		return "INT96"
	case Float:
		return "FLOAT"
	case Double:
		return "DOUBLE"
	case ByteArray:
		return "BYTE_ARRAY"
	case FixedLenByteArray:
		return "FIXED_LEN_BYTE_ARRAY"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(t))
	}
}

// Int96 is a 96-bit value stored as 12 little-endian bytes.
type Int96 [12]byte

// Encoding identifies how values or levels are encoded within a page.
// The numeric values match the parquet encoding codes.
type Encoding int

const (
	EncodingPlain           Encoding = 0
	EncodingPlainDictionary Encoding = 2
	EncodingRLE             Encoding = 3
	EncodingRLEDictionary   Encoding = 8
)

func (e Encoding) String() string {
	switch e {
	case EncodingPlain:
		return "PLAIN"
	case EncodingPlainDictionary:
		return "PLAIN_DICTIONARY"
	case EncodingRLE:
		return "RLE"
	case EncodingRLEDictionary:
		return "RLE_DICTIONARY"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(e))
	}
}

// isDictionary reports whether the encoding stores dictionary indices in
// data pages and requires a dictionary page ahead of them.
func (e Encoding) isDictionary() bool {
	return e == EncodingPlainDictionary || e == EncodingRLEDictionary
}

// CompressionKind identifies the block compression applied to serialized
// pages. The numeric values match the parquet codec codes.
type CompressionKind int

const (
	CompressionKindNone   CompressionKind = 0
	CompressionKindSnappy CompressionKind = 1
	CompressionKindGzip   CompressionKind = 2
	CompressionKindLz4    CompressionKind = 5
	CompressionKindZstd   CompressionKind = 6
)

func (c CompressionKind) String() string {
	switch c {
	case CompressionKindNone:
		return "UNCOMPRESSED"
	case CompressionKindSnappy:
		return "SNAPPY"
	case CompressionKindGzip:
		return "GZIP"
	case CompressionKindLz4:
		return "LZ4"
	case CompressionKindZstd:
		return "ZSTD"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(c))
	}
}

// Value constrains the Go representations of the parquet physical types.
// Byte arrays (both variable and fixed length) are represented as strings
// so that every physical value is immutable and usable as a map key.
type Value interface {
	~bool | ~int32 | ~int64 | ~float32 | ~float64 | ~string | Int96
}
