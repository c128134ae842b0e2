package parquet

import (
	"bytes"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
)

// CompressionCodec compresses and decompresses whole page payloads.
// Compress appends to dst and returns the result; Decompress must be
// given a dst sized to the known uncompressed length.
type CompressionCodec interface {
	Compress(dst, src []byte) ([]byte, error)
	Decompress(dst, src []byte) ([]byte, error)
}

func codecFor(kind CompressionKind) (CompressionCodec, error) {
	switch kind {
	case CompressionKindNone:
		return CompressionNone{}, nil
	case CompressionKindSnappy:
		return CompressionSnappy{}, nil
	case CompressionKindGzip:
		return CompressionGzip{}, nil
	case CompressionKindLz4:
		return CompressionLz4{}, nil
	case CompressionKindZstd:
		return CompressionZstd{}, nil
	default:
		return nil, errors.Errorf("parquet: unsupported compression kind %s", kind)
	}
}

type CompressionNone struct{}

func (CompressionNone) Compress(dst, src []byte) ([]byte, error) {
	return append(dst, src...), nil
}

func (CompressionNone) Decompress(dst, src []byte) ([]byte, error) {
	n := copy(dst, src)
	return dst[:n], nil
}

type CompressionSnappy struct{}

func (CompressionSnappy) Compress(dst, src []byte) ([]byte, error) {
	return append(dst, snappy.Encode(nil, src)...), nil
}

func (CompressionSnappy) Decompress(dst, src []byte) ([]byte, error) {
	return snappy.Decode(dst, src)
}

type CompressionGzip struct{}

func (CompressionGzip) Compress(dst, src []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(src); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return append(dst, buf.Bytes()...), nil
}

func (CompressionGzip) Decompress(dst, src []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	n, err := io.ReadFull(zr, dst)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return dst[:n], nil
}

type CompressionLz4 struct{}

func (CompressionLz4) Compress(dst, src []byte) ([]byte, error) {
	out := make([]byte, lz4.CompressBlockBound(len(src)))
	var c lz4.Compressor
	n, err := c.CompressBlock(src, out)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Incompressible block; the page writer stores such payloads
		// raw when compression does not shrink them.
		return append(dst, src...), nil
	}
	return append(dst, out[:n]...), nil
}

func (CompressionLz4) Decompress(dst, src []byte) ([]byte, error) {
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

type CompressionZstd struct{}

var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	zstdDecoder, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
)

func (CompressionZstd) Compress(dst, src []byte) ([]byte, error) {
	return zstdEncoder.EncodeAll(src, dst), nil
}

func (CompressionZstd) Decompress(dst, src []byte) ([]byte, error) {
	return zstdDecoder.DecodeAll(src, dst[:0])
}
