package parquet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func decodeIndexPage(t *testing.T, page []byte, numValues int) []uint64 {
	t.Helper()
	require.NotEmpty(t, page)
	dec := newHybridDecoder(page[1:], int(page[0]))
	out := make([]uint64, numValues)
	require.NoError(t, dec.GetBatch(out))
	return out
}

func TestDictEncoderFirstOccurrenceOrder(t *testing.T) {
	descr := NewColumnDescriptor(ByteArray, "s", 0, 0)
	enc := newDictEncoder[string](descr, EncodingRLEDictionary)

	require.NoError(t, enc.Put([]string{"b", "a", "b", "c", "a"}))
	require.Equal(t, 3, enc.NumEntries())

	page, err := enc.FlushValues()
	require.NoError(t, err)
	require.Equal(t, []uint64{0, 1, 0, 2, 1}, decodeIndexPage(t, page, 5))

	// Code order is first occurrence order, not value order.
	buf := make([]byte, enc.DictByteSize())
	require.NoError(t, enc.WriteDict(buf))
	values, err := plainDecode[string](descr, buf, enc.NumEntries())
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a", "c"}, values)
}

func TestDictEncoderLateBoundWidth(t *testing.T) {
	descr := NewColumnDescriptor(Int32, "i", 0, 0)
	enc := newDictEncoder[int32](descr, EncodingRLEDictionary)

	// One distinct value: indices still take one bit each, so the page
	// is a width byte and one repeated run of three zeros.
	require.NoError(t, enc.Put([]int32{7, 7, 7}))
	page, err := enc.FlushValues()
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x06, 0x00}, page)
	require.Equal(t, []uint64{0, 0, 0}, decodeIndexPage(t, page, 3))

	// The dictionary keeps growing across flushes; the next page
	// re-derives its width from the current cardinality.
	require.NoError(t, enc.Put([]int32{1, 2, 3, 4, 7}))
	page, err = enc.FlushValues()
	require.NoError(t, err)
	require.Equal(t, 3, int(page[0]))
	require.Equal(t, []uint64{1, 2, 3, 4, 0}, decodeIndexPage(t, page, 5))
	require.Equal(t, 5, enc.NumEntries())
}

func TestDictEncoderIndexBufferResetsDictPersists(t *testing.T) {
	descr := NewColumnDescriptor(Int64, "i", 0, 0)
	enc := newDictEncoder[int64](descr, EncodingPlainDictionary)

	require.NoError(t, enc.Put([]int64{10, 20}))
	_, err := enc.FlushValues()
	require.NoError(t, err)

	require.NoError(t, enc.Put([]int64{20, 10}))
	page, err := enc.FlushValues()
	require.NoError(t, err)
	// Codes survive the flush even though the index buffer reset.
	require.Equal(t, []uint64{1, 0}, decodeIndexPage(t, page, 2))

	require.Equal(t, 2, enc.NumEntries())
	require.Equal(t, 16, enc.DictByteSize())
}

func TestDictEncoderUnsupportedForBoolean(t *testing.T) {
	descr := NewColumnDescriptor(Boolean, "b", 0, 0)
	_, err := newValueEncoder[bool](descr, EncodingRLEDictionary)
	require.ErrorIs(t, err, ErrUnsupportedEncoding)
}
