package parquet

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPageBufferRejectsLateDictionary(t *testing.T) {
	buf := NewPageBuffer()
	_, err := buf.WriteDataPage(DataPage{NumValues: 1, ValueEncoding: EncodingPlain})
	require.NoError(t, err)
	_, err = buf.WriteDictionaryPage(DictionaryPage{NumEntries: 1})
	require.Error(t, err)
}

func TestSerializedPageRoundTrip(t *testing.T) {
	descr := NewColumnDescriptor(Int64, "a", 1, 0)

	defLevels := make([]int16, 100)
	for i := range defLevels {
		defLevels[i] = 1
	}
	framed, err := encodeLevelsFramed(1, defLevels)
	require.NoError(t, err)

	dataPage := DataPage{
		NumValues:        100,
		NumEncodedValues: 100,
		DefinitionLevels: framed,
		Values:           bytes.Repeat([]byte{0x80, 0, 0, 0, 0, 0, 0, 0}, 100),
		ValueEncoding:    EncodingPlain,
	}
	dictPage := DictionaryPage{
		NumEntries: 1,
		Values:     []byte{0x80, 0, 0, 0, 0, 0, 0, 0},
		Encoding:   EncodingPlainDictionary,
	}

	kinds := []CompressionKind{
		CompressionKindNone,
		CompressionKindSnappy,
		CompressionKindGzip,
		CompressionKindLz4,
		CompressionKindZstd,
	}
	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			var sink bytes.Buffer
			pw, err := NewSerializedPageWriter(&sink, kind, nil)
			require.NoError(t, err)

			_, err = pw.WriteDictionaryPage(dictPage)
			require.NoError(t, err)
			n, err := pw.WriteDataPage(dataPage)
			require.NoError(t, err)
			require.Greater(t, n, int64(0))
			require.NoError(t, pw.Close())

			pr, err := NewSerializedPageReader(&sink, descr, kind)
			require.NoError(t, err)

			first, err := pr.Next()
			require.NoError(t, err)
			gotDict, ok := first.(*DictionaryPage)
			require.True(t, ok)
			require.Equal(t, dictPage.NumEntries, gotDict.NumEntries)
			require.Equal(t, dictPage.Values, gotDict.Values)

			second, err := pr.Next()
			require.NoError(t, err)
			gotData, ok := second.(*DataPage)
			require.True(t, ok)
			require.Equal(t, dataPage.NumValues, gotData.NumValues)
			require.Equal(t, dataPage.NumEncodedValues, gotData.NumEncodedValues)
			require.Equal(t, dataPage.DefinitionLevels, gotData.DefinitionLevels)
			require.Empty(t, gotData.RepetitionLevels)
			require.Equal(t, dataPage.Values, gotData.Values)
			require.Equal(t, dataPage.ValueEncoding, gotData.ValueEncoding)

			_, err = pr.Next()
			require.Equal(t, io.EOF, err)
		})
	}
}

func TestSerializedPageLargePayload(t *testing.T) {
	// A payload above the pooled scratch capacity forces the codec to
	// grow the compression buffer; the grown slice goes back to the
	// pool and the page still round-trips.
	descr := NewColumnDescriptor(ByteArray, "s", 0, 0)
	values := bytes.Repeat([]byte{0xab}, DefaultDataPageSize+4096)
	page := DataPage{
		NumValues:        1,
		NumEncodedValues: 1,
		Values:           values,
		ValueEncoding:    EncodingPlain,
	}

	var sink bytes.Buffer
	pw, err := NewSerializedPageWriter(&sink, CompressionKindNone, nil)
	require.NoError(t, err)
	_, err = pw.WriteDataPage(page)
	require.NoError(t, err)

	pr, err := NewSerializedPageReader(&sink, descr, CompressionKindNone)
	require.NoError(t, err)
	got, err := pr.Next()
	require.NoError(t, err)
	require.Equal(t, values, got.(*DataPage).Values)
}

func TestColumnWriterThroughSerializedSink(t *testing.T) {
	descr := NewColumnDescriptor(Int64, "a", 0, 0)
	var sink bytes.Buffer
	pw, err := NewSerializedPageWriter(&sink, CompressionKindSnappy, nil)
	require.NoError(t, err)
	w, err := NewTypedColumnWriter[int64](descr, pw, 100, nil)
	require.NoError(t, err)

	require.NoError(t, w.WriteBatch(nil, nil, repeatInt64(128, 100)))
	total, err := w.Close()
	require.NoError(t, err)
	require.Equal(t, int64(sink.Len()), total)

	pr, err := NewSerializedPageReader(&sink, descr, CompressionKindSnappy)
	require.NoError(t, err)
	var pages []DataPage
	for {
		page, err := pr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		dp, ok := page.(*DataPage)
		require.True(t, ok)
		pages = append(pages, *dp)
	}

	r, err := NewTypedColumnReader[int64](descr, nil, pages)
	require.NoError(t, err)
	values := make([]int64, 100)
	levelsRead, valuesRead, err := r.ReadBatch(100, nil, nil, values)
	require.NoError(t, err)
	require.Equal(t, 100, levelsRead)
	require.Equal(t, 100, valuesRead)
	require.Equal(t, repeatInt64(128, 100), values)
}
