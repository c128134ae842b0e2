package parquet

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func hybridRoundTrip(t *testing.T, bitWidth int, input []uint64) {
	t.Helper()
	buf := make([]byte, maxHybridSize(bitWidth, len(input)))
	enc := newHybridEncoder(buf, bitWidth)
	for _, v := range input {
		require.NoError(t, enc.Put(v))
	}
	n, err := enc.Flush()
	require.NoError(t, err)
	require.LessOrEqual(t, n, len(buf))

	dec := newHybridDecoder(buf[:n], bitWidth)
	out := make([]uint64, len(input))
	require.NoError(t, dec.GetBatch(out))
	require.Equal(t, input, out)
}

func TestHybridKnownEncodings(t *testing.T) {
	testCases := []struct {
		name     string
		bitWidth int
		input    []uint64
		expect   []byte
	}{
		{
			name:     "run of eight zeros",
			bitWidth: 1,
			input:    []uint64{0, 0, 0, 0, 0, 0, 0, 0},
			expect:   []byte{0x10, 0x00},
		},
		{
			name:     "run of one hundred zeros",
			bitWidth: 1,
			input:    make([]uint64, 100),
			expect:   []byte{0xc8, 0x01, 0x00},
		},
		{
			name:     "alternating bits",
			bitWidth: 1,
			input:    []uint64{0, 1, 0, 1, 0, 1, 0, 1},
			expect:   []byte{0x03, 0xaa},
		},
		{
			name:     "partial literal group is zero padded",
			bitWidth: 2,
			input:    []uint64{0, 1, 2, 3},
			expect:   []byte{0x03, 0xe4, 0x00},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := make([]byte, maxHybridSize(tc.bitWidth, len(tc.input)))
			enc := newHybridEncoder(buf, tc.bitWidth)
			for _, v := range tc.input {
				require.NoError(t, enc.Put(v))
			}
			n, err := enc.Flush()
			require.NoError(t, err)
			require.Equal(t, tc.expect, buf[:n])
		})
	}
}

func TestHybridRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, maxLevel := range []uint64{1, 2, 8, 127} {
		bitWidth := 0
		for m := maxLevel; m > 0; m >>= 1 {
			bitWidth++
		}

		long := make([]uint64, 1000)
		for i := 500; i < len(long); i++ {
			long[i] = maxLevel
		}
		alternating := make([]uint64, 1001)
		for i := range alternating {
			alternating[i] = uint64(i) % (maxLevel + 1)
		}
		random := make([]uint64, 997)
		for i := range random {
			random[i] = uint64(rng.Int63n(int64(maxLevel + 1)))
		}

		hybridRoundTrip(t, bitWidth, []uint64{maxLevel})
		hybridRoundTrip(t, bitWidth, long)
		hybridRoundTrip(t, bitWidth, alternating)
		hybridRoundTrip(t, bitWidth, random)
	}
}

func TestHybridWidthZero(t *testing.T) {
	enc := newHybridEncoder(nil, 0)
	for i := 0; i < 100; i++ {
		require.NoError(t, enc.Put(0))
	}
	n, err := enc.Flush()
	require.NoError(t, err)
	require.Equal(t, 0, n)

	dec := newHybridDecoder(nil, 0)
	out := make([]uint64, 100)
	require.NoError(t, dec.GetBatch(out))
	for _, v := range out {
		require.Equal(t, uint64(0), v)
	}
}

func TestHybridRunsOfEight(t *testing.T) {
	// Runs of exactly eight equal values cost a two-byte repeated run
	// each, the most expensive shape per value; the size bound must
	// cover it.
	input := make([]uint64, 256)
	for i := range input {
		input[i] = uint64(i/8) % 2
	}
	hybridRoundTrip(t, 1, input)
}

func TestHybridLongLiteralRun(t *testing.T) {
	// More than 63 groups of 8 forces the encoder to split literal
	// runs across several indicator bytes.
	input := make([]uint64, 64*8+5)
	for i := range input {
		input[i] = uint64(i) % 2
	}
	// Kill any accidental runs of 8.
	for i := 0; i < len(input); i += 9 {
		input[i] = 1
	}
	hybridRoundTrip(t, 1, input)
}
