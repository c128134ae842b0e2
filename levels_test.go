package parquet

import (
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, maxLevel := range []int16{1, 2, 8, 127} {
		inputs := [][]int16{
			make([]int16, 512),
			make([]int16, 513),
			make([]int16, 1000),
		}
		for i := range inputs[1] {
			inputs[1][i] = int16(i) % (maxLevel + 1)
		}
		for i := range inputs[2] {
			inputs[2][i] = int16(rng.Int63n(int64(maxLevel) + 1))
		}

		for _, levels := range inputs {
			framed, err := encodeLevelsFramed(maxLevel, levels)
			require.NoError(t, err)

			payloadLen := binary.LittleEndian.Uint32(framed[:4])
			require.Equal(t, len(framed), 4+int(payloadLen))
			require.LessOrEqual(t, int(payloadLen), maxLevelEncodedSize(maxLevel, len(levels)))

			dec, err := newLevelDecoder(maxLevel, framed)
			require.NoError(t, err)
			out := make([]int16, len(levels))
			require.NoError(t, dec.Decode(out))
			require.Equal(t, levels, out)
		}
	}
}

func TestLevelEncoderOverflow(t *testing.T) {
	buf := make([]byte, maxLevelEncodedSize(1, 3))
	_, err := newLevelEncoder(1, buf).Encode([]int16{0, 1, 2})
	require.ErrorIs(t, err, ErrLevelOverflow)
}

func TestLevelBitWidth(t *testing.T) {
	testCases := []struct {
		maxLevel int16
		width    int
	}{
		{0, 0},
		{1, 1},
		{2, 2},
		{3, 2},
		{8, 4},
		{127, 7},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.width, levelBitWidth(tc.maxLevel))
	}
}

func TestLevelDecoderRejectsShortInput(t *testing.T) {
	_, err := newLevelDecoder(1, []byte{0x01})
	require.Error(t, err)

	// Prefix claims more payload bytes than are present.
	_, err = newLevelDecoder(1, []byte{0xff, 0x00, 0x00, 0x00, 0x10})
	require.Error(t, err)
}
