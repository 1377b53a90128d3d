package store

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorRoundTrip(t *testing.T) {
	vectors := [][]float32{
		{},
		{0},
		{1.5, -2.25, 3.125},
		{math.MaxFloat32, -math.MaxFloat32, math.SmallestNonzeroFloat32},
		{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8},
	}

	for _, want := range vectors {
		blob := serializeVector(want)
		require.Equal(t, len(want)*4, len(blob))

		got, err := deserializeVector(blob)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestSerializeVector_LittleEndianLayout(t *testing.T) {
	// 1.0 is 0x3F800000; little-endian bytes are 00 00 80 3F.
	blob := serializeVector([]float32{1.0})
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3F}, blob)
}

func TestDeserializeVector_BadLength(t *testing.T) {
	_, err := deserializeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestDeserializeVector_Empty(t *testing.T) {
	got, err := deserializeVector(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
