package shard

import (
	"testing"

	"github.com/oneconcern/datapack/internal/rand"
	"github.com/oneconcern/datapack/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestSplitSizes(t *testing.T) {
	data := rand.Bytes(10*1024 + 137)

	pieces, err := Split(data, 1024, 100)
	require.NoError(t, err)
	require.Len(t, pieces, 11)
	for _, piece := range pieces[:10] {
		require.Len(t, piece, 1024)
	}
	require.Len(t, pieces[10], 137)

	var back []byte
	for _, piece := range pieces {
		back = append(back, piece...)
	}
	require.Equal(t, data, back)
}

func TestSplitExactMultiple(t *testing.T) {
	data := rand.Bytes(4096)
	pieces, err := Split(data, 1024, 4)
	require.NoError(t, err)
	require.Len(t, pieces, 4)
	require.Len(t, pieces[3], 1024)
}

func TestSplitEmpty(t *testing.T) {
	pieces, err := Split(nil, 1024, 10)
	require.NoError(t, err)
	require.Empty(t, pieces)
}

func TestSplitTooManyPieces(t *testing.T) {
	data := rand.Bytes(11)
	_, err := Split(data, 1, 10)
	require.Error(t, err)

	var tooMany TooManyPiecesError
	require.True(t, errors.As(err, &tooMany))
	require.EqualValues(t, 11, tooMany.Required)
	require.EqualValues(t, 10, tooMany.Limit)
}

func TestSplitZeroPieceSize(t *testing.T) {
	_, err := Split([]byte("ab"), 0, 10)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidPieceSize))
}

func TestReplicate(t *testing.T) {
	pieces := [][]byte{[]byte("one"), []byte("two")}

	require.Equal(t, pieces, Replicate(pieces, 1))

	tripled := Replicate(pieces, 3)
	require.Len(t, tripled, 6)
	require.Equal(t, pieces[0], tripled[2])
	require.Equal(t, pieces[1], tripled[5])
}
