package shard

import (
	"bytes"
	"io"

	boxochunker "github.com/ipfs/boxo/chunker"
)

// Split cuts data into pieceSize byte windows, the final window possibly
// short.
//
// The piece count limit is enforced before any piece is produced:
// data that would split into more than maxPieces pieces fails with
// TooManyPiecesError and no output. Zero length data yields no pieces.
//
// Split always splits when invoked: skipping the chunking of small
// objects is the pipeline's decision, not this function's.
func Split(data []byte, pieceSize uint64, maxPieces uint32) ([][]byte, error) {
	if pieceSize == 0 {
		return nil, ErrInvalidPieceSize
	}
	required := (uint64(len(data)) + pieceSize - 1) / pieceSize
	if required > uint64(maxPieces) {
		return nil, TooManyPiecesError{Required: required, Limit: maxPieces}
	}

	pieces := make([][]byte, 0, required)
	splitter := boxochunker.NewSizeSplitter(bytes.NewReader(data), int64(pieceSize))
	for {
		piece, err := splitter.NextBytes()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		pieces = append(pieces, piece)
	}
	return pieces, nil
}

// Replicate appends factor-1 additional full copies of the piece set.
//
// This is whole piece duplication, not erasure coding: recovering piece
// i requires one intact copy among the factor copies stored. A factor
// of 1 returns the input unchanged.
func Replicate(pieces [][]byte, factor uint32) [][]byte {
	if factor <= 1 {
		return pieces
	}
	out := make([][]byte, 0, len(pieces)*int(factor))
	for r := uint32(0); r < factor; r++ {
		out = append(out, pieces...)
	}
	return out
}
