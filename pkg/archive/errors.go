package archive

import "github.com/oneconcern/datapack/pkg/errors"

var (
	// ErrParse indicates a truncated or otherwise invalid archive stream
	ErrParse = errors.New("invalid archive")

	// ErrChecksum indicates archive payloads that do not digest to the
	// metadata checksum. Only reported by Verify, never by Decode.
	ErrChecksum = errors.New("archive payloads do not match the metadata checksum")
)
