package shard

import (
	"fmt"

	"github.com/oneconcern/datapack/pkg/errors"
	"github.com/oneconcern/datapack/pkg/fingerprint"
)

// TooManyPiecesError is returned by Split when the data would produce
// more pieces than the configured limit. Detected before any piece is
// produced, so callers never see a partial chunk set.
type TooManyPiecesError struct {
	Required uint64
	Limit    uint32
}

func (e TooManyPiecesError) Error() string {
	return fmt.Sprintf("splitting would produce %d pieces, limit is %d", e.Required, e.Limit)
}

// MismatchError reports a piece whose bytes do not digest to the
// checksum recorded in the manifest.
type MismatchError struct {
	Index    uint32
	Expected fingerprint.Digest
	Actual   fingerprint.Digest
}

func (e MismatchError) Error() string {
	return fmt.Sprintf("piece %d checksum mismatch: expected %s, got %s", e.Index, e.Expected, e.Actual)
}

// RecoveryError reports that a primary piece and every replica of it
// failed to produce verified bytes. Err carries the last cause: a
// MismatchError or a store error.
type RecoveryError struct {
	Index    uint32
	Attempts uint32
	Err      error
}

func (e RecoveryError) Error() string {
	return fmt.Sprintf("piece %d unrecoverable after %d attempt(s): %v", e.Index, e.Attempts, e.Err)
}

func (e RecoveryError) Unwrap() error {
	return e.Err
}

var (
	// ErrManifestIntegrity indicates that the reassembled object does not
	// digest to the manifest's original checksum even though every piece
	// verified individually. This points at manifest corruption rather
	// than piece corruption and is reported separately on purpose.
	ErrManifestIntegrity = errors.New("reassembled object does not match the manifest checksum")

	// ErrInvalidPieceSize indicates a zero piece size
	ErrInvalidPieceSize = errors.New("piece size must be greater than zero")

	// ErrInvalidContentID indicates a manifest piece whose content id does
	// not parse as a content store key
	ErrInvalidContentID = errors.New("piece carries an invalid content id")
)
