// Package status exports errors produced by the core package.
package status

import (
	"github.com/oneconcern/datapack/pkg/errors"
)

var (
	// ErrNoContentStore indicates a pipeline built without a content store
	ErrNoContentStore = errors.New("a content store is required")

	// ErrInvalidPieceSize indicates a piece size outside the accepted range
	ErrInvalidPieceSize = errors.New("invalid piece size")

	// ErrInvalidMaxPieces indicates a zero piece count limit
	ErrInvalidMaxPieces = errors.New("max pieces must be at least 1")

	// ErrInvalidReplication indicates a zero replication factor
	ErrInvalidReplication = errors.New("replication factor must be at least 1")

	// ErrObjectTooBig indicates an object exceeding the in-memory size guard
	ErrObjectTooBig = errors.New("object too big to be packaged in memory")

	// ErrImportMismatch indicates an imported object whose re-derived
	// content id does not match the archive metadata
	ErrImportMismatch = errors.New("imported object does not match its declared content id")
)
