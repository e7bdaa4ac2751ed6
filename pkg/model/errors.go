package model

import "github.com/oneconcern/datapack/pkg/errors"

var (
	// ErrMalformedManifest indicates a manifest violating a structural
	// invariant, or one with an unrecognized format version. Detected
	// before any store interaction.
	ErrMalformedManifest = errors.New("malformed manifest")

	// ErrMalformedArchiveMetadata indicates archive metadata that does not
	// parse or is inconsistent with its records
	ErrMalformedArchiveMetadata = errors.New("malformed archive metadata")
)
