package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/oneconcern/datapack/pkg/fingerprint"
)

const (
	// CurrentManifestVersion indicates the version of the manifest model.
	//
	// Readers must reject manifests with an unrecognized version.
	CurrentManifestVersion = "1.0"
)

// SplitAlgorithm identifies the scheme used to split an object into pieces
type SplitAlgorithm string

const (
	// SplitFixedSize splits an object in fixed size windows, the last
	// window possibly short. This is the only algorithm currently defined:
	// the tag leaves room for other schemes without changing the manifest
	// shape.
	SplitFixedSize SplitAlgorithm = "fixed-size"
)

// PieceInfo describes one stored piece of a chunked object.
//
// Immutable once the checksum is computed. ContentID is empty until the
// piece has been written to the content store.
type PieceInfo struct {
	Index     uint32             `json:"index" yaml:"index"`
	Size      uint64             `json:"size" yaml:"size"`
	Checksum  fingerprint.Digest `json:"checksum" yaml:"checksum"`
	ContentID string             `json:"contentId,omitempty" yaml:"contentId,omitempty"`
	_         struct{}
}

// Manifest describes a chunked object: its original size and checksum,
// the split parameters and the ordered sequence of stored pieces.
//
// A manifest holds pieceCount primary pieces followed by replicationFactor-1
// full replica rounds: the piece at index pieceCount*r + i is the r-th
// replica of primary piece i and carries the same checksum.
//
// Never mutated after its pieces are stored: a new upload produces a new
// manifest.
type Manifest struct {
	FormatVersion     string             `json:"formatVersion" yaml:"formatVersion"`
	OriginalSize      uint64             `json:"originalSize" yaml:"originalSize"`
	OriginalChecksum  fingerprint.Digest `json:"originalChecksum" yaml:"originalChecksum"`
	PieceSize         uint64             `json:"pieceSize" yaml:"pieceSize"`
	PieceCount        uint32             `json:"pieceCount" yaml:"pieceCount"`
	ReplicationFactor uint32             `json:"replicationFactor" yaml:"replicationFactor"`
	Algorithm         SplitAlgorithm     `json:"algorithm" yaml:"algorithm"`
	Pieces            []PieceInfo        `json:"pieces" yaml:"pieces"`
	CreatedAt         time.Time          `json:"createdAt" yaml:"createdAt"`
	Encrypted         bool               `json:"encrypted,omitempty" yaml:"encrypted,omitempty"`
	_                 struct{}
}

// NewTimeStamp yields the timestamp recorded in manifests and archives
func NewTimeStamp() time.Time {
	return time.Now().UTC()
}

// Validate checks the structural invariants of the manifest.
//
// Violations are wrapped in ErrMalformedManifest, so callers may test
// with errors.Is and still report the precise cause.
func (m *Manifest) Validate() error {
	if m.FormatVersion != CurrentManifestVersion {
		return ErrMalformedManifest.Wrap(fmt.Errorf("unrecognized format version %q", m.FormatVersion))
	}
	if m.Algorithm != SplitFixedSize {
		return ErrMalformedManifest.Wrap(fmt.Errorf("unrecognized split algorithm %q", m.Algorithm))
	}
	if m.PieceCount > 0 && m.PieceSize == 0 {
		return ErrMalformedManifest.Wrap(fmt.Errorf("piece size must be set when pieces are present"))
	}
	if m.ReplicationFactor < 1 {
		return ErrMalformedManifest.Wrap(fmt.Errorf("replication factor %d, must be at least 1", m.ReplicationFactor))
	}
	if expected := uint64(m.PieceCount) * uint64(m.ReplicationFactor); uint64(len(m.Pieces)) != expected {
		return ErrMalformedManifest.Wrap(fmt.Errorf("%d pieces, expected pieceCount x replicationFactor = %d", len(m.Pieces), expected))
	}

	var primarySize uint64
	for i, piece := range m.Pieces {
		primary := i % int(m.PieceCount)
		if piece.Index != uint32(i) {
			return ErrMalformedManifest.Wrap(fmt.Errorf("piece at position %d has index %d", i, piece.Index))
		}
		if i < int(m.PieceCount) {
			primarySize += piece.Size
			continue
		}
		// replica round: must mirror its primary
		if piece.Checksum != m.Pieces[primary].Checksum {
			return ErrMalformedManifest.Wrap(fmt.Errorf("replica %d does not match the checksum of primary piece %d", i, primary))
		}
		if piece.Size != m.Pieces[primary].Size {
			return ErrMalformedManifest.Wrap(fmt.Errorf("replica %d does not match the size of primary piece %d", i, primary))
		}
	}
	if m.PieceCount > 0 && primarySize != m.OriginalSize {
		return ErrMalformedManifest.Wrap(fmt.Errorf("primary piece sizes sum to %d, expected original size %d", primarySize, m.OriginalSize))
	}
	if m.PieceCount == 0 && m.OriginalSize != 0 {
		return ErrMalformedManifest.Wrap(fmt.Errorf("no pieces but a non zero original size %d", m.OriginalSize))
	}
	return nil
}

// MarshalManifest serializes a manifest as UTF-8 JSON
func MarshalManifest(m *Manifest) ([]byte, error) {
	return json.Marshal(m)
}

// UnmarshalManifest parses and validates a JSON manifest.
//
// Bytes that do not parse as JSON, or parse into a manifest violating
// the structural invariants, fail with ErrMalformedManifest.
func UnmarshalManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, ErrMalformedManifest.Wrap(err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}
