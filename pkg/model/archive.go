package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/oneconcern/datapack/pkg/fingerprint"
)

const (
	// CurrentArchiveVersion indicates the version of the archive metadata model
	CurrentArchiveVersion = "1.0"
)

// ArchiveMetadata is the first record of a portable archive.
//
// RootIDs lists the content identifiers of the archived objects; the
// object bytes for RootIDs[i] travel in record i+1 of the archive.
// Checksum covers the concatenated payload records in order.
type ArchiveMetadata struct {
	Version   string             `json:"version" yaml:"version"`
	CreatedAt time.Time          `json:"createdAt" yaml:"createdAt"`
	ItemCount uint32             `json:"itemCount" yaml:"itemCount"`
	TotalSize uint64             `json:"totalSize" yaml:"totalSize"`
	RootIDs   []string           `json:"rootIds" yaml:"rootIds"`
	Checksum  fingerprint.Digest `json:"checksum" yaml:"checksum"`
	_         struct{}
}

// Validate checks the structural invariants of archive metadata
func (a *ArchiveMetadata) Validate() error {
	if a.Version != CurrentArchiveVersion {
		return ErrMalformedArchiveMetadata.Wrap(fmt.Errorf("unrecognized archive version %q", a.Version))
	}
	if int(a.ItemCount) != len(a.RootIDs) {
		return ErrMalformedArchiveMetadata.Wrap(fmt.Errorf("itemCount %d, but %d root ids", a.ItemCount, len(a.RootIDs)))
	}
	return nil
}

// MarshalArchiveMetadata serializes archive metadata as UTF-8 JSON
func MarshalArchiveMetadata(a *ArchiveMetadata) ([]byte, error) {
	return json.Marshal(a)
}

// UnmarshalArchiveMetadata parses and validates JSON archive metadata
func UnmarshalArchiveMetadata(data []byte) (*ArchiveMetadata, error) {
	var a ArchiveMetadata
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, ErrMalformedArchiveMetadata.Wrap(err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}
