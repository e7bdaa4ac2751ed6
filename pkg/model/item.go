package model

import "time"

// ItemRecord is the minimal record an archive import derives for each
// recovered object.
//
// Duplicate reports that an object with the same content identifier was
// already present in the store: the pre-existing object is returned
// unchanged rather than overwritten or dropped.
type ItemRecord struct {
	ContentID string    `json:"contentId" yaml:"contentId"`
	Size      uint64    `json:"size" yaml:"size"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	Duplicate bool      `json:"duplicate,omitempty" yaml:"duplicate,omitempty"`
	_         struct{}
}
