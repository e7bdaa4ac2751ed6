// Package fingerprint computes integrity digests over byte sequences.
//
// Digests produced here guard piece and whole object integrity. They are
// not content addresses: the content store derives its own, longer keys.
package fingerprint

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	blake2b "github.com/minio/blake2b-simd"
)

// Size of a digest in bytes
const Size = 32

// Digest is a BLAKE2B-256 checksum of a byte sequence
type Digest [Size]byte

// Func computes the digest of a byte sequence. Components performing
// integrity checks take one of these rather than hashing inline.
type Func func([]byte) Digest

// Bytes fingerprints a byte sequence
func Bytes(data []byte) Digest {
	return Digest(blake2b.Sum256(data))
}

// String renders the digest as lowercase hex
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// FromString parses a hex rendered digest
func FromString(s string) (Digest, error) {
	var d Digest
	b, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("invalid digest %q: %v", s, err)
	}
	if len(b) != Size {
		return d, fmt.Errorf("invalid digest length %d, expected %d", len(b), Size)
	}
	copy(d[:], b)
	return d, nil
}

// MarshalJSON renders the digest as a quoted hex string
func (d Digest) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON parses a quoted hex string
func (d *Digest) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := FromString(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalYAML renders the digest as a hex string
func (d Digest) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// UnmarshalYAML parses a hex string
func (d *Digest) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := FromString(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
