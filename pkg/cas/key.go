package cas

import (
	"encoding/hex"
)

// KeySize is the length in bytes of a content key
const KeySize = 64

var emptyKey = Key{}

// Key is the content address of an object: the BLAKE2B-512 digest of
// its bytes. Identical bytes always produce identical keys.
type Key [KeySize]byte

// NewKey builds a key from raw bytes
func NewKey(data []byte) (Key, error) {
	if len(data) != KeySize {
		return emptyKey, BadKeySize{Key: data}
	}
	var k Key
	copy(k[:], data)
	return k, nil
}

// KeyFromString parses a hex rendered key
func KeyFromString(src string) (Key, error) {
	b, err := hex.DecodeString(src)
	if err != nil {
		return emptyKey, err
	}
	return NewKey(b)
}

// String renders the key as lowercase hex
func (k Key) String() string {
	return hex.EncodeToString(k[:])
}
