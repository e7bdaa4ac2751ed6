package cas

import (
	"fmt"

	"github.com/oneconcern/datapack/pkg/errors"
)

// BadKeySize is returned when a key does not have exactly KeySize bytes
type BadKeySize struct {
	Key []byte
}

func (b BadKeySize) Error() string {
	return fmt.Sprintf("%v is an invalid key, must be %d bytes long", b.Key, KeySize)
}

// ErrCorrupted indicates that a stored object no longer matches its
// content key. Only detected when reads are verified.
var ErrCorrupted = errors.New("stored object does not match its content key")
