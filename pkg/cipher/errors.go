package cipher

import "github.com/oneconcern/datapack/pkg/errors"

var (
	// ErrInvalidKeyMaterial indicates that the key material string is not valid hex
	ErrInvalidKeyMaterial = errors.New("key material is not a valid hex string")

	// ErrInvalidKeySize indicates that the decoded key has the wrong length
	ErrInvalidKeySize = errors.New("key material must decode to a 32 byte key")

	// ErrInvalidIVSize indicates an IV that does not match the algorithm's IV size
	ErrInvalidIVSize = errors.New("initialization vector does not match the algorithm IV size")

	// ErrUnknownAlgorithm indicates an unrecognized cipher algorithm
	ErrUnknownAlgorithm = errors.New("unknown cipher algorithm")

	// ErrDecryptionFailed indicates a wrong key or tampered ciphertext
	ErrDecryptionFailed = errors.New("decryption failed: wrong key or tampered ciphertext")

	// ErrMalformedEnvelope indicates bytes that do not parse as an encryption envelope
	ErrMalformedEnvelope = errors.New("malformed encryption envelope")
)
