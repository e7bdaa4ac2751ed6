// Package cipher encrypts and decrypts whole objects with symmetric
// ciphers, producing self-describing envelopes.
//
// Encryption is a pre-pass applied to the whole object before chunking:
// stored pieces carry envelope bytes, never plaintext. Key material is
// handled as an opaque hex string and is never persisted alongside the
// data.
package cipher

import (
	"crypto/aes"
	stdcipher "crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// KeySize is the symmetric key length in bytes (AES-256)
const KeySize = 32

// Algorithm selects the symmetric cipher used to seal an envelope
type Algorithm string

const (
	// AES256GCM is an authenticated AEAD mode with a 96 bit nonce
	AES256GCM Algorithm = "aes-256-gcm"

	// AES256CTR is counter mode with a 128 bit IV. It carries no
	// authentication tag: integrity relies on the manifest digests.
	AES256CTR Algorithm = "aes-256-ctr"
)

func (a Algorithm) String() string {
	return string(a)
}

// IVSize returns the IV length in bytes for this algorithm, 0 when the
// algorithm is not recognized
func (a Algorithm) IVSize() int {
	switch a {
	case AES256GCM:
		return 12
	case AES256CTR:
		return aes.BlockSize
	default:
		return 0
	}
}

// ParseAlgorithm validates a free form algorithm name
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(name) {
	case AES256GCM:
		return AES256GCM, nil
	case AES256CTR:
		return AES256CTR, nil
	default:
		return "", ErrUnknownAlgorithm.Wrap(fmt.Errorf("algorithm %q", name))
	}
}

// GenerateKeyMaterial produces a fresh random key, hex encoded
func GenerateKeyMaterial() (string, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}

func keyFromMaterial(material string) ([]byte, error) {
	key, err := hex.DecodeString(material)
	if err != nil {
		return nil, ErrInvalidKeyMaterial.Wrap(err)
	}
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize.Wrap(fmt.Errorf("got %d bytes", len(key)))
	}
	return key, nil
}

// Encrypt seals plaintext into an envelope with a fresh random IV.
//
// When keyMaterial is empty a new key is generated and handed back in
// Envelope.KeyMaterial; the caller must persist it out-of-band.
func Encrypt(plaintext []byte, keyMaterial string, alg Algorithm) (Envelope, error) {
	if _, err := ParseAlgorithm(string(alg)); err != nil {
		return Envelope{}, err
	}
	var generated string
	if keyMaterial == "" {
		var err error
		keyMaterial, err = GenerateKeyMaterial()
		if err != nil {
			return Envelope{}, err
		}
		generated = keyMaterial
	}
	key, err := keyFromMaterial(keyMaterial)
	if err != nil {
		return Envelope{}, err
	}

	iv := make([]byte, alg.IVSize())
	if _, err = io.ReadFull(rand.Reader, iv); err != nil {
		return Envelope{}, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return Envelope{}, err
	}

	env := Envelope{
		Algorithm:   alg,
		IV:          iv,
		KeyMaterial: generated,
	}
	switch alg {
	case AES256GCM:
		aead, err := stdcipher.NewGCM(block)
		if err != nil {
			return Envelope{}, err
		}
		env.Ciphertext = aead.Seal(nil, iv, plaintext, env.aad())
	case AES256CTR:
		env.Ciphertext = make([]byte, len(plaintext))
		stdcipher.NewCTR(block, iv).XORKeyStream(env.Ciphertext, plaintext)
	}
	return env, nil
}

// Decrypt opens an envelope with the given key material
func Decrypt(env Envelope, keyMaterial string) ([]byte, error) {
	if _, err := ParseAlgorithm(string(env.Algorithm)); err != nil {
		return nil, err
	}
	if len(env.IV) != env.Algorithm.IVSize() {
		return nil, ErrInvalidIVSize.Wrap(fmt.Errorf("got %d bytes, expected %d", len(env.IV), env.Algorithm.IVSize()))
	}
	key, err := keyFromMaterial(keyMaterial)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	switch env.Algorithm {
	case AES256GCM:
		aead, err := stdcipher.NewGCM(block)
		if err != nil {
			return nil, err
		}
		plaintext, err := aead.Open(nil, env.IV, env.Ciphertext, env.aad())
		if err != nil {
			return nil, ErrDecryptionFailed.Wrap(err)
		}
		return plaintext, nil
	default: // AES256CTR
		plaintext := make([]byte, len(env.Ciphertext))
		stdcipher.NewCTR(block, env.IV).XORKeyStream(plaintext, env.Ciphertext)
		return plaintext, nil
	}
}
