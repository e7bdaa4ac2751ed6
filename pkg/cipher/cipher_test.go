package cipher

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0001020304050607080910111213141516171819202122232425262728293031"

func TestEncryptDecryptGCM(t *testing.T) {
	plaintext := []byte("attack at dawn, bring snacks")

	env, err := Encrypt(plaintext, testKey, AES256GCM)
	require.NoError(t, err)
	assert.Empty(t, env.KeyMaterial)
	assert.Len(t, env.IV, 12)
	assert.NotEqual(t, plaintext, env.Ciphertext)

	back, err := Decrypt(env, testKey)
	require.NoError(t, err)
	assert.Equal(t, plaintext, back)
}

func TestEncryptDecryptCTR(t *testing.T) {
	plaintext := []byte("attack at dawn, bring snacks")

	env, err := Encrypt(plaintext, testKey, AES256CTR)
	require.NoError(t, err)
	assert.Len(t, env.IV, 16)
	assert.Len(t, env.Ciphertext, len(plaintext))
	assert.NotEqual(t, plaintext, env.Ciphertext)

	back, err := Decrypt(env, testKey)
	require.NoError(t, err)
	assert.Equal(t, plaintext, back)
}

func TestEncryptGeneratesKey(t *testing.T) {
	env, err := Encrypt([]byte("no key supplied"), "", AES256GCM)
	require.NoError(t, err)
	require.NotEmpty(t, env.KeyMaterial)
	require.Len(t, env.KeyMaterial, 2*KeySize)

	back, err := Decrypt(env, env.KeyMaterial)
	require.NoError(t, err)
	assert.Equal(t, []byte("no key supplied"), back)
}

func TestEncryptFreshIV(t *testing.T) {
	e1, err := Encrypt([]byte("same input"), testKey, AES256GCM)
	require.NoError(t, err)
	e2, err := Encrypt([]byte("same input"), testKey, AES256GCM)
	require.NoError(t, err)
	assert.NotEqual(t, e1.IV, e2.IV)
	assert.NotEqual(t, e1.Ciphertext, e2.Ciphertext)
}

func TestEncryptEmptyPlaintext(t *testing.T) {
	env, err := Encrypt(nil, testKey, AES256GCM)
	require.NoError(t, err)
	assert.NotEmpty(t, env.Ciphertext) // the authentication tag remains

	back, err := Decrypt(env, testKey)
	require.NoError(t, err)
	assert.Empty(t, back)
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	env, err := Encrypt([]byte("attack at dawn"), testKey, AES256GCM)
	require.NoError(t, err)

	env.Ciphertext[0] ^= 0xff
	_, err = Decrypt(env, testKey)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecryptionFailed))
}

func TestDecryptWrongKey(t *testing.T) {
	env, err := Encrypt([]byte("attack at dawn"), testKey, AES256GCM)
	require.NoError(t, err)

	other, err := GenerateKeyMaterial()
	require.NoError(t, err)

	_, err = Decrypt(env, other)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecryptionFailed))
}

func TestKeyMaterialValidation(t *testing.T) {
	_, err := Encrypt([]byte("x"), "not hex", AES256GCM)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidKeyMaterial))

	_, err = Encrypt([]byte("x"), "abcdef", AES256GCM)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidKeySize))

	env, err := Encrypt([]byte("x"), testKey, AES256GCM)
	require.NoError(t, err)
	_, err = Decrypt(env, "abcdef")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidKeySize))
}

func TestParseAlgorithm(t *testing.T) {
	alg, err := ParseAlgorithm("aes-256-gcm")
	require.NoError(t, err)
	assert.Equal(t, AES256GCM, alg)

	alg, err = ParseAlgorithm("aes-256-ctr")
	require.NoError(t, err)
	assert.Equal(t, AES256CTR, alg)

	_, err = ParseAlgorithm("rot13")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownAlgorithm))

	_, err = Encrypt([]byte("x"), testKey, Algorithm("rot13"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownAlgorithm))
}

func TestEnvelopeBinaryRoundTrip(t *testing.T) {
	for _, alg := range []Algorithm{AES256GCM, AES256CTR} {
		env, err := Encrypt([]byte("attack at dawn"), testKey, alg)
		require.NoError(t, err)

		buf, err := env.MarshalBinary()
		require.NoError(t, err)
		assert.Equal(t, EnvelopeVersion, buf[0])

		back, err := UnmarshalEnvelope(buf)
		require.NoError(t, err)
		assert.Equal(t, env.Algorithm, back.Algorithm)
		assert.Equal(t, env.IV, back.IV)
		assert.Equal(t, env.Ciphertext, back.Ciphertext)
		assert.Empty(t, back.KeyMaterial)

		plain, err := Decrypt(back, testKey)
		require.NoError(t, err)
		assert.Equal(t, []byte("attack at dawn"), plain)
	}
}

func TestEnvelopeTamperedHeader(t *testing.T) {
	env, err := Encrypt([]byte("attack at dawn"), testKey, AES256GCM)
	require.NoError(t, err)
	buf, err := env.MarshalBinary()
	require.NoError(t, err)

	// bad version byte
	buf[0] = 0x7f
	_, err = UnmarshalEnvelope(buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedEnvelope))
	buf[0] = EnvelopeVersion

	// unknown algorithm id
	buf[1] = 0x7f
	_, err = UnmarshalEnvelope(buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownAlgorithm))
}

func TestEnvelopeTruncated(t *testing.T) {
	_, err := UnmarshalEnvelope(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedEnvelope))

	_, err = UnmarshalEnvelope([]byte{EnvelopeVersion})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedEnvelope))

	_, err = UnmarshalEnvelope([]byte{EnvelopeVersion, algorithmIDGCM, 0x01, 0x02})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedEnvelope))
}

func TestEnvelopeMarshalValidation(t *testing.T) {
	_, err := Envelope{Algorithm: "rot13"}.MarshalBinary()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownAlgorithm))

	_, err = Envelope{Algorithm: AES256GCM, IV: []byte{0x01}}.MarshalBinary()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidIVSize))
}
