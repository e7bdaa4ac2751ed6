package cipher

import (
	"fmt"
)

// EnvelopeVersion is the current version of the binary envelope format
const EnvelopeVersion byte = 0x01

const (
	algorithmIDGCM byte = 0x01
	algorithmIDCTR byte = 0x02
)

// Envelope carries one sealed object: the algorithm, the IV and the
// ciphertext.
//
// KeyMaterial is only populated when Encrypt generated a key on behalf
// of the caller. It never travels in the binary encoding: callers own
// key persistence.
type Envelope struct {
	Algorithm   Algorithm
	IV          []byte
	Ciphertext  []byte
	KeyMaterial string
}

func algorithmID(a Algorithm) (byte, error) {
	switch a {
	case AES256GCM:
		return algorithmIDGCM, nil
	case AES256CTR:
		return algorithmIDCTR, nil
	default:
		return 0, ErrUnknownAlgorithm.Wrap(fmt.Errorf("algorithm %q", a))
	}
}

func algorithmFromID(id byte) (Algorithm, error) {
	switch id {
	case algorithmIDGCM:
		return AES256GCM, nil
	case algorithmIDCTR:
		return AES256CTR, nil
	default:
		return "", ErrUnknownAlgorithm.Wrap(fmt.Errorf("algorithm id %#02x", id))
	}
}

// aad returns the header bytes bound into the AEAD seal, so that a
// tampered header fails authentication.
func (e Envelope) aad() []byte {
	id, _ := algorithmID(e.Algorithm)
	return []byte{EnvelopeVersion, id}
}

// MarshalBinary encodes the envelope as
// [version byte][algorithm byte][iv][ciphertext].
func (e Envelope) MarshalBinary() ([]byte, error) {
	id, err := algorithmID(e.Algorithm)
	if err != nil {
		return nil, err
	}
	if len(e.IV) != e.Algorithm.IVSize() {
		return nil, ErrInvalidIVSize
	}
	out := make([]byte, 0, 2+len(e.IV)+len(e.Ciphertext))
	out = append(out, EnvelopeVersion, id)
	out = append(out, e.IV...)
	out = append(out, e.Ciphertext...)
	return out, nil
}

// UnmarshalEnvelope decodes a binary envelope. The returned envelope
// aliases the input bytes.
func UnmarshalEnvelope(data []byte) (Envelope, error) {
	if len(data) < 2 {
		return Envelope{}, ErrMalformedEnvelope.Wrap(fmt.Errorf("%d bytes is too short for a header", len(data)))
	}
	if data[0] != EnvelopeVersion {
		return Envelope{}, ErrMalformedEnvelope.Wrap(fmt.Errorf("unsupported envelope version %#02x", data[0]))
	}
	alg, err := algorithmFromID(data[1])
	if err != nil {
		return Envelope{}, err
	}
	ivSize := alg.IVSize()
	if len(data) < 2+ivSize {
		return Envelope{}, ErrMalformedEnvelope.Wrap(fmt.Errorf("truncated IV: %d bytes left, expected %d", len(data)-2, ivSize))
	}
	return Envelope{
		Algorithm:  alg,
		IV:         data[2 : 2+ivSize],
		Ciphertext: data[2+ivSize:],
	}, nil
}
