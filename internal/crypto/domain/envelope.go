package domain

import (
	"encoding/binary"
	"fmt"
)

// EnvelopeVersion is the only envelope layout this build reads and writes.
const EnvelopeVersion byte = 0x01

const (
	headerSize      = 2
	lengthSize      = 4
	wrappedDEKSize  = NonceSize + KeySize + TagSize
	minEnvelopeSize = headerSize + lengthSize + wrappedDEKSize + NonceSize + TagSize
)

// Envelope is a self-contained sealed record.
//
// Binary layout:
//
//	version(1) | algorithm(1) | wrapped_dek_len(uint32 BE) | wrapped_dek | nonce | ciphertext
//
// wrapped_dek is dek_nonce || seal(root_key, dek). The two header bytes are
// bound as associated data into both seals, so editing them breaks authentication.
type Envelope struct {
	Version    byte
	Algorithm  Algorithm
	WrappedDEK []byte
	Nonce      []byte
	Ciphertext []byte
}

// Header returns the associated data shared by the DEK seal and the payload seal.
func (e *Envelope) Header() ([]byte, error) {
	id, err := e.Algorithm.ID()
	if err != nil {
		return nil, err
	}
	return []byte{e.Version, id}, nil
}

// Marshal encodes the envelope into its binary layout.
func (e *Envelope) Marshal() ([]byte, error) {
	header, err := e.Header()
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, headerSize+lengthSize+len(e.WrappedDEK)+len(e.Nonce)+len(e.Ciphertext))
	buf = append(buf, header...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(e.WrappedDEK)))
	buf = append(buf, e.WrappedDEK...)
	buf = append(buf, e.Nonce...)
	buf = append(buf, e.Ciphertext...)
	return buf, nil
}

// ParseEnvelope decodes the binary layout without authenticating anything.
// The returned slices alias data.
func ParseEnvelope(data []byte) (*Envelope, error) {
	if len(data) < minEnvelopeSize {
		return nil, fmt.Errorf("%w: %d bytes is too short", ErrMalformedEnvelope, len(data))
	}

	if data[0] != EnvelopeVersion {
		return nil, fmt.Errorf("%w: unknown version %d", ErrMalformedEnvelope, data[0])
	}

	alg, err := AlgorithmFromID(data[1])
	if err != nil {
		return nil, fmt.Errorf("%w: unknown algorithm %d", ErrMalformedEnvelope, data[1])
	}

	wrappedLen := binary.BigEndian.Uint32(data[headerSize : headerSize+lengthSize])
	if wrappedLen != wrappedDEKSize {
		return nil, fmt.Errorf("%w: wrapped key length %d", ErrMalformedEnvelope, wrappedLen)
	}

	offset := headerSize + lengthSize
	wrapped := data[offset : offset+wrappedDEKSize]
	offset += wrappedDEKSize

	nonce := data[offset : offset+NonceSize]
	offset += NonceSize

	return &Envelope{
		Version:    data[0],
		Algorithm:  alg,
		WrappedDEK: wrapped,
		Nonce:      nonce,
		Ciphertext: data[offset:],
	}, nil
}
