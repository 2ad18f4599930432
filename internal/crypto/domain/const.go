package domain

// Algorithm represents the AEAD algorithm used to seal an envelope.
//
// Both algorithms take a 256-bit key, a 12-byte nonce and append a 16-byte tag.
// Use AESGCM on CPUs with AES-NI and ChaCha20 elsewhere.
type Algorithm string

const (
	// AESGCM represents AES-256-GCM.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 represents ChaCha20-Poly1305.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

const (
	// KeySize is the size in bytes of root keys and data encryption keys.
	KeySize = 32

	// NonceSize is the nonce size shared by both supported algorithms.
	NonceSize = 12

	// TagSize is the authentication tag appended by both supported algorithms.
	TagSize = 16
)

// algorithmIDs maps algorithms to the byte stored in the envelope header.
var algorithmIDs = map[Algorithm]byte{
	AESGCM:   0x01,
	ChaCha20: 0x02,
}

// ID returns the header byte for the algorithm.
func (a Algorithm) ID() (byte, error) {
	id, ok := algorithmIDs[a]
	if !ok {
		return 0, ErrUnsupportedAlgorithm
	}
	return id, nil
}

// AlgorithmFromID resolves a header byte back to its algorithm.
func AlgorithmFromID(id byte) (Algorithm, error) {
	for alg, candidate := range algorithmIDs {
		if candidate == id {
			return alg, nil
		}
	}
	return "", ErrUnsupportedAlgorithm
}

// ParseAlgorithm validates an algorithm name coming from configuration or CLI flags.
func ParseAlgorithm(name string) (Algorithm, error) {
	alg := Algorithm(name)
	if _, ok := algorithmIDs[alg]; !ok {
		return "", ErrUnsupportedAlgorithm
	}
	return alg, nil
}
