package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
)

// RootKey is the key encryption key that wraps every data encryption key.
//
// It is loaded once at startup, lives only in memory and is zeroed by Close.
// It is never logged and never stored next to the envelopes it protects.
type RootKey struct {
	mu  sync.RWMutex
	key []byte
}

// NewRootKey copies key into a new RootKey. The caller keeps ownership of key.
func NewRootKey(key []byte) (*RootKey, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: root key must be %d bytes, got %d", ErrInvalidKeySize, KeySize, len(key))
	}

	buf := make([]byte, KeySize)
	copy(buf, key)
	return &RootKey{key: buf}, nil
}

// DecodeRootKey decodes a standard base64 value. The decoded buffer is returned
// to the caller, who must zero it after use.
func DecodeRootKey(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, ErrRootKeyNotSet
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRootKeyBase64, err)
	}
	return raw, nil
}

// Use calls fn with the key material under a read lock.
// fn must not retain the slice.
func (r *RootKey) Use(fn func(key []byte) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.key == nil {
		return ErrRootKeyNotSet
	}
	return fn(r.key)
}

// Close zeroes the key material. Further use fails with ErrRootKeyNotSet.
func (r *RootKey) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	Zero(r.key)
	r.key = nil
}
