// Package crypto seals small secrets with AES-GCM.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// KeyEnv names the variable holding the sealing key.
const KeyEnv = "CRUD_CONFIG_KEY"

// sealedPrefix marks values produced by SealString.
const sealedPrefix = "enc:v1:"

var ErrNoKey = errors.New(KeyEnv + " not set")

// Sealer encrypts with one AES key.
type Sealer struct {
	gcm cipher.AEAD
}

// NewSealer accepts a 16, 24 or 32 byte key.
func NewSealer(key []byte) (*Sealer, error) {
	if l := len(key); l != 16 && l != 24 && l != 32 {
		return nil, fmt.Errorf("invalid key length %d", l)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Sealer{gcm: gcm}, nil
}

// FromEnv builds a sealer from KeyEnv. It returns ErrNoKey when the variable
// is empty.
func FromEnv() (*Sealer, error) {
	k := os.Getenv(KeyEnv)
	if k == "" {
		return nil, ErrNoKey
	}
	return NewSealer([]byte(k))
}

// Encrypt returns nonce||ciphertext.
func (s *Sealer) Encrypt(plain []byte) ([]byte, error) {
	nonce := make([]byte, s.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return s.gcm.Seal(nonce, nonce, plain, nil), nil
}

func (s *Sealer) Decrypt(ciphertext []byte) ([]byte, error) {
	nonceSize := s.gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce, ct := ciphertext[:nonceSize], ciphertext[nonceSize:]
	return s.gcm.Open(nil, nonce, ct, nil)
}

// SealString encrypts v into a printable form that OpenString recognises.
func (s *Sealer) SealString(v string) (string, error) {
	ct, err := s.Encrypt([]byte(v))
	if err != nil {
		return "", err
	}
	return sealedPrefix + base64.RawURLEncoding.EncodeToString(ct), nil
}

// OpenString reverses SealString. Values without the sealed prefix are
// returned unchanged.
func (s *Sealer) OpenString(v string) (string, error) {
	rest, ok := strings.CutPrefix(v, sealedPrefix)
	if !ok {
		return v, nil
	}
	ct, err := base64.RawURLEncoding.DecodeString(rest)
	if err != nil {
		return "", err
	}
	plain, err := s.Decrypt(ct)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// IsSealed reports whether v came from SealString.
func IsSealed(v string) bool { return strings.HasPrefix(v, sealedPrefix) }
