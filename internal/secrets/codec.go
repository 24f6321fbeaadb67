// Package secrets wraps the cryptographic primitives used for stored
// credentials: one-way bcrypt hashing for passwords and session tokens, and
// reversible AES-GCM encryption for Spotify refresh/access tokens.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

const (
	opaqueTokenBytes = 32
	keyIterations    = 10000
	keyBytes         = 32
)

var ErrDecrypt = errors.New("ciphertext could not be decrypted")

// Codec is safe for concurrent use; the derived key is computed once.
type Codec struct {
	aead cipher.AEAD
}

// NewCodec derives an AES-256 key from the configured password and salt.
func NewCodec(password, salt string) (*Codec, error) {
	if password == "" || salt == "" {
		return nil, fmt.Errorf("secrets: password and salt are required")
	}

	key := pbkdf2.Key([]byte(password), []byte(salt), keyIterations, keyBytes, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("secrets: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("secrets: %w", err)
	}

	return &Codec{aead: aead}, nil
}

// HashPassword produces a salted bcrypt hash. Empty input passes through
// unchanged so optional fields stay optional.
func (c *Codec) HashPassword(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (c *Codec) PasswordMatches(raw, hash string) bool {
	if raw == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}

// HashToken applies the same one-way primitive to session tokens, so a
// database leak does not expose usable tokens.
func (c *Codec) HashToken(raw string) (string, error) {
	return c.HashPassword(raw)
}

func (c *Codec) TokenMatches(raw, hash string) bool {
	return c.PasswordMatches(raw, hash)
}

// NewOpaqueToken returns a URL-safe random token without padding.
func (c *Codec) NewOpaqueToken() (string, error) {
	buf := make([]byte, opaqueTokenBytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", fmt.Errorf("secrets: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Encrypt seals value with a fresh nonce. Empty input passes through.
func (c *Codec) Encrypt(value string) (string, error) {
	if value == "" {
		return "", nil
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("secrets: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(value), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (c *Codec) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}

	sealed, err := base64.RawURLEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrDecrypt
	}
	if len(sealed) < c.aead.NonceSize() {
		return "", ErrDecrypt
	}

	nonce, payload := sealed[:c.aead.NonceSize()], sealed[c.aead.NonceSize():]
	plain, err := c.aead.Open(nil, nonce, payload, nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plain), nil
}
