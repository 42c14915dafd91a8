// Package security contains everything related to the security of user data
package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

const (
	// KeySize is the AES-256 key length in bytes
	KeySize = 32
	// IVSize matches the legacy envelope format, GCM runs with a
	// 16 byte nonce instead of the default 12
	IVSize = 16
	// TagSize is the GCM authentication tag length in bytes
	TagSize = 16
)

var (
	ErrInvalidKey = errors.New("encryption key must be exactly 32 bytes of hex")

	// ErrIntegrityCheckFailed means the authentication tag didn't match
	// during decryption. The ciphertext, IV or tag were corrupted or
	// tampered with and no plaintext is ever returned in that case
	ErrIntegrityCheckFailed = errors.New("file integrity check failed during decryption")
)

// Engine encrypts and decrypts opaque byte buffers with AES-256-GCM.
// The IV and auth tag are kept out of band, so ciphertext written to
// disk is exactly as long as the plaintext it was made from.
type Engine struct {
	gcm cipher.AEAD
}

// NewEngine builds an engine from a hex encoded 256-bit key. A missing
// or malformed key is a configuration error and the caller is expected
// to refuse to start, serving unencrypted data is never an option.
func NewEngine(keyHex string) (*Engine, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("encryption key is not valid hex, %w", err)
	}

	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher, %w", err)
	}

	gcm, err := cipher.NewGCMWithNonceSize(block, IVSize)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize GCM, %w", err)
	}

	return &Engine{gcm: gcm}, nil
}

// Encrypt seals plaintext under a fresh random IV. Generating the IV
// here and never accepting one from the caller is what guarantees an
// IV is never reused under the same key.
func (e *Engine) Encrypt(plaintext []byte) (ciphertext, iv, tag []byte, err error) {
	iv = make([]byte, IVSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to generate IV, %w", err)
	}

	sealed := e.gcm.Seal(nil, iv, plaintext, nil)
	n := len(sealed) - TagSize

	return sealed[:n], iv, sealed[n:], nil
}

// Decrypt verifies the tag before returning anything. On mismatch the
// result is ErrIntegrityCheckFailed and no data.
func (e *Engine) Decrypt(ciphertext, iv, tag []byte) ([]byte, error) {
	if len(iv) != IVSize || len(tag) != TagSize {
		return nil, ErrIntegrityCheckFailed
	}

	sealed := make([]byte, 0, len(ciphertext)+TagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := e.gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return nil, ErrIntegrityCheckFailed
	}

	return plaintext, nil
}

// EncryptString seals a small metadata string and returns the whole
// envelope hex encoded, ready for database columns.
func (e *Engine) EncryptString(plain string) (cipherHex, ivHex, tagHex string, err error) {
	ciphertext, iv, tag, err := e.Encrypt([]byte(plain))
	if err != nil {
		return "", "", "", err
	}

	return hex.EncodeToString(ciphertext), hex.EncodeToString(iv), hex.EncodeToString(tag), nil
}

// DecryptString is the inverse of EncryptString.
func (e *Engine) DecryptString(cipherHex, ivHex, tagHex string) (string, error) {
	ciphertext, err := hex.DecodeString(cipherHex)
	if err != nil {
		return "", ErrIntegrityCheckFailed
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return "", ErrIntegrityCheckFailed
	}

	tag, err := hex.DecodeString(tagHex)
	if err != nil {
		return "", ErrIntegrityCheckFailed
	}

	plain, err := e.Decrypt(ciphertext, iv, tag)
	if err != nil {
		return "", err
	}

	return string(plain), nil
}
