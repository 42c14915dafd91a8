package security

import (
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) string {
	t.Helper()

	key := make([]byte, KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)

	return hex.EncodeToString(key)
}

func TestNewEngine(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"valid key", testKey(t), false},
		{"empty key", "", true},
		{"not hex", "zz" + testKey(t)[2:], true},
		{"too short", testKey(t)[:32], true},
		{"too long", testKey(t) + "ab", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	e, err := NewEngine(testKey(t))
	require.NoError(t, err)

	for _, size := range []int{1, 16, 1024, 3072, 1 << 20} {
		plaintext := make([]byte, size)
		_, err := rand.Read(plaintext)
		require.NoError(t, err)

		ciphertext, iv, tag, err := e.Encrypt(plaintext)
		require.NoError(t, err)

		// No padding, the envelope lives out of band
		assert.Len(t, ciphertext, size)
		assert.Len(t, iv, IVSize)
		assert.Len(t, tag, TagSize)

		got, err := e.Decrypt(ciphertext, iv, tag)
		require.NoError(t, err)
		assert.Equal(t, plaintext, got)
	}
}

func TestFreshIVPerCall(t *testing.T) {
	e, err := NewEngine(testKey(t))
	require.NoError(t, err)

	plaintext := []byte("same message twice")

	c1, iv1, _, err := e.Encrypt(plaintext)
	require.NoError(t, err)
	c2, iv2, _, err := e.Encrypt(plaintext)
	require.NoError(t, err)

	assert.NotEqual(t, iv1, iv2)
	assert.NotEqual(t, c1, c2)
}

func TestTamperDetection(t *testing.T) {
	e, err := NewEngine(testKey(t))
	require.NoError(t, err)

	plaintext := []byte("do not touch this")

	ciphertext, iv, tag, err := e.Encrypt(plaintext)
	require.NoError(t, err)

	flip := func(b []byte, i int) []byte {
		out := make([]byte, len(b))
		copy(out, b)
		out[i] ^= 0x01
		return out
	}

	t.Run("ciphertext", func(t *testing.T) {
		for i := range ciphertext {
			_, err := e.Decrypt(flip(ciphertext, i), iv, tag)
			assert.ErrorIs(t, err, ErrIntegrityCheckFailed)
		}
	})

	t.Run("iv", func(t *testing.T) {
		for i := range iv {
			_, err := e.Decrypt(ciphertext, flip(iv, i), tag)
			assert.ErrorIs(t, err, ErrIntegrityCheckFailed)
		}
	})

	t.Run("tag", func(t *testing.T) {
		for i := range tag {
			_, err := e.Decrypt(ciphertext, iv, flip(tag, i))
			assert.ErrorIs(t, err, ErrIntegrityCheckFailed)
		}
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := e.Decrypt(ciphertext[:len(ciphertext)-1], iv, tag)
		assert.ErrorIs(t, err, ErrIntegrityCheckFailed)

		_, err = e.Decrypt(ciphertext, iv[:IVSize-1], tag)
		assert.ErrorIs(t, err, ErrIntegrityCheckFailed)

		_, err = e.Decrypt(ciphertext, iv, tag[:TagSize-1])
		assert.ErrorIs(t, err, ErrIntegrityCheckFailed)
	})
}

func TestDifferentKeyFails(t *testing.T) {
	e1, err := NewEngine(testKey(t))
	require.NoError(t, err)
	e2, err := NewEngine(testKey(t))
	require.NoError(t, err)

	ciphertext, iv, tag, err := e1.Encrypt([]byte("secret"))
	require.NoError(t, err)

	_, err = e2.Decrypt(ciphertext, iv, tag)
	assert.ErrorIs(t, err, ErrIntegrityCheckFailed)
}

func TestStringRoundTrip(t *testing.T) {
	e, err := NewEngine(testKey(t))
	require.NoError(t, err)

	cipherHex, ivHex, tagHex, err := e.EncryptString("My Photos")
	require.NoError(t, err)

	got, err := e.DecryptString(cipherHex, ivHex, tagHex)
	require.NoError(t, err)
	assert.Equal(t, "My Photos", got)

	_, err = e.DecryptString(cipherHex, ivHex, "00"+tagHex[2:])
	assert.ErrorIs(t, err, ErrIntegrityCheckFailed)

	_, err = e.DecryptString("not hex!", ivHex, tagHex)
	assert.ErrorIs(t, err, ErrIntegrityCheckFailed)
}
