// Package cryptobox seals and opens payload blobs with one process-wide
// AEAD key. Blob layout is nonce || ciphertext; the nonce is random per call.
package cryptobox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Supported algorithm names.
const (
	AlgorithmAESGCM            = "aes-gcm"
	AlgorithmChaCha20Poly1305  = "chacha20poly1305"
	AlgorithmXChaCha20Poly1305 = "xchacha20poly1305"
)

var (
	// ErrNoKey is returned by New when neither a raw key nor a passphrase is configured.
	ErrNoKey = errors.New("encryption key material is not configured")
	// ErrDecrypt is returned when a blob cannot be authenticated and decrypted,
	// typically because the key changed since the blob was written.
	ErrDecrypt = errors.New("unable to decrypt payload")
)

// keyDerivationSalt keeps passphrase derivation stable across restarts; the
// passphrase itself is the only secret input.
var keyDerivationSalt = []byte("cipherdrop.blob.v1")

// Options selects the cipher and supplies key material. Key wins over
// Passphrase when both are set.
type Options struct {
	Algorithm   string // aes-gcm (default), chacha20poly1305, xchacha20poly1305
	NonceLength int    // aes-gcm only; 12 when zero
	Key         string // hex encoded: 16/24/32 bytes for aes-gcm, 32 for the chacha variants
	Passphrase  string // argon2id-derived 32-byte key
}

// Codec encrypts and decrypts artifact payloads. The key is fixed for the
// process lifetime; rotating it makes previously written blobs undecryptable,
// which Decrypt reports as ErrDecrypt.
type Codec struct {
	aead cipher.AEAD
}

// New builds a Codec from the configured algorithm and key material.
func New(opts Options) (*Codec, error) {
	key, err := resolveKey(opts)
	if err != nil {
		return nil, err
	}

	algo := opts.Algorithm
	if algo == "" {
		algo = AlgorithmAESGCM
	}

	var aead cipher.AEAD
	switch algo {
	case AlgorithmAESGCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("build aes cipher: %w", err)
		}
		nonceLen := opts.NonceLength
		if nonceLen == 0 {
			nonceLen = 12
		}
		if nonceLen == 12 {
			aead, err = cipher.NewGCM(block)
		} else {
			aead, err = cipher.NewGCMWithNonceSize(block, nonceLen)
		}
		if err != nil {
			return nil, fmt.Errorf("build aes-gcm aead: %w", err)
		}
	case AlgorithmChaCha20Poly1305:
		aead, err = chacha20poly1305.New(key)
		if err != nil {
			return nil, fmt.Errorf("build chacha20poly1305 aead: %w", err)
		}
	case AlgorithmXChaCha20Poly1305:
		aead, err = chacha20poly1305.NewX(key)
		if err != nil {
			return nil, fmt.Errorf("build xchacha20poly1305 aead: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported encryption algorithm %q", algo)
	}

	return &Codec{aead: aead}, nil
}

func resolveKey(opts Options) ([]byte, error) {
	if opts.Key != "" {
		key, err := hex.DecodeString(opts.Key)
		if err != nil {
			return nil, fmt.Errorf("decode encryption key: %w", err)
		}
		return key, nil
	}
	if opts.Passphrase != "" {
		return argon2.IDKey([]byte(opts.Passphrase), keyDerivationSalt, 1, 64*1024, 4, 32), nil
	}
	return nil, ErrNoKey
}

// NonceSize returns the nonce length prefixed to every blob.
func (c *Codec) NonceSize() int {
	return c.aead.NonceSize()
}

// Encrypt seals plain with a fresh random nonce and returns nonce || ciphertext.
func (c *Codec) Encrypt(plain []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, plain, nil), nil
}

// Decrypt splits the leading nonce off blob and opens the remainder. Blobs
// that are too short or fail authentication return ErrDecrypt.
func (c *Codec) Decrypt(blob []byte) ([]byte, error) {
	ns := c.aead.NonceSize()
	if len(blob) < ns {
		return nil, ErrDecrypt
	}
	plain, err := c.aead.Open(nil, blob[:ns], blob[ns:], nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plain, nil
}
