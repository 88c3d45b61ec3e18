package cryptobox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = strings.Repeat("ab", 32) // 32 bytes hex encoded

func TestEncryptDecryptRoundTrip(t *testing.T) {
	algorithms := []string{AlgorithmAESGCM, AlgorithmChaCha20Poly1305, AlgorithmXChaCha20Poly1305}
	payload := []byte("PK\x03\x04 archive bytes with \x00 binary content")

	for _, algo := range algorithms {
		t.Run(algo, func(t *testing.T) {
			codec, err := New(Options{Algorithm: algo, Key: testKey})
			require.NoError(t, err)

			blob, err := codec.Encrypt(payload)
			require.NoError(t, err)
			assert.NotEqual(t, payload, blob)
			assert.Len(t, blob, codec.NonceSize()+len(payload)+16, "nonce plus ciphertext plus tag")

			plain, err := codec.Decrypt(blob)
			require.NoError(t, err)
			assert.Equal(t, payload, plain)
		})
	}
}

func TestEncryptUsesFreshNonce(t *testing.T) {
	codec, err := New(Options{Key: testKey})
	require.NoError(t, err)

	payload := []byte("same plaintext")
	first, err := codec.Encrypt(payload)
	require.NoError(t, err)
	second, err := codec.Encrypt(payload)
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "two encryptions of the same payload must differ")

	for _, blob := range [][]byte{first, second} {
		plain, err := codec.Decrypt(blob)
		require.NoError(t, err)
		assert.Equal(t, payload, plain)
	}
}

func TestDecryptWithDifferentKey(t *testing.T) {
	writer, err := New(Options{Key: testKey})
	require.NoError(t, err)
	reader, err := New(Options{Key: strings.Repeat("cd", 32)})
	require.NoError(t, err)

	blob, err := writer.Encrypt([]byte("sealed before the key changed"))
	require.NoError(t, err)

	_, err = reader.Decrypt(blob)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestDecryptTamperedBlob(t *testing.T) {
	codec, err := New(Options{Key: testKey})
	require.NoError(t, err)

	blob, err := codec.Encrypt([]byte("payload"))
	require.NoError(t, err)
	blob[len(blob)-1] ^= 0xff

	_, err = codec.Decrypt(blob)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestDecryptShortBlob(t *testing.T) {
	codec, err := New(Options{Key: testKey})
	require.NoError(t, err)

	_, err = codec.Decrypt([]byte{0x01, 0x02})
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestPassphraseDerivationIsStable(t *testing.T) {
	first, err := New(Options{Passphrase: "correct horse battery staple"})
	require.NoError(t, err)
	second, err := New(Options{Passphrase: "correct horse battery staple"})
	require.NoError(t, err)

	blob, err := first.Encrypt([]byte("survives a restart"))
	require.NoError(t, err)

	plain, err := second.Decrypt(blob)
	require.NoError(t, err)
	assert.Equal(t, []byte("survives a restart"), plain)
}

func TestKeyWinsOverPassphrase(t *testing.T) {
	mixed, err := New(Options{Key: testKey, Passphrase: "ignored"})
	require.NoError(t, err)
	keyed, err := New(Options{Key: testKey})
	require.NoError(t, err)

	blob, err := mixed.Encrypt([]byte("data"))
	require.NoError(t, err)

	_, err = keyed.Decrypt(blob)
	assert.NoError(t, err)
}

func TestCustomNonceLength(t *testing.T) {
	codec, err := New(Options{Algorithm: AlgorithmAESGCM, NonceLength: 16, Key: testKey})
	require.NoError(t, err)
	assert.Equal(t, 16, codec.NonceSize())

	blob, err := codec.Encrypt([]byte("payload"))
	require.NoError(t, err)
	plain, err := codec.Decrypt(blob)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), plain)
}

func TestNewWithoutKeyMaterial(t *testing.T) {
	_, err := New(Options{})
	assert.ErrorIs(t, err, ErrNoKey)
}

func TestNewRejectsBadKey(t *testing.T) {
	_, err := New(Options{Key: "not hex"})
	assert.Error(t, err)

	// chacha variants require exactly 32 bytes
	_, err = New(Options{Algorithm: AlgorithmChaCha20Poly1305, Key: "abcd"})
	assert.Error(t, err)
}

func TestNewRejectsUnknownAlgorithm(t *testing.T) {
	_, err := New(Options{Algorithm: "rot13", Key: testKey})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported encryption algorithm")
}
