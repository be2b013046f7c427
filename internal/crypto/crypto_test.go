package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRSAKeyPair_DecryptRoundTrip(t *testing.T) {
	pair, err := GenerateRSAKeyPair()
	require.NoError(t, err)
	assert.NotEmpty(t, pair.PublicKeyDER)

	secret := make([]byte, 16)
	_, err = rand.Read(secret)
	require.NoError(t, err)

	ciphertext, err := rsa.EncryptPKCS1v15(rand.Reader, &pair.PrivateKey.PublicKey, secret)
	require.NoError(t, err)

	plaintext, err := DecryptPKCS1v15(pair.PrivateKey, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, secret, plaintext)
}

func TestRSAKeyPairPool_RandomReturnsUsableKeyPairs(t *testing.T) {
	pool, err := NewRSAKeyPairPool()
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		pair := pool.Random()
		require.NotNil(t, pair)
		assert.NotEmpty(t, pair.PublicKeyDER)
	}
}

func TestCipherStream_DisabledIsNoOp(t *testing.T) {
	cs := NewCipherStream()
	data := []byte("hello, world")
	original := append([]byte(nil), data...)

	cs.Encrypt(data)
	assert.Equal(t, original, data)
	assert.False(t, cs.IsEnabled())
}

func TestCipherStream_EncryptDecryptRoundTrip(t *testing.T) {
	secret := make([]byte, 16)
	_, err := rand.Read(secret)
	require.NoError(t, err)

	enc := NewCipherStream()
	require.NoError(t, enc.Install(secret))
	dec := NewCipherStream()
	require.NoError(t, dec.Install(secret))

	plaintext := []byte("the quick brown fox jumps over the lazy dog, 36 bytes and more")
	buf := append([]byte(nil), plaintext...)

	enc.Encrypt(buf)
	assert.NotEqual(t, plaintext, buf)

	dec.Decrypt(buf)
	assert.Equal(t, plaintext, buf)
}

func TestCipherStream_InstallRejectsWrongKeyLength(t *testing.T) {
	cs := NewCipherStream()
	err := cs.Install(make([]byte, 8))
	assert.Error(t, err)
}
