package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// CipherStream is the symmetric stream-cipher facade sitting in front of a
// Connection's byte queue. It is a no-op until the shared secret (derived
// during the login key exchange) is installed, matching the vanilla
// protocol's AES/CFB8 stream cipher.
//
// crypto/cipher's NewCFBEncrypter/NewCFBDecrypter implement full-block
// (CFB128) feedback; the wire protocol requires CFB8 (one byte of feedback
// per step), which the standard library does not expose directly. This
// rolls the 8-bit feedback register by hand over the raw crypto/aes block
// primitive, matching the shifting-register shape of the original rolling
// XOR cipher this type replaces.
type CipherStream struct {
	block cipher.Block

	encIV []byte // len == aes.BlockSize; encrypt-side feedback register
	decIV []byte // len == aes.BlockSize; decrypt-side feedback register

	enabled bool
}

// NewCipherStream creates a disabled CipherStream. Call Install to activate
// it once the shared secret has been decrypted.
func NewCipherStream() *CipherStream {
	return &CipherStream{}
}

// Install activates the cipher with the given 16-byte shared secret, used as
// both the AES key and (per the Minecraft protocol) the initial feedback
// register for both directions.
func (c *CipherStream) Install(sharedSecret []byte) error {
	if len(sharedSecret) != 16 {
		return fmt.Errorf("cipherstream: shared secret must be 16 bytes, got %d", len(sharedSecret))
	}

	block, err := aes.NewCipher(sharedSecret)
	if err != nil {
		return fmt.Errorf("cipherstream: creating AES cipher: %w", err)
	}

	c.block = block
	c.encIV = append([]byte(nil), sharedSecret...)
	c.decIV = append([]byte(nil), sharedSecret...)
	c.enabled = true
	return nil
}

// IsEnabled reports whether Install has been called.
func (c *CipherStream) IsEnabled() bool {
	return c.enabled
}

// Encrypt encrypts data in place. A no-op before Install.
func (c *CipherStream) Encrypt(data []byte) {
	if !c.enabled {
		return
	}
	var scratch [aes.BlockSize]byte
	for i, b := range data {
		c.block.Encrypt(scratch[:], c.encIV)
		cipherByte := b ^ scratch[0]
		data[i] = cipherByte
		c.encIV = append(c.encIV[1:], cipherByte)
	}
}

// Decrypt decrypts data in place. A no-op before Install.
func (c *CipherStream) Decrypt(data []byte) {
	if !c.enabled {
		return
	}
	var scratch [aes.BlockSize]byte
	for i, cipherByte := range data {
		c.block.Encrypt(scratch[:], c.decIV)
		plainByte := cipherByte ^ scratch[0]
		data[i] = plainByte
		c.decIV = append(c.decIV[1:], cipherByte)
	}
}
