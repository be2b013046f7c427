package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	mathrand "math/rand/v2"
)

// RSAKeyBits is the key size used for the login-stage key exchange, matching
// the vanilla Minecraft Java Edition protocol.
const RSAKeyBits = 1024

// RSAKeyPair holds the server's RSA-1024 key pair and its pre-marshalled
// public key, ready to be embedded in an EncryptionRequest packet.
type RSAKeyPair struct {
	PrivateKey   *rsa.PrivateKey
	PublicKeyDER []byte // X.509 SubjectPublicKeyInfo DER encoding
}

// GenerateRSAKeyPair generates an RSA-1024 key pair with exponent 65537 (F4)
// and marshals the public half to the DER form the client expects inside
// EncryptionRequest.
func GenerateRSAKeyPair() (*RSAKeyPair, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, RSAKeyBits)
	if err != nil {
		return nil, fmt.Errorf("generating RSA key: %w", err)
	}

	// Pre-compute CRT values (Dp, Dq, Qinv) so crypto/rsa.DecryptPKCS1v15 takes
	// the Chinese Remainder Theorem fast path instead of a plain modexp.
	privateKey.Precompute()

	der, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("marshalling RSA public key: %w", err)
	}

	return &RSAKeyPair{
		PrivateKey:   privateKey,
		PublicKeyDER: der,
	}, nil
}

// RSAKeyPairPoolSize is the number of RSA key pairs pre-generated at
// startup and shared across logins, amortising the RSA-1024 keygen cost off
// the per-connection login path.
const RSAKeyPairPoolSize = 10

// RSAKeyPairPool is a fixed pool of pre-generated RSA key pairs, one of
// which is handed out at random to each connection entering EncryptionRequest.
type RSAKeyPairPool struct {
	keys [RSAKeyPairPoolSize]*RSAKeyPair
}

// NewRSAKeyPairPool pre-generates RSAKeyPairPoolSize key pairs.
func NewRSAKeyPairPool() (*RSAKeyPairPool, error) {
	var pool RSAKeyPairPool
	for i := range pool.keys {
		kp, err := GenerateRSAKeyPair()
		if err != nil {
			return nil, fmt.Errorf("generating RSA key pair %d: %w", i, err)
		}
		pool.keys[i] = kp
	}
	return &pool, nil
}

// Random returns one of the pool's pre-generated key pairs, chosen uniformly
// at random. Safe for concurrent use: the returned *RSAKeyPair is read-only
// after construction.
func (p *RSAKeyPairPool) Random() *RSAKeyPair {
	return p.keys[mathrand.IntN(RSAKeyPairPoolSize)]
}

// DecryptPKCS1v15 decrypts a client-encrypted block (the shared secret or the
// verify token) using PKCS#1 v1.5 padding, as vanilla clients produce via
// Cipher.getInstance("RSA").
//
// crypto/rsa.DecryptPKCS1v15 already applies the same Garner's-algorithm CRT
// optimisation by hand when PrivateKey.Precomputed is populated, so there is
// no separate raw/no-padding fast path to hand-roll here.
func DecryptPKCS1v15(privateKey *rsa.PrivateKey, ciphertext []byte) ([]byte, error) {
	plaintext, err := rsa.DecryptPKCS1v15(rand.Reader, privateKey, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("RSA decrypt: %w", err)
	}
	return plaintext, nil
}
