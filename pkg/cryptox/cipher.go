// Package cryptox implements the reversible password cipher used for stored
// credentials.
//
// Every call to Encrypt derives a fresh AES-256 key from the configured secret
// with PBKDF2-HMAC-SHA512 over a random salt, then seals the plaintext with
// AES-GCM under a random 16-byte IV. The encoded payload is
//
//	base64( salt | iv | tag | ciphertext )
//
// which matches the layout of ciphertexts already present in the users table.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha512"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	DefaultIterations = 10000
	DefaultSaltLength = 10

	ivLength  = 16
	tagLength = 16
	keyLength = 32
)

var (
	ErrEmptySecret = errors.New("cipher secret must not be empty")
	ErrDecryption  = errors.New("unable to decrypt value")
)

// Cipher encrypts and decrypts short secrets with a process-wide key.
// It is safe for concurrent use.
type Cipher struct {
	secret     []byte
	iterations int
	saltLength int
}

type Option func(*Cipher)

// WithIterations overrides the PBKDF2 iteration count.
func WithIterations(n int) Option {
	return func(c *Cipher) {
		if n > 0 {
			c.iterations = n
		}
	}
}

// WithSaltLength overrides the per-call salt size in bytes.
func WithSaltLength(n int) Option {
	return func(c *Cipher) {
		if n > 0 {
			c.saltLength = n
		}
	}
}

func NewCipher(secret string, opts ...Option) (*Cipher, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	c := &Cipher{
		secret:     []byte(secret),
		iterations: DefaultIterations,
		saltLength: DefaultSaltLength,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Cipher) Encrypt(plaintext string) (string, error) {
	salt := make([]byte, c.saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	iv := make([]byte, ivLength)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}

	gcm, err := c.gcm(salt)
	if err != nil {
		return "", err
	}

	// Seal returns ciphertext||tag; stored layout wants the tag first
	sealed := gcm.Seal(nil, iv, []byte(plaintext), nil)
	body, tag := sealed[:len(sealed)-tagLength], sealed[len(sealed)-tagLength:]

	out := make([]byte, 0, len(salt)+len(iv)+len(sealed))
	out = append(out, salt...)
	out = append(out, iv...)
	out = append(out, tag...)
	out = append(out, body...)
	return base64.StdEncoding.EncodeToString(out), nil
}

func (c *Cipher) Decrypt(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: invalid encoding", ErrDecryption)
	}
	if len(raw) < c.saltLength+ivLength+tagLength {
		return "", fmt.Errorf("%w: payload too short", ErrDecryption)
	}

	salt := raw[:c.saltLength]
	iv := raw[c.saltLength : c.saltLength+ivLength]
	tag := raw[c.saltLength+ivLength : c.saltLength+ivLength+tagLength]
	body := raw[c.saltLength+ivLength+tagLength:]

	gcm, err := c.gcm(salt)
	if err != nil {
		return "", err
	}

	sealed := make([]byte, 0, len(body)+len(tag))
	sealed = append(sealed, body...)
	sealed = append(sealed, tag...)

	plaintext, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: authentication failed", ErrDecryption)
	}
	return string(plaintext), nil
}

func (c *Cipher) gcm(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(c.secret, salt, c.iterations, keyLength, sha512.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCMWithNonceSize(block, ivLength)
}
