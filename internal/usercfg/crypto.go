package usercfg

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const gcmTagSize = 16

// CryptoContext owns the process-wide key used to protect config tokens at
// rest. It is constructed once at startup and injected into the components
// that need it; nothing else ever sees the key.
type CryptoContext struct {
	key       []byte
	generated bool
}

// NewCryptoContext builds a context from a base64-encoded 32-byte key.
// An empty key generates a random one; KeyGenerated reports that case so
// the caller can warn that tokens will not survive a restart.
func NewCryptoContext(base64Key string) (*CryptoContext, error) {
	base64Key = strings.TrimSpace(base64Key)
	if base64Key == "" {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate encryption key: %w", err)
		}
		return &CryptoContext{key: key, generated: true}, nil
	}
	key, err := base64.StdEncoding.DecodeString(base64Key)
	if err != nil {
		return nil, fmt.Errorf("decode encryption key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}
	return &CryptoContext{key: key}, nil
}

// KeyGenerated reports whether the key was randomly generated at startup.
func (c *CryptoContext) KeyGenerated() bool {
	return c.generated
}

// Encrypt seals plaintext with AES-256-GCM under a per-message salted key.
// The output format is "saltHex:ivHex:tagHex:cipherHex"; the message key is
// SHA-256(processKey || salt), so rotating the process key invalidates all
// outstanding tokens at once.
func (c *CryptoContext) Encrypt(plaintext string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	iv := make([]byte, 12)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	gcm, err := c.aead(salt)
	if err != nil {
		return "", err
	}

	sealed := gcm.Seal(nil, iv, []byte(plaintext), nil)
	if len(sealed) < gcmTagSize {
		return "", errors.New("sealed payload shorter than tag")
	}
	ciphertext := sealed[:len(sealed)-gcmTagSize]
	tag := sealed[len(sealed)-gcmTagSize:]

	return strings.Join([]string{
		hex.EncodeToString(salt),
		hex.EncodeToString(iv),
		hex.EncodeToString(tag),
		hex.EncodeToString(ciphertext),
	}, ":"), nil
}

// Decrypt reverses Encrypt. Any malformed or tampered input yields an error;
// callers treat that as "no credential available", never as a hard failure.
func (c *CryptoContext) Decrypt(encoded string) (string, error) {
	parts := strings.Split(encoded, ":")
	if len(parts) != 4 {
		return "", errors.New("invalid encrypted data format")
	}
	salt, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("decode salt: %w", err)
	}
	iv, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("decode iv: %w", err)
	}
	tag, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", fmt.Errorf("decode tag: %w", err)
	}
	ciphertext, err := hex.DecodeString(parts[3])
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}

	gcm, err := c.aead(salt)
	if err != nil {
		return "", err
	}

	plaintext, err := gcm.Open(nil, iv, append(ciphertext, tag...), nil)
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}
	return string(plaintext), nil
}

func (c *CryptoContext) aead(salt []byte) (cipher.AEAD, error) {
	derived := sha256.Sum256(append(append([]byte{}, c.key...), salt...))
	block, err := aes.NewCipher(derived[:])
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}
	return gcm, nil
}
