// Package crypto implements the address envelope: AES-256-GCM encryption
// keyed by a scrypt-derived secret, plus the deterministic HMAC used for
// indexed lookups without decryption.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const (
	scryptSalt = "payment-salt"
	scryptN    = 32768
	scryptR    = 8
	scryptP    = 1
	keyLen     = 32
	ivLen      = 16
)

// Envelope derives encryption and HMAC key material from a single process
// secret (SESSION_SECRET) and performs the address encrypt/decrypt/HMAC
// operations named in the cryptographic envelope design.
type Envelope struct {
	sessionSecret []byte
	encKey        []byte
}

func NewEnvelope(sessionSecret string) (*Envelope, error) {
	key, err := scrypt.Key([]byte(sessionSecret), []byte(scryptSalt), scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return nil, fmt.Errorf("crypto.NewEnvelope: derive key: %w", err)
	}
	return &Envelope{
		sessionSecret: []byte(sessionSecret),
		encKey:        key,
	}, nil
}

// Encrypt produces the "<iv_hex>:<auth_tag_hex>:<ciphertext_hex>" envelope
// for the already-normalized address.
func (e *Envelope) Encrypt(normalizedAddress string) (string, error) {
	block, err := aes.NewCipher(e.encKey)
	if err != nil {
		return "", fmt.Errorf("crypto.Encrypt: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithTagSize(block, 16)
	if err != nil {
		return "", fmt.Errorf("crypto.Encrypt: new gcm: %w", err)
	}
	iv := make([]byte, ivLen)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("crypto.Encrypt: read iv: %w", err)
	}

	sealed := gcm.Seal(nil, iv[:gcm.NonceSize()], []byte(normalizedAddress), nil)
	ciphertext := sealed[:len(sealed)-gcm.Overhead()]
	tag := sealed[len(sealed)-gcm.Overhead():]

	return strings.Join([]string{
		hex.EncodeToString(iv[:gcm.NonceSize()]),
		hex.EncodeToString(tag),
		hex.EncodeToString(ciphertext),
	}, ":"), nil
}

// Decrypt recovers the normalized address from an envelope produced by Encrypt.
func (e *Envelope) Decrypt(envelope string) (string, error) {
	parts := strings.Split(envelope, ":")
	if len(parts) != 3 {
		return "", fmt.Errorf("crypto.Decrypt: malformed envelope")
	}
	iv, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("crypto.Decrypt: decode iv: %w", err)
	}
	tag, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("crypto.Decrypt: decode tag: %w", err)
	}
	ciphertext, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", fmt.Errorf("crypto.Decrypt: decode ciphertext: %w", err)
	}

	block, err := aes.NewCipher(e.encKey)
	if err != nil {
		return "", fmt.Errorf("crypto.Decrypt: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithTagSize(block, len(tag))
	if err != nil {
		return "", fmt.Errorf("crypto.Decrypt: new gcm: %w", err)
	}

	sealed := append(ciphertext, tag...)
	plaintext, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("crypto.Decrypt: open: %w", err)
	}
	return string(plaintext), nil
}

// HMAC computes the deterministic lookup digest for a normalized address.
func (e *Envelope) HMAC(normalizedAddress string) string {
	mac := hmac.New(sha256.New, e.sessionSecret)
	mac.Write([]byte(normalizedAddress))
	return hex.EncodeToString(mac.Sum(nil))
}

// WebhookSignature computes the X-Webhook-Signature header value for a
// given tenant webhook secret and serialized payload.
func WebhookSignature(webhookSecret, payload string) string {
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
