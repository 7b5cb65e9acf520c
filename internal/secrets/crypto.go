// Package secrets encrypts sensitive configuration values with a
// password-derived AES-256-GCM key.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const (
	// SecretPrefix marks encrypted string fields in the config file.
	SecretPrefix = "enc:"

	payloadVersion = 1
	saltSize       = 16
	keySize        = 32

	// verifierPlaintext is sealed into the config so a wrong password is
	// detected before any real secret is touched.
	verifierPlaintext = "gencalc"
)

var (
	// ErrInvalidPassword is returned when the password cannot open the payload.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrInvalidPayload indicates the payload structure is malformed.
	ErrInvalidPayload = errors.New("invalid encrypted payload")
)

// scryptN is the scrypt cost parameter; tests lower it.
var scryptN = 1 << 15

// Payload is the on-disk form of an encrypted value.
type Payload struct {
	Version    int    `json:"version"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
}

// EncryptBytes seals data with a key derived from password and a fresh salt.
func EncryptBytes(data []byte, password string) (*Payload, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	return &Payload{
		Version:    payloadVersion,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(gcm.Seal(nil, nonce, data, nil)),
	}, nil
}

// DecryptBytes opens payload with password.
func DecryptBytes(payload *Payload, password string) ([]byte, error) {
	if payload == nil {
		return nil, ErrInvalidPayload
	}
	if payload.Version != payloadVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidPayload, payload.Version)
	}

	salt, err := decodeField("salt", payload.Salt)
	if err != nil {
		return nil, err
	}
	nonce, err := decodeField("nonce", payload.Nonce)
	if err != nil {
		return nil, err
	}
	ciphertext, err := decodeField("ciphertext", payload.Ciphertext)
	if err != nil {
		return nil, err
	}

	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}
	if len(nonce) != gcm.NonceSize() {
		return nil, fmt.Errorf("%w: invalid nonce size", ErrInvalidPayload)
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPassword, err)
	}
	return plaintext, nil
}

// IsEncrypted reports whether value carries the SecretPrefix.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, SecretPrefix)
}

// EncryptString returns value sealed and encoded with SecretPrefix. An empty
// value stays empty.
func EncryptString(value, password string) (string, error) {
	if value == "" {
		return "", nil
	}

	payload, err := EncryptBytes([]byte(value), password)
	if err != nil {
		return "", err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return SecretPrefix + base64.StdEncoding.EncodeToString(raw), nil
}

// DecryptString reverses EncryptString. Values without SecretPrefix are
// returned unchanged; the bool reports whether decryption was attempted.
func DecryptString(value, password string) (string, bool, error) {
	if !IsEncrypted(value) {
		return value, false, nil
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, SecretPrefix))
	if err != nil {
		return "", true, fmt.Errorf("%w: decode payload: %v", ErrInvalidPayload, err)
	}

	var payload Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", true, fmt.Errorf("%w: parse payload: %v", ErrInvalidPayload, err)
	}

	plaintext, err := DecryptBytes(&payload, password)
	if err != nil {
		return "", true, err
	}
	return string(plaintext), true, nil
}

// NewVerifier returns an encrypted marker that CheckVerifier accepts only for
// the same password.
func NewVerifier(password string) (string, error) {
	return EncryptString(verifierPlaintext, password)
}

// CheckVerifier reports ErrInvalidPassword when password does not open
// verifier. An empty verifier accepts any password.
func CheckVerifier(verifier, password string) error {
	if verifier == "" {
		return nil
	}
	plain, _, err := DecryptString(verifier, password)
	if err != nil {
		return err
	}
	if plain != verifierPlaintext {
		return ErrInvalidPassword
	}
	return nil
}

func decodeField(name, value string) ([]byte, error) {
	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrInvalidPayload, name, err)
	}
	return decoded, nil
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key([]byte(password), salt, scryptN, 8, 1, keySize)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}
	return gcm, nil
}
