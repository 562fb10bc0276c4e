package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"

	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/models"
)

// KeySize — AES-256 only.
const KeySize = 32

var ErrBadKey = errors.New("cookie key must be 32 bytes")

// Encode seals an identity into an opaque cookie value:
// base64(nonce || AES-256-GCM(json payload)). A fresh nonce is drawn
// per call; the same payload never produces the same cookie twice.
// The URL-safe alphabet keeps the value stable under the query
// unescaping cookie readers apply ("+" would come back as a space).
func Encode(id models.Identity, key []byte) (string, error) {
	if len(key) != KeySize {
		return "", ErrBadKey
	}
	plain, err := json.Marshal(id)
	if err != nil {
		return "", err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := gcm.Seal(nonce, nonce, plain, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decode reverses Encode. Every failure mode — bad base64, truncated
// input, wrong key, tampered ciphertext, non-object payload — returns
// nil: a broken cookie is an anonymous visitor, never an error.
func Decode(raw string, key []byte) *models.Identity {
	if raw == "" || len(key) != KeySize {
		return nil
	}
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil
	}
	if len(data) < gcm.NonceSize() {
		return nil
	}
	nonce, ct := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil
	}

	// reject payloads that decrypt fine but are not an identity object
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(plain, &probe); err != nil {
		return nil
	}
	var id models.Identity
	if err := json.Unmarshal(plain, &id); err != nil {
		return nil
	}
	if id.ID <= 0 || !id.Role.Valid() {
		return nil
	}
	return &id
}
