package security

import (
	"crypto/rand"
	"encoding/hex"
)

const secretKeyBytes = 32

// NewSecretKey returns a random hex-encoded key for server-to-server calls.
func NewSecretKey() (string, error) {
	b := make([]byte, secretKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
