package util

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns a 32-character random hex identifier.
func NewID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
