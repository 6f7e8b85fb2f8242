// Package auth provides authentication and authorization functionality.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// keyFileName is the file under the metadata directory holding the
// hex-encoded PASETO v4 symmetric key.
const keyFileName = "auth.key"

// PASETO v4 local tokens use a 256-bit symmetric key.
const keyBytes = 32

// LoadOrGenerateKey returns the access token signing key, creating and
// persisting a fresh one on first startup. The key lives at
// <metadataPath>/auth.key so tokens survive server restarts.
func LoadOrGenerateKey(metadataPath string) ([]byte, error) {
	keyPath := filepath.Join(metadataPath, keyFileName)

	//#nosec G304 -- key path is built from the configured metadata directory
	raw, err := os.ReadFile(keyPath)
	if err == nil {
		return decodeKey(strings.TrimSpace(string(raw)))
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read auth key: %w", err)
	}

	key := make([]byte, keyBytes)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate auth key: %w", err)
	}

	if err := os.MkdirAll(metadataPath, 0o700); err != nil {
		return nil, fmt.Errorf("create metadata directory: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("persist auth key: %w", err)
	}

	return key, nil
}

func decodeKey(keyHex string) ([]byte, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("auth key is not valid hex: %w", err)
	}
	if len(key) != keyBytes {
		return nil, fmt.Errorf("auth key must be %d bytes, got %d", keyBytes, len(key))
	}
	return key, nil
}
