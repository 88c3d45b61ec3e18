package artifacts

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

const identifierBytes = 16 // 128 bits of entropy

var identifierShape = regexp.MustCompile(`^[0-9a-f]{32}$`)

// NewIdentifier returns a fresh random artifact identifier: 32 lowercase hex
// characters. Uniqueness is enforced by the store's primary key, not here.
func NewIdentifier() (string, error) {
	buf := make([]byte, identifierBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate identifier: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Normalize strips path-like components from a client-supplied identifier so
// it can never address anything outside the storage namespace. The result
// still needs a ValidIdentifier check before use.
func Normalize(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	id = strings.ReplaceAll(id, "\\", "/")
	id = filepath.Base(id)
	if id == "." || id == ".." || id == "/" {
		return ""
	}
	return id
}

// ValidIdentifier reports whether id has the exact shape NewIdentifier
// produces. Anything else is rejected before touching storage.
func ValidIdentifier(id string) bool {
	return identifierShape.MatchString(id)
}
