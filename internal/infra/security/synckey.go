package security

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/core/domain"
)

const (
	syncKeyMinLength = 16
	syncKeyMaxLength = 128

	storageKeyPrefix = "kanadojo:sync:"
)

// ValidateSyncKey trims and validates a client-supplied sync key. The key is
// an opaque secret; only its length and character set are constrained.
func ValidateSyncKey(raw string) (string, error) {
	key := strings.TrimSpace(raw)
	if len(key) < syncKeyMinLength || len(key) > syncKeyMaxLength {
		return "", domain.ErrInvalidSyncKey
	}

	for _, r := range key {
		if !isSyncKeyRune(r) {
			return "", domain.ErrInvalidSyncKey
		}
	}

	return key, nil
}

func isSyncKeyRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '_' || r == ':' || r == '.' || r == '=' || r == '-':
		return true
	default:
		return false
	}
}

// StorageKey derives the store key for a sync key. The derivation is a
// deterministic one-way digest so the stored key never reveals the client
// secret.
func StorageKey(syncKey string) string {
	sum := sha256.Sum256([]byte(syncKey))
	return storageKeyPrefix + hex.EncodeToString(sum[:])
}
