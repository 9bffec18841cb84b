package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// rawTokenBytes is the entropy of a download token before hex encoding.
const rawTokenBytes = 32

// DownloadToken is a single-use credential for one gated report download.
// Only the SHA-256 hash of the raw token is persisted; possession of the raw
// token is the sole credential.
type DownloadToken struct {
	ID        uuid.UUID  `db:"id"`
	TokenHash string     `db:"token_hash"`
	ObjectKey string     `db:"object_key"`
	ExpiresAt time.Time  `db:"expires_at"`
	UsedAt    *time.Time `db:"used_at"`
	LeadID    uuid.UUID  `db:"lead_id"`
	CreatedAt time.Time  `db:"created_at"`
}

// Expired reports whether the token's expiry has passed at now.
func (t *DownloadToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Used reports whether the token has already been redeemed.
func (t *DownloadToken) Used() bool {
	return t.UsedAt != nil
}

// NewRawToken generates a 64-hex-character raw download token.
func NewRawToken() (string, error) {
	buf := make([]byte, rawTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashToken returns the hex SHA-256 digest of a raw token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// NormalizeObjectKey strips any leading slash from an object-store key.
func NormalizeObjectKey(key string) string {
	return strings.TrimPrefix(key, "/")
}
