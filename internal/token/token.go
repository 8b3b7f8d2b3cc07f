package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	// ByteLength of the raw secret: 32 bytes, 256 bits of entropy.
	ByteLength = 32
	// TTL is the fixed lifetime of a reset token.
	TTL = time.Hour
)

// Issued is a freshly generated reset token. Raw goes to the user, Hash to storage.
type Issued struct {
	Raw       string
	Hash      string
	ExpiresAt time.Time
}

// Issue generates a URL-safe hex secret and its lookup hash, expiring one hour after now.
func Issue(now time.Time) (*Issued, error) {
	buf := make([]byte, ByteLength)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("read random bytes: %w", err)
	}

	raw := hex.EncodeToString(buf)
	return &Issued{
		Raw:       raw,
		Hash:      Hash(raw),
		ExpiresAt: now.Add(TTL),
	}, nil
}

// Hash is the SHA-256 hex digest used as the storage key.
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
