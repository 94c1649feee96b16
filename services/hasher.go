package services

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/raghav0014/AI-Feedback/errs"
)

// ContentHasher computes deterministic content digests for tamper evidence.
// The digest is a hex SHA-256 over a canonical serialization of the input
// fields, prefixed with "0x". It is a content address, not a transaction.
type ContentHasher struct{}

func NewContentHasher() *ContentHasher {
	return &ContentHasher{}
}

// Hash serializes the record with lexicographically sorted keys, hashes it
// with SHA-256 and returns "0x" + hex. Identical input always yields an
// identical digest, which is what later verification recomputes against.
func (h *ContentHasher) Hash(record map[string]interface{}) (string, error) {
	// json.Marshal sorts map keys, which gives the canonical ordering.
	canonical, err := json.Marshal(record)
	if err != nil {
		return "", errs.Encoding("failed to serialize record for hashing", err)
	}

	sum := sha256.Sum256(canonical)
	return "0x" + hex.EncodeToString(sum[:]), nil
}

// HashReview hashes the tamper-evidence field set of a review.
func (h *ContentHasher) HashReview(title, content string, rating int, timestamp time.Time, authorID uint) (string, error) {
	return h.Hash(map[string]interface{}{
		"title":     title,
		"content":   content,
		"rating":    rating,
		"timestamp": timestamp.UTC().Format(time.RFC3339),
		"authorId":  authorID,
	})
}

// FallbackDigest returns a locally seeded pseudo-random digest. It is used
// only when serialization fails, so a user-facing operation never aborts on
// a hashing error. Explicitly non-cryptographic.
func (h *ContentHasher) FallbackDigest() string {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	buf := make([]byte, 32)
	rng.Read(buf)
	return fmt.Sprintf("0x%x", buf)
}
