package models

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// IdempotencyRecord stores the first response sent for a scoped idempotency
// key. ResponseStatus 0 means the winning request is still in flight.
// The unique index on ScopedKey is what serializes concurrent retries:
// at most one row (and therefore one execution) exists per scope within a
// TTL window.
type IdempotencyRecord struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	ScopedKey      string         `json:"scoped_key" gorm:"size:64;uniqueIndex;not null"`
	RawKey         string         `json:"raw_key" gorm:"size:128;not null"` // header value
	CallerScope    string         `json:"caller_scope" gorm:"size:64;not null"`
	Method         string         `json:"method" gorm:"size:10"`
	Path           string         `json:"path" gorm:"size:255"`
	Fingerprint    string         `json:"fingerprint" gorm:"size:64;not null"` // sha256 of normalized body
	ResponseStatus int            `json:"response_status"`                     // 0 => not completed yet
	ResponseBody   datatypes.JSON `json:"-"`
	ExpiresAt      time.Time      `json:"expires_at" gorm:"index;not null"`
	CreatedAt      time.Time      `json:"created_at"`
	CompletedAt    *time.Time     `json:"completed_at"`
}

// Expired reports whether the record's TTL window has elapsed. Expiry is
// evaluated at read time; expired rows are treated as absent.
func (r *IdempotencyRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// Pending reports whether the winning request has not committed a response yet.
func (r *IdempotencyRecord) Pending() bool {
	return r.ResponseStatus == 0
}

// ScopedIdempotencyKey derives the storage key for a raw Idempotency-Key
// header: the same raw key from two different callers or two different
// endpoints must never collide.
func ScopedIdempotencyKey(method, path, callerScope, rawKey string) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{'\n'})
	h.Write([]byte(path))
	h.Write([]byte{'\n'})
	h.Write([]byte(callerScope))
	h.Write([]byte{'\n'})
	h.Write([]byte(rawKey))
	return hex.EncodeToString(h.Sum(nil))
}

// BodyFingerprint hashes the normalized request body. JSON bodies are decoded
// and re-encoded so key order and insignificant whitespace do not change the
// fingerprint; anything else is hashed as-is.
func BodyFingerprint(body []byte) string {
	norm := bytes.TrimSpace(body)
	if len(norm) > 0 {
		var v any
		if json.Unmarshal(norm, &v) == nil {
			if b, err := json.Marshal(v); err == nil {
				norm = b
			}
		}
	}
	sum := sha256.Sum256(norm)
	return hex.EncodeToString(sum[:])
}
