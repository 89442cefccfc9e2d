// Package cache keeps raw model responses for the duration of a process
// so reruns over the same claims do not repeat paid calls. Replayed
// responses carry no token usage; only live calls are billed.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/opencouncil/crux/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// ResponseKey derives a stable key for one subtopic's model call: same
// model, same claims in the same order, same key.
func ResponseKey(modelName string, item model.SubtopicWorkItem) string {
	h := sha256.New()
	h.Write([]byte(modelName))
	h.Write([]byte{0})
	h.Write([]byte(item.Label))
	for _, claim := range item.Claims {
		h.Write([]byte{0})
		h.Write([]byte(claim.Speaker))
		h.Write([]byte{0})
		h.Write([]byte(claim.Text))
	}
	return "crux:v1:" + hex.EncodeToString(h.Sum(nil))
}
