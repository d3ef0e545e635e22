package password

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// VerifiedKeyTTL is how long a successful scanner key check is remembered
const VerifiedKeyTTL = time.Minute

// Verifier is Verify with a short-lived memory of successful matches, so a
// scanner presenting the same key on every scan pays for bcrypt once per TTL.
// Mismatches are never remembered.
type Verifier struct {
	c *gocache.Cache
}

// NewVerifier creates a verifier that remembers matches for ttl
func NewVerifier(ttl time.Duration) *Verifier {
	return &Verifier{c: gocache.New(ttl, 2*ttl)}
}

// Verify compares a key with a hash
func (v *Verifier) Verify(key, hash string) bool {
	k := cacheKey(key, hash)
	if _, ok := v.c.Get(k); ok {
		return true
	}
	if !Verify(key, hash) {
		return false
	}
	v.c.SetDefault(k, struct{}{})
	return true
}

// cacheKey binds the presented key to the exact stored hash, so a rotated
// hash misses. The raw key is never kept.
func cacheKey(key, hash string) string {
	sum := sha256.Sum256([]byte(key))
	return hash + "|" + hex.EncodeToString(sum[:])
}
