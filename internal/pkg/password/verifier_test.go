package password

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func minCostHash(t *testing.T, key string) string {
	t.Helper()
	b, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.MinCost)
	require.NoError(t, err)
	return string(b)
}

func TestVerifierRemembersMatches(t *testing.T) {
	const key = "0123456789abcdef0123"
	hash := minCostHash(t, key)
	v := NewVerifier(time.Minute)

	assert.False(t, v.Verify("wrong-key-wrong-key", hash))
	assert.Zero(t, v.c.ItemCount(), "mismatches are not remembered")

	assert.True(t, v.Verify(key, hash))
	assert.True(t, v.Verify(key, hash))
	assert.Equal(t, 1, v.c.ItemCount())

	// A rotated hash is a different entry and is checked with bcrypt again
	rotated := minCostHash(t, "fedcba9876543210fedc")
	assert.False(t, v.Verify(key, rotated))
	assert.True(t, v.Verify("fedcba9876543210fedc", rotated))
	assert.Equal(t, 2, v.c.ItemCount())
}

func TestVerifierServesHitsWithoutBcrypt(t *testing.T) {
	v := NewVerifier(time.Minute)
	const bogus = "not-a-bcrypt-hash"

	assert.False(t, v.Verify("key", bogus))

	v.c.SetDefault(cacheKey("key", bogus), struct{}{})
	assert.True(t, v.Verify("key", bogus))
	assert.False(t, v.Verify("other", bogus))
}

func TestVerifierEntriesExpire(t *testing.T) {
	const key = "0123456789abcdef0123"
	hash := minCostHash(t, key)
	v := NewVerifier(20 * time.Millisecond)

	require.True(t, v.Verify(key, hash))
	_, ok := v.c.Get(cacheKey(key, hash))
	require.True(t, ok)

	time.Sleep(50 * time.Millisecond)
	_, ok = v.c.Get(cacheKey(key, hash))
	assert.False(t, ok)
	assert.True(t, v.Verify(key, hash))
}

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("0123456789abcdef0123")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, DefaultCost, cost)

	assert.True(t, Verify("0123456789abcdef0123", hash))
	assert.False(t, Verify("0123456789abcdef0124", hash))
	assert.False(t, ValidateKey("short"))

	k, err := GenerateKey(12)
	require.NoError(t, err)
	assert.Len(t, k, 24)
	assert.True(t, ValidateKey(k))
}
