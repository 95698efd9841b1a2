package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastParams keeps hashing cheap in tests
var fastParams = Argon2idParams{Time: 1, MemoryKiB: 8, Parallelism: 1, KeyLen: 16, SaltLen: 8}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := hashPassword("secret123", fastParams)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))
	require.NotContains(t, hash, "secret123")

	ok, err := verifyPassword(hash, "secret123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = verifyPassword(hash, "secret124")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashesAreSalted(t *testing.T) {
	h1, err := hashPassword("same", fastParams)
	require.NoError(t, err)
	h2, err := hashPassword("same", fastParams)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestParsePasswordHashRoundTrip(t *testing.T) {
	hash, err := hashPassword("pw", fastParams)
	require.NoError(t, err)
	parsed, salt, key, err := parsePasswordHash(hash)
	require.NoError(t, err)
	assert.True(t, parsed.equal(fastParams))
	assert.Len(t, salt, int(fastParams.SaltLen))
	assert.Len(t, key, int(fastParams.KeyLen))
}

func TestParsePasswordHashRejectsGarbage(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plaintext",
		"$bcrypt$whatever",
		"$argon2id$v=18$m=8,t=1,p=1$AAAA$AAAA",
	} {
		_, _, _, err := parsePasswordHash(encoded)
		assert.Error(t, err, encoded)
	}
}
