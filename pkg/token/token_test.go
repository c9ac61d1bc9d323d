package token

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	tok, err := Generate()
	require.NoError(t, err)

	// 32 byte → 64 hex karakter
	assert.Len(t, tok, 64)
	_, err = hex.DecodeString(tok)
	assert.NoError(t, err)
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok, err := Generate()
		require.NoError(t, err)
		assert.False(t, seen[tok], "duplicate token generated")
		seen[tok] = true
	}
}

func TestHash(t *testing.T) {
	h := Hash("some-token")

	assert.Len(t, h, 64)
	assert.Equal(t, h, Hash("some-token"), "hash must be deterministic")
	assert.NotEqual(t, h, Hash("other-token"))
	assert.NotEqual(t, h, "some-token")
}
