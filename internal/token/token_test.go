package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssue(t *testing.T) {
	now := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

	issued, err := Issue(now)
	require.NoError(t, err)

	assert.Len(t, issued.Raw, ByteLength*2)
	assert.Equal(t, Hash(issued.Raw), issued.Hash)
	assert.NotEqual(t, issued.Raw, issued.Hash)
	assert.Equal(t, now.Add(time.Hour), issued.ExpiresAt)
}

func TestIssueIsRandom(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		issued, err := Issue(time.Now())
		require.NoError(t, err)
		_, dup := seen[issued.Raw]
		require.False(t, dup)
		seen[issued.Raw] = struct{}{}
	}
}

func TestHashIsDeterministic(t *testing.T) {
	assert.Equal(t, Hash("abc"), Hash("abc"))
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", Hash("abc"))
	assert.NotEqual(t, Hash("abc"), Hash("abd"))
}
