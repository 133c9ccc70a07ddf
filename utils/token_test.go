package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateLinkToken(t *testing.T) {
	token, err := GenerateLinkToken()
	require.NoError(t, err)

	// 32 byte -> 43 ký tự base64 không padding
	assert.Len(t, token, 43)
	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9_-]+$`), token, "token phải URL-safe")
}

func TestGenerateLinkTokenUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		token, err := GenerateLinkToken()
		require.NoError(t, err)
		require.False(t, seen[token], "token bị trùng")
		seen[token] = true
	}
}
