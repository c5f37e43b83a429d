package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		id, err := Generate("book")
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate id: %s", id)
		seen[id] = true
	}
}

func TestGenerateFormat(t *testing.T) {
	for _, prefix := range []string{"book", "page", "user", "token"} {
		t.Run(prefix, func(t *testing.T) {
			id, err := Generate(prefix)
			require.NoError(t, err)

			require.True(t, strings.HasPrefix(id, prefix+"-"))

			// Default NanoID length is 21, URL-safe alphabet only.
			random := strings.TrimPrefix(id, prefix+"-")
			assert.Len(t, random, 21)
			for _, c := range random {
				assert.True(t,
					(c >= 'A' && c <= 'Z') ||
						(c >= 'a' && c <= 'z') ||
						(c >= '0' && c <= '9') ||
						c == '_' || c == '-',
					"unexpected character %c in %s", c, id)
			}
		})
	}
}
