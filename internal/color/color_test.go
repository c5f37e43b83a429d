package color_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/storytimeapp/storytime-server/internal/color"
)

var hexColor = regexp.MustCompile(`^#[0-9A-F]{6}$`)

func TestForBookDeterministic(t *testing.T) {
	a := color.ForBook("book-abc123")
	b := color.ForBook("book-abc123")
	assert.Equal(t, a, b)
}

func TestForBookFormat(t *testing.T) {
	for _, id := range []string{"book-1", "book-2", "seed-1", ""} {
		got := color.ForBook(id)
		assert.Regexp(t, hexColor, got, "id %q", id)
	}
}

func TestForBookVaries(t *testing.T) {
	seen := make(map[string]bool)
	for _, id := range []string{"book-a", "book-b", "book-c", "book-d", "book-e"} {
		seen[color.ForBook(id)] = true
	}
	// A hash collision across five IDs would be suspicious
	assert.Greater(t, len(seen), 1)
}
