package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	t.Run("removes duplicates and empties", func(t *testing.T) {
		got := DedupeAndTrim([]string{"  foo ", "bar", "foo", "", "  "})
		assert.Equal(t, []string{"foo", "bar"}, got)
	})

	t.Run("preserves order", func(t *testing.T) {
		got := DedupeAndTrim([]string{"c", "a", "b", "a"})
		assert.Equal(t, []string{"c", "a", "b"}, got)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, DedupeAndTrim(nil))
	})

	t.Run("case sensitive dedupe", func(t *testing.T) {
		got := DedupeAndTrim([]string{"Foo", "foo"})
		assert.Equal(t, []string{"Foo", "foo"}, got)
	})
}
