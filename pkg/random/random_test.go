package random

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRandomString(t *testing.T) {
	t.Run("generates_string_of_requested_length", func(t *testing.T) {
		for _, length := range []int{1, 3, 8, 20} {
			code, err := NewRandomString(length)
			require.NoError(t, err)
			assert.Len(t, code, length)
		}
	})

	t.Run("uses_only_alphabet_characters", func(t *testing.T) {
		code, err := NewRandomString(64)
		require.NoError(t, err)

		for _, r := range code {
			assert.True(t, strings.ContainsRune(Alphabet, r),
				"unexpected character %q in generated code", r)
		}
	})

	t.Run("rejects_non_positive_length", func(t *testing.T) {
		_, err := NewRandomString(0)
		assert.Error(t, err)

		_, err = NewRandomString(-1)
		assert.Error(t, err)
	})

	t.Run("consecutive_codes_differ", func(t *testing.T) {
		// Collisions on 16-char codes are astronomically unlikely
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			code, err := NewRandomString(16)
			require.NoError(t, err)
			assert.False(t, seen[code], "duplicate code generated: %s", code)
			seen[code] = true
		}
	})
}
