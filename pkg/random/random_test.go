package random

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRandomString_Length(t *testing.T) {
	for _, length := range []int{1, 4, 6, 10} {
		s, err := NewRandomString(length)
		require.NoError(t, err)
		assert.Len(t, s, length)
	}
}

func TestNewRandomString_Alphabet(t *testing.T) {
	s, err := NewRandomString(256)
	require.NoError(t, err)

	for _, r := range s {
		assert.True(t, strings.ContainsRune(Alphabet, r), "unexpected symbol %q", r)
	}
}

func TestNewRandomString_InvalidLength(t *testing.T) {
	_, err := NewRandomString(0)
	assert.Error(t, err)

	_, err = NewRandomString(-1)
	assert.Error(t, err)
}

func TestNewRandomString_NoDuplicates(t *testing.T) {
	const samples = 10000

	seen := make(map[string]struct{}, samples)
	for i := 0; i < samples; i++ {
		s, err := NewRandomString(6)
		require.NoError(t, err)

		_, dup := seen[s]
		require.False(t, dup, "duplicate code %q after %d samples", s, i)
		seen[s] = struct{}{}
	}
}
