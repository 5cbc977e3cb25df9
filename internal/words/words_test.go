package words

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmbeddedDefaults(t *testing.T) {
	b, err := Load("")
	require.NoError(t, err)

	stats := b.Stats()
	assert.Greater(t, stats[4], 0)
	assert.Greater(t, stats[5], 0)
	assert.Greater(t, stats[6], 0)
}

func TestIsValid_CaseInsensitiveExactLength(t *testing.T) {
	b, err := FromList([]string{"HELLO", "WORLD", "GAME"})
	require.NoError(t, err)

	assert.True(t, b.IsValid("HELLO"))
	assert.True(t, b.IsValid("hello"))
	assert.True(t, b.IsValid(" hello "))
	assert.True(t, b.IsValid("game"))
	assert.False(t, b.IsValid("HELL"))  // prefix, wrong bucket
	assert.False(t, b.IsValid("ZZZZZ")) // right length, unknown
}

func TestRandomWord_DrawsFromTheRightBucket(t *testing.T) {
	b, err := Load("")
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		w, err := b.RandomWord(5)
		require.NoError(t, err)
		assert.Len(t, w, 5)
		assert.True(t, b.IsValid(w))
	}
}

func TestRandomWord_NoWordsForLength(t *testing.T) {
	b, err := FromList([]string{"HELLO"})
	require.NoError(t, err)

	_, err = b.RandomWord(9)
	assert.True(t, errors.Is(err, ErrNoWordsForLength))
}

func TestFromList_NormalizesAndFilters(t *testing.T) {
	b, err := FromList([]string{"crane", "CRANE", "abc1", "", "# comment", "plate"})
	require.NoError(t, err)

	stats := b.Stats()
	assert.Equal(t, 2, stats[5]) // crane deduped, abc1 and comment dropped
	assert.True(t, b.IsValid("CRANE"))
	assert.True(t, b.IsValid("plate"))
}

func TestFromList_EmptyListFails(t *testing.T) {
	_, err := FromList([]string{"", "123"})
	assert.Error(t, err)
}
