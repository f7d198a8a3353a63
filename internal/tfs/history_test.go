package tfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHistory(t *testing.T) {
	t.Run("Skips Headers And Sorts", func(t *testing.T) {
		raw := "Changeset User   Date       Comment\n" +
			"--------- ------ ---------- --------\n" +
			"5 jdoe 2014-05-01 foo\n" +
			"3 jdoe 2014-04-28 bar\n" +
			"3 jdoe 2014-04-28 bar\n" +
			"not-a-number line\n" +
			"7 asmith 2014-05-02 baz\n"

		ids, err := ParseHistory(raw)
		require.NoError(t, err)
		assert.Equal(t, []int{3, 5, 7}, ids)
	})

	t.Run("Deduplicates", func(t *testing.T) {
		ids, err := ParseHistory("12 a\n12 b\n12 c\n9 d\n")
		require.NoError(t, err)
		assert.Equal(t, []int{9, 12}, ids)
	})

	t.Run("Blank Lines Ignored", func(t *testing.T) {
		ids, err := ParseHistory("\n\n42 jdoe\n\n")
		require.NoError(t, err)
		assert.Equal(t, []int{42}, ids)
	})

	t.Run("Negative And Zero IDs Skipped", func(t *testing.T) {
		ids, err := ParseHistory("0 zero\n-4 negative\n2 real\n")
		require.NoError(t, err)
		assert.Equal(t, []int{2}, ids)
	})

	t.Run("Empty History Is Fatal", func(t *testing.T) {
		_, err := ParseHistory("header only\n-------\n")
		assert.ErrorIs(t, err, ErrEmptyHistory)

		_, err = ParseHistory("")
		assert.ErrorIs(t, err, ErrEmptyHistory)
	})
}
