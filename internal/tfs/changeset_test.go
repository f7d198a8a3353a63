package tfs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleChangeset = `Changeset: 42
User: CORP\jdoe
Date: Thursday, May 1, 2014 10:03:12 AM

Comment:
  Fix the widget
  and its tests

Items:
  edit $/Project/Dir/File.txt
  add  $/Project/docs/read me.txt
  delete $/Project/old.txt

Check-in Notes:
  Code Reviewer:
`

func TestParseChangeset(t *testing.T) {
	cs, err := ParseChangeset(sampleChangeset)
	require.NoError(t, err)

	assert.Equal(t, 42, cs.ID)
	assert.Equal(t, `CORP\jdoe`, cs.User)
	assert.Equal(t, "Fix the widget\nand its tests", cs.Comment)

	require.Len(t, cs.Items, 3)
	assert.Equal(t, Item{Kind: "edit", ServerPath: "$/Project/Dir/File.txt"}, cs.Items[0])
	assert.Equal(t, Item{Kind: "add", ServerPath: "$/Project/docs/read me.txt"}, cs.Items[1])
	assert.Equal(t, Item{Kind: "delete", ServerPath: "$/Project/old.txt"}, cs.Items[2])

	want := time.Date(2014, time.May, 1, 10, 3, 12, 0, time.UTC)
	assert.Equal(t, want, cs.Date)
}

func TestParseChangesetEdgeCases(t *testing.T) {
	t.Run("Missing Header Is Malformed", func(t *testing.T) {
		_, err := ParseChangeset("User: jdoe\nComment:\n  hi\n")
		assert.ErrorIs(t, err, ErrMalformedChangeset)
	})

	t.Run("Empty Comment And Items", func(t *testing.T) {
		cs, err := ParseChangeset("Changeset: 7\nUser: jdoe\nDate: 2020-01-02\n")
		require.NoError(t, err)
		assert.Equal(t, 7, cs.ID)
		assert.Empty(t, cs.Comment)
		assert.Empty(t, cs.Items)
	})

	t.Run("Comment Body May Contain Header Lookalikes", func(t *testing.T) {
		raw := "Changeset: 9\n" +
			"User: jdoe\n" +
			"\n" +
			"Comment:\n" +
			"  Deploy notes:\n" +
			"  Items:\n" +
			"  done\n" +
			"\n" +
			"Items:\n" +
			"  edit $/Project/a.txt\n"

		cs, err := ParseChangeset(raw)
		require.NoError(t, err)
		assert.Equal(t, "Deploy notes:\nItems:\ndone", cs.Comment)
		require.Len(t, cs.Items, 1)
		assert.Equal(t, "$/Project/a.txt", cs.Items[0].ServerPath)
	})

	t.Run("Unparseable Date Keeps Raw", func(t *testing.T) {
		cs, err := ParseChangeset("Changeset: 7\nDate: someday soon\n")
		require.NoError(t, err)
		assert.Equal(t, "someday soon", cs.RawDate)
		assert.True(t, cs.Date.IsZero())
	})
}

func TestRelativeItems(t *testing.T) {
	cs := &Changeset{
		Items: []Item{
			{Kind: "edit", ServerPath: "$/Project/Dir/File.txt"},
			{Kind: "add", ServerPath: "$/project/sub/other.txt"}, // server is case-insensitive
			{Kind: "edit", ServerPath: "$/Elsewhere/outside.txt"},
			{Kind: "edit", ServerPath: "$/Project"},
		},
	}

	rel := cs.RelativeItems("$/Project")
	assert.Equal(t, []string{"Dir/File.txt", "sub/other.txt"}, rel)

	// Trailing slash on the root changes nothing.
	assert.Equal(t, rel, cs.RelativeItems("$/Project/"))
}

func TestRelativeItemsSiblingRoots(t *testing.T) {
	// A changeset can touch several team projects at once; siblings
	// whose names extend the root must not leak in as relative paths.
	cs := &Changeset{
		Items: []Item{
			{Kind: "edit", ServerPath: "$/Project/inside.txt"},
			{Kind: "edit", ServerPath: "$/Project2/leaked.txt"},
			{Kind: "edit", ServerPath: "$/ProjectFoo/also.txt"},
		},
	}

	assert.Equal(t, []string{"inside.txt"}, cs.RelativeItems("$/Project"))
}
