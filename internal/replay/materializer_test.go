package replay

import (
	"context"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterializeForceSemantics(t *testing.T) {
	fake := &fakeClient{
		fs: memfs.New(),
		trees: map[int]map[string]string{
			10: {"a.txt": "v1"},
			11: {"a.txt": "v2"},
		},
	}
	m := &Materializer{Source: fake, Log: discardLogger()}

	require.NoError(t, m.Materialize(context.Background(), 10, true))
	require.NoError(t, m.Materialize(context.Background(), 11, false))

	assert.Equal(t, []bool{true, false}, fake.forces)
}

func TestMaterializeIsIdempotent(t *testing.T) {
	fake := &fakeClient{
		fs:    memfs.New(),
		trees: map[int]map[string]string{10: {"a.txt": "v1", "b/c.txt": "v2"}},
	}
	m := &Materializer{Source: fake, Log: discardLogger()}

	readAll := func() map[string]string {
		out := map[string]string{}
		for _, p := range []string{"a.txt", "b/c.txt"} {
			data, err := util.ReadFile(fake.fs, p)
			require.NoError(t, err)
			out[p] = string(data)
		}
		return out
	}

	require.NoError(t, m.Materialize(context.Background(), 10, true))
	first := readAll()
	require.NoError(t, m.Materialize(context.Background(), 10, true))
	assert.Equal(t, first, readAll())
}

func TestMaterializeFailureIsFatal(t *testing.T) {
	fake := &fakeClient{
		fs:      memfs.New(),
		trees:   map[int]map[string]string{},
		failGet: map[int]bool{10: true},
	}
	m := &Materializer{Source: fake, Log: discardLogger()}

	err := m.Materialize(context.Background(), 10, true)
	var re *RetrievalError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 10, re.Changeset)
	assert.Contains(t, re.Error(), "10")
}
