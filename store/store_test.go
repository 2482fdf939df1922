package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/42wim/matterdoge/model"
)

func openTemp(t *testing.T) *Directory {
	t.Helper()

	d, err := Open(filepath.Join(t.TempDir(), "directory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	return d
}

func TestPutFetch(t *testing.T) {
	d := openTemp(t)
	ctx := context.Background()

	require.NoError(t, d.Put(model.Payload{"id": "a1", "username": "Alice", "numFollowers": 3}))

	for _, ref := range []string{"a1", "alice", "ALICE"} {
		p, found, err := d.FetchUser(ctx, ref)
		require.NoError(t, err, ref)
		assert.True(t, found, ref)
		assert.Equal(t, "a1", p["id"], ref)
	}

	p, _, _ := d.FetchUser(ctx, "a1")
	u, err := model.ParseUser(p)
	require.NoError(t, err)
	assert.Equal(t, 3, u.NumFollowers)

	_, found, err := d.FetchUser(ctx, "ghost")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestRename(t *testing.T) {
	d := openTemp(t)
	ctx := context.Background()

	require.NoError(t, d.Put(model.Payload{"id": "a1", "username": "alice"}))
	require.NoError(t, d.Put(model.Payload{"id": "a1", "username": "alicia"}))

	_, found, _ := d.FetchUser(ctx, "alice")
	assert.False(t, found)

	p, found, _ := d.FetchUser(ctx, "alicia")
	assert.True(t, found)
	assert.Equal(t, "alicia", p["username"])
}

func TestPutWithoutID(t *testing.T) {
	d := openTemp(t)

	assert.ErrorIs(t, d.Put(model.Payload{"username": "alice"}), ErrNoID)
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "directory.db")

	d, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, d.Put(model.Payload{"id": "a1", "username": "alice"}))
	require.NoError(t, d.Close())

	d, err = Open(path)
	require.NoError(t, err)
	defer d.Close()

	_, found, err := d.FetchUser(context.Background(), "alice")
	assert.NoError(t, err)
	assert.True(t, found)
}

func TestFetchCancelled(t *testing.T) {
	d := openTemp(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, found, err := d.FetchUser(ctx, "a1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, found)
}
