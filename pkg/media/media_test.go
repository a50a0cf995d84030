package media_test

import (
	"testing"
	"time"

	"github.com/crnlicp/chronolock/pkg/media"
	"github.com/crnlicp/chronolock/pkg/storage"
	"github.com/crnlicp/chronolock/pkg/types"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) storage.Store {
	t.Helper()
	s, err := storage.NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestUploadRoundTrip(t *testing.T) {
	m := media.New(newStore(t))
	now := time.Unix(1000, 0)

	id, err := m.Start(2, now)
	require.NoError(t, err)

	require.NoError(t, m.PutChunk(id, 1, []byte("world")))
	require.NoError(t, m.PutChunk(id, 0, []byte("hello ")))

	_, err = m.Get(id)
	require.Equal(t, types.ErrTokenNotFound, types.KindOf(err))

	obj, err := m.Finish(id)
	require.NoError(t, err)
	require.True(t, obj.Finalized)

	data, err := m.Get(id)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(data))

	chunk, err := m.GetChunk(id, 6, 5)
	require.NoError(t, err)
	require.Equal(t, "world", string(chunk))

	beyond, err := m.GetChunk(id, 100, 5)
	require.NoError(t, err)
	require.Empty(t, beyond)
}

func TestFinishRejectsMissingChunks(t *testing.T) {
	m := media.New(newStore(t))
	id, err := m.Start(3, time.Unix(1, 0))
	require.NoError(t, err)
	require.NoError(t, m.PutChunk(id, 0, []byte("a")))

	_, err = m.Finish(id)
	require.Equal(t, types.ErrInvalidInput, types.KindOf(err))
}

func TestPutChunkRejectsOversizedObject(t *testing.T) {
	m := media.New(newStore(t))
	id, err := m.Start(1, time.Unix(1, 0))
	require.NoError(t, err)

	err = m.PutChunk(id, 0, make([]byte, media.MaxObjectSize+1))
	require.Equal(t, types.ErrInvalidInput, types.KindOf(err))
}

func TestReaperDeletesStaleUnfinishedUploads(t *testing.T) {
	store := newStore(t)
	m := media.New(store)

	createdAt := time.Unix(1000, 0)
	id, err := m.Start(1, createdAt)
	require.NoError(t, err)

	reaper := media.NewReaper(store, time.Minute)
	require.NoError(t, reaper.ReapOnce(createdAt.Add(2*time.Minute)))

	_, err = m.Get(id)
	require.Equal(t, types.ErrTokenNotFound, types.KindOf(err))
}
