package storage

import (
	"strings"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEntity struct {
	ID   string `json:"id"`
	Body string `json:"body"`
}

func (e *testEntity) GetID() string { return e.ID }

func setupTestDB(t *testing.T) *badger.DB {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil // Disable logging for tests

	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestStore(t *testing.T) *BadgerStore {
	codec, err := NewCodec(CodecOptions{MinSize: 64, Level: 2})
	require.NoError(t, err)
	return NewBadgerStore(setupTestDB(t), "test", codec)
}

func TestBadgerStore(t *testing.T) {
	store := newTestStore(t)

	t.Run("CreateAndGet", func(t *testing.T) {
		require.NoError(t, store.Create(&testEntity{ID: "a", Body: "small"}))

		var got testEntity
		require.NoError(t, store.Get("a", &got))
		assert.Equal(t, "small", got.Body)

		err := store.Create(&testEntity{ID: "a"})
		assert.ErrorIs(t, err, ErrExists)
	})

	t.Run("EmptyID", func(t *testing.T) {
		assert.Error(t, store.Create(&testEntity{}))
		assert.Error(t, store.Put(&testEntity{}))
	})

	t.Run("GetMissing", func(t *testing.T) {
		var got testEntity
		assert.ErrorIs(t, store.Get("missing", &got), ErrNotFound)
	})

	t.Run("Update", func(t *testing.T) {
		assert.ErrorIs(t, store.Update(&testEntity{ID: "missing"}), ErrNotFound)

		require.NoError(t, store.Update(&testEntity{ID: "a", Body: "changed"}))
		var got testEntity
		require.NoError(t, store.Get("a", &got))
		assert.Equal(t, "changed", got.Body)
	})

	t.Run("PutCompressesLargeValues", func(t *testing.T) {
		body := strings.Repeat("line of text\n", 200)
		require.NoError(t, store.Put(&testEntity{ID: "big", Body: body}))
		require.NoError(t, store.Put(&testEntity{ID: "big", Body: body + "x"}))

		var got testEntity
		require.NoError(t, store.Get("big", &got))
		assert.Equal(t, body+"x", got.Body)
	})

	t.Run("ListAndKeys", func(t *testing.T) {
		var all []testEntity
		require.NoError(t, store.List(&all))
		assert.Len(t, all, 2)

		keys, err := store.Keys()
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "big"}, keys)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete("a"))
		assert.ErrorIs(t, store.Delete("a"), ErrNotFound)
	})
}

func TestBadgerStore_PrefixIsolation(t *testing.T) {
	db := setupTestDB(t)
	a := NewBadgerStore(db, "a", nil)
	b := NewBadgerStore(db, "b", nil)

	require.NoError(t, a.Put(&testEntity{ID: "1"}))
	keys, err := b.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestCodec(t *testing.T) {
	codec, err := NewCodec(DefaultCodecOptions())
	require.NoError(t, err)

	small := []byte(`{"id":"x"}`)
	enc, err := codec.Encode(small)
	require.NoError(t, err)
	assert.Equal(t, small, enc)

	large := []byte(strings.Repeat("abcdefgh", 512))
	enc, err = codec.Encode(large)
	require.NoError(t, err)
	assert.Equal(t, zstdMagic, enc[:4])
	assert.Less(t, len(enc), len(large))

	dec, err := codec.Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, large, dec)

	dec, err = codec.Decode(small)
	require.NoError(t, err)
	assert.Equal(t, small, dec)
}

func TestOpen(t *testing.T) {
	db, err := Open("")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	dir := t.TempDir() + "/nested/db"
	db, err = Open(dir)
	require.NoError(t, err)
	store := NewBadgerStore(db, "test", nil)
	require.NoError(t, store.Put(&testEntity{ID: "a"}))
	require.NoError(t, db.Close())

	db, err = Open(dir)
	require.NoError(t, err)
	defer db.Close()
	var got testEntity
	assert.NoError(t, NewBadgerStore(db, "test", nil).Get("a", &got))
}
