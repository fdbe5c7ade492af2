package repositories

import (
	"context"
	"testing"

	"notebook/app/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "post:owner-1:abc", string(postKey("owner-1", "abc")))
	assert.Equal(t, "post:owner-1:", string(postPrefix("owner-1")))
	assert.Equal(t, "user:u1", string(userKey("u1")))
	assert.Equal(t, "username:alice", string(usernameKey("alice")))
}

func TestScanPrefix(t *testing.T) {
	store := newTestStore(t)
	db := store.DB()

	err := db.Update(func(txn *badger.Txn) error {
		for _, k := range []string{"post:a:1", "post:a:2", "post:ab:3", "user:a"} {
			if err := txn.Set([]byte(k), []byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	t.Run("visits only the prefix", func(t *testing.T) {
		var seen []string
		err := db.View(func(txn *badger.Txn) error {
			return scanPrefix(context.Background(), txn, postPrefix("a"), func(val []byte) error {
				seen = append(seen, string(val))
				return nil
			})
		})
		assert.NoError(t, err)
		assert.Equal(t, []string{"post:a:1", "post:a:2"}, seen)
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := db.View(func(txn *badger.Txn) error {
			return scanPrefix(ctx, txn, postPrefix("a"), func(val []byte) error { return nil })
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestMarshalEntity(t *testing.T) {
	t.Run("marshal post", func(t *testing.T) {
		post := &models.Post{
			ID:      "p1",
			Title:   "Test Post",
			Content: "Test Content",
			Tags:    []string{"a"},
		}

		data, err := marshalEntity(post)
		assert.NoError(t, err)
		assert.NotEmpty(t, data)

		// Verify data can be unmarshaled back
		var unmarshaled models.Post
		err = unmarshalEntity(data, &unmarshaled)
		assert.NoError(t, err)
		assert.Equal(t, post.ID, unmarshaled.ID)
		assert.Equal(t, post.Title, unmarshaled.Title)
		assert.Equal(t, post.Tags, unmarshaled.Tags)
	})

	t.Run("marshal invalid entity", func(t *testing.T) {
		invalidEntity := struct {
			Ch chan int
		}{
			Ch: make(chan int),
		}

		_, err := marshalEntity(invalidEntity)
		assert.Error(t, err)
	})
}

func TestUnmarshalEntity(t *testing.T) {
	t.Run("unmarshal post", func(t *testing.T) {
		data := []byte(`{"id":"p1","title":"Test Post","content":"Test Content","owner":"u1"}`)
		var post models.Post
		err := unmarshalEntity(data, &post)
		assert.NoError(t, err)
		assert.Equal(t, "p1", post.ID)
		assert.Equal(t, "u1", post.Owner)
	})

	t.Run("unmarshal invalid JSON", func(t *testing.T) {
		data := []byte(`{"id":1,invalid json}`)
		var post models.Post
		err := unmarshalEntity(data, &post)
		assert.Error(t, err)
	})

	t.Run("unmarshal into nil", func(t *testing.T) {
		err := unmarshalEntity([]byte(`{"id":"x"}`), nil)
		assert.Error(t, err)
	})
}
