package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const (
	// Key prefixes for different entity types
	PostKeyPrefix     = "post:"
	UserKeyPrefix     = "user:"
	UsernameKeyPrefix = "username:"
)

// postPrefix returns the key prefix shared by every post of owner.
func postPrefix(owner string) []byte {
	return []byte(PostKeyPrefix + owner + ":")
}

func postKey(owner, id string) []byte {
	return []byte(PostKeyPrefix + owner + ":" + id)
}

func userKey(id string) []byte {
	return []byte(UserKeyPrefix + id)
}

func usernameKey(username string) []byte {
	return []byte(UsernameKeyPrefix + username)
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}

// scanPrefix calls fn with the value of every key under prefix.
// The scan stops early when ctx is done.
func scanPrefix(ctx context.Context, txn *badger.Txn, prefix []byte, fn func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}

// exists reports whether key is present in the transaction's snapshot.
func exists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
