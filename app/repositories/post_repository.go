package repositories

import (
	"context"
	"fmt"

	"notebook/app/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// BadgerPostRepository implements PostRepository using BadgerDB.
// Posts are stored under post:<owner>:<id> so owner scoping is a prefix scan.
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// Create stores a new post, assigning an ID when the post has none.
func (r *BadgerPostRepository) Create(ctx context.Context, post *models.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if post.ID == "" {
		post.ID = uuid.NewString()
	}

	return r.db.Update(func(txn *badger.Txn) error {
		key := postKey(post.Owner, post.ID)
		found, err := exists(txn, key)
		if err != nil {
			return err
		}
		if found {
			return ErrDuplicate
		}

		data, err := marshalEntity(post)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// GetByID retrieves a post of owner by ID
func (r *BadgerPostRepository) GetByID(ctx context.Context, owner, id string) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var post models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(postKey(owner, id))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return unmarshalEntity(val, &post)
		})
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List returns the owner's posts matching the query, newest first.
func (r *BadgerPostRepository) List(ctx context.Context, query PostQuery) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := r.db.View(func(txn *badger.Txn) error {
		return scanPrefix(ctx, txn, postPrefix(query.Owner), func(val []byte) error {
			var post models.Post
			if err := unmarshalEntity(val, &post); err != nil {
				return fmt.Errorf("failed to unmarshal post: %w", err)
			}
			if query.Matches(&post) {
				posts = append(posts, &post)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	SortNewestFirst(posts)
	return posts, nil
}

// Update overwrites an existing post of the same owner
func (r *BadgerPostRepository) Update(ctx context.Context, post *models.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(txn *badger.Txn) error {
		key := postKey(post.Owner, post.ID)

		// Verify post exists
		found, err := exists(txn, key)
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}

		data, err := marshalEntity(post)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// Delete deletes a post of owner by ID
func (r *BadgerPostRepository) Delete(ctx context.Context, owner, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(txn *badger.Txn) error {
		key := postKey(owner, id)

		found, err := exists(txn, key)
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}
		return txn.Delete(key)
	})
}

// DistinctCategories returns the sorted set of categories used by owner.
func (r *BadgerPostRepository) DistinctCategories(ctx context.Context, owner string) ([]string, error) {
	var categories []string
	err := r.scanOwner(ctx, owner, func(post *models.Post) {
		categories = append(categories, post.Category)
	})
	if err != nil {
		return nil, err
	}
	return distinct(categories), nil
}

// DistinctTags returns the sorted set of tags used across owner's posts.
func (r *BadgerPostRepository) DistinctTags(ctx context.Context, owner string) ([]string, error) {
	var tags []string
	err := r.scanOwner(ctx, owner, func(post *models.Post) {
		tags = append(tags, post.Tags...)
	})
	if err != nil {
		return nil, err
	}
	return distinct(tags), nil
}

func (r *BadgerPostRepository) scanOwner(ctx context.Context, owner string, fn func(*models.Post)) error {
	return r.db.View(func(txn *badger.Txn) error {
		return scanPrefix(ctx, txn, postPrefix(owner), func(val []byte) error {
			var post models.Post
			if err := unmarshalEntity(val, &post); err != nil {
				return err
			}
			fn(&post)
			return nil
		})
	})
}
