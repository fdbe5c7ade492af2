package repositories

import (
	"context"

	"notebook/app/models"
)

// PostRepository defines the interface for post data access.
// Every method is scoped to a single owner.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, owner, id string) (*models.Post, error)
	List(ctx context.Context, query PostQuery) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, owner, id string) error
	DistinctCategories(ctx context.Context, owner string) ([]string, error)
	DistinctTags(ctx context.Context, owner string) ([]string, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
