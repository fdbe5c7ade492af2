package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"notebook/app/models"
	"notebook/app/repositories"

	"github.com/google/uuid"
)

// Invalidator drops cached responses of an owner.
type Invalidator interface {
	InvalidateOwner(owner string)
}

// ListFilters are the optional filters of a post listing.
type ListFilters struct {
	Category string
	Tag      string
	Search   string
}

// DeleteResult confirms a deletion.
type DeleteResult struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// PostService handles business logic for posts. Every operation is scoped to an owner.
type PostService struct {
	postRepo repositories.PostRepository
	cache    Invalidator
	logger   *slog.Logger
	now      func() time.Time
}

// NewPostService creates a new PostService. cache may be nil.
func NewPostService(postRepo repositories.PostRepository, cache Invalidator, logger *slog.Logger) *PostService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostService{
		postRepo: postRepo,
		cache:    cache,
		logger:   logger,
		now:      time.Now,
	}
}

// BuildQuery turns request filters into a store query for owner.
// The "All" category and blank values do not filter.
func BuildQuery(owner string, filters ListFilters) repositories.PostQuery {
	q := repositories.PostQuery{
		Owner:    owner,
		Category: strings.TrimSpace(filters.Category),
		Tag:      strings.TrimSpace(filters.Tag),
		Search:   strings.TrimSpace(filters.Search),
	}
	if q.Category == models.AllCategories {
		q.Category = ""
	}
	return q
}

// ListPosts returns the owner's posts matching filters, newest first.
func (s *PostService) ListPosts(ctx context.Context, owner string, filters ListFilters) ([]*models.Post, error) {
	if owner == "" {
		return nil, ErrUnauthorized
	}

	posts, err := s.postRepo.List(ctx, BuildQuery(owner, filters))
	if err != nil {
		return nil, &StoreError{Op: "list posts", Err: err}
	}
	return posts, nil
}

// Categories returns the distinct categories of the owner's posts.
// Read failures yield an empty list; see emptyOnFailure.
func (s *PostService) Categories(ctx context.Context, owner string) []string {
	if owner == "" {
		return []string{}
	}
	categories, err := s.postRepo.DistinctCategories(ctx, owner)
	return s.emptyOnFailure(ctx, "categories", categories, err)
}

// Tags returns the distinct tags across the owner's posts.
// Read failures yield an empty list; see emptyOnFailure.
func (s *PostService) Tags(ctx context.Context, owner string) []string {
	if owner == "" {
		return []string{}
	}
	tags, err := s.postRepo.DistinctTags(ctx, owner)
	return s.emptyOnFailure(ctx, "tags", tags, err)
}

// emptyOnFailure is the failure policy of aggregate reads: the error is
// logged and an empty list returned so clients are never blocked by it.
func (s *PostService) emptyOnFailure(ctx context.Context, what string, values []string, err error) []string {
	if err != nil {
		s.logger.WarnContext(ctx, "aggregate read failed, returning empty list",
			"aggregate", what, "error", err)
		return []string{}
	}
	if values == nil {
		return []string{}
	}
	return values
}

// GetPost retrieves a post of owner by ID
func (s *PostService) GetPost(ctx context.Context, owner, id string) (*models.Post, error) {
	if owner == "" {
		return nil, ErrUnauthorized
	}
	postID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, owner, postID)
	if err != nil {
		return nil, storeErr("get post", err)
	}
	return post, nil
}

// CreatePost validates the input and stores a new post owned by owner.
func (s *PostService) CreatePost(ctx context.Context, owner string, in models.PostInput) (*models.Post, error) {
	if owner == "" {
		return nil, ErrUnauthorized
	}
	in.Normalize()
	if errs := in.Validate(); len(errs) > 0 {
		return nil, errs
	}

	post := &models.Post{
		ID:    uuid.NewString(),
		Owner: owner,
	}
	post.Apply(in, s.now())
	post.BeforeCreate(post.UpdatedAt)

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, &StoreError{Op: "create post", Err: err}
	}
	s.invalidate(owner)
	return post, nil
}

// UpdatePost replaces the editable fields of an existing post of owner.
// Owner and creation time are preserved.
func (s *PostService) UpdatePost(ctx context.Context, owner, id string, in models.PostInput) (*models.Post, error) {
	if owner == "" {
		return nil, ErrUnauthorized
	}
	postID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	in.Normalize()
	if errs := in.Validate(); len(errs) > 0 {
		return nil, errs
	}

	// Verify post exists
	post, err := s.postRepo.GetByID(ctx, owner, postID)
	if err != nil {
		return nil, storeErr("get post", err)
	}

	post.Apply(in, s.now())
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, storeErr("update post", err)
	}
	s.invalidate(owner)
	return post, nil
}

// DeletePost removes a post of owner.
func (s *PostService) DeletePost(ctx context.Context, owner, id string) (*DeleteResult, error) {
	if owner == "" {
		return nil, ErrUnauthorized
	}
	postID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	if err := s.postRepo.Delete(ctx, owner, postID); err != nil {
		return nil, storeErr("delete post", err)
	}
	s.invalidate(owner)
	return &DeleteResult{Message: "Post deleted successfully", ID: postID}, nil
}

func (s *PostService) invalidate(owner string) {
	if s.cache != nil {
		s.cache.InvalidateOwner(owner)
	}
}

// parseID validates id and returns its canonical form.
func parseID(id string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", ErrInvalidID
	}
	return parsed.String(), nil
}
