package mock

import (
	"context"
	"sort"
	"sync"

	"notebook/app/models"
	"notebook/app/repositories"

	"github.com/google/uuid"
)

// PostRepository is an in-memory PostRepository that counts store reads.
// Setting Err makes every call fail with it.
type PostRepository struct {
	posts map[string]*models.Post
	mutex sync.RWMutex
	reads int

	Err error
}

// UserRepository is an in-memory UserRepository.
type UserRepository struct {
	users map[string]*models.User
	mutex sync.RWMutex
}

func NewPostRepository() *PostRepository {
	return &PostRepository{
		posts: make(map[string]*models.Post),
	}
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users: make(map[string]*models.User),
	}
}

func (m *PostRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.posts = make(map[string]*models.Post)
	m.reads = 0
}

// Reads returns how many read queries reached the repository.
func (m *PostRepository) Reads() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.reads
}

// PostRepository implementation
func (m *PostRepository) Create(_ context.Context, post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if _, exists := m.posts[post.ID]; exists {
		return repositories.ErrDuplicate
	}
	m.posts[post.ID] = clonePost(post)
	return nil
}

func (m *PostRepository) GetByID(_ context.Context, owner, id string) (*models.Post, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.reads++
	if m.Err != nil {
		return nil, m.Err
	}

	post, exists := m.posts[id]
	if !exists || post.Owner != owner {
		return nil, repositories.ErrNotFound
	}
	return clonePost(post), nil
}

func (m *PostRepository) List(_ context.Context, query repositories.PostQuery) ([]*models.Post, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.reads++
	if m.Err != nil {
		return nil, m.Err
	}

	posts := []*models.Post{}
	for _, post := range m.posts {
		if query.Matches(post) {
			posts = append(posts, clonePost(post))
		}
	}
	repositories.SortNewestFirst(posts)
	return posts, nil
}

func (m *PostRepository) Update(_ context.Context, post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	existing, exists := m.posts[post.ID]
	if !exists || existing.Owner != post.Owner {
		return repositories.ErrNotFound
	}
	m.posts[post.ID] = clonePost(post)
	return nil
}

func (m *PostRepository) Delete(_ context.Context, owner, id string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	post, exists := m.posts[id]
	if !exists || post.Owner != owner {
		return repositories.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *PostRepository) DistinctCategories(_ context.Context, owner string) ([]string, error) {
	return m.distinct(owner, func(p *models.Post) []string { return []string{p.Category} })
}

func (m *PostRepository) DistinctTags(_ context.Context, owner string) ([]string, error) {
	return m.distinct(owner, func(p *models.Post) []string { return p.Tags })
}

func (m *PostRepository) distinct(owner string, values func(*models.Post) []string) ([]string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.reads++
	if m.Err != nil {
		return nil, m.Err
	}

	seen := make(map[string]struct{})
	out := []string{}
	for _, post := range m.posts {
		if post.Owner != owner {
			continue
		}
		for _, v := range values(post) {
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				out = append(out, v)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// UserRepository implementation
func (m *UserRepository) Create(_ context.Context, user *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, u := range m.users {
		if u.Username == user.Username {
			return repositories.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *UserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	u := *user
	return &u, nil
}

func (m *UserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, user := range m.users {
		if user.Username == username {
			u := *user
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func clonePost(p *models.Post) *models.Post {
	c := *p
	c.Tags = append([]string{}, p.Tags...)
	return &c
}
