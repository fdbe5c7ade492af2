package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"notebook/app/cache"
	"notebook/app/middleware"
	"notebook/app/models"
	"notebook/app/services"

	"github.com/gorilla/mux"
	"golang.org/x/sync/singleflight"
)

// ResponseCache stores encoded responses per owner. Payloads are stored
// only if the owner's generation has not moved since computation began.
type ResponseCache interface {
	Get(owner string, key cache.Key) ([]byte, bool)
	Generation(owner string) uint64
	PutIfGeneration(owner string, key cache.Key, gen uint64, payload []byte) bool
}

// PostController handles HTTP requests for posts
type PostController struct {
	postService *services.PostService
	cache       ResponseCache
	group       singleflight.Group
	logger      *slog.Logger
}

// NewPostController creates a new PostController. responses may be nil to disable caching.
func NewPostController(postService *services.PostService, responses ResponseCache, logger *slog.Logger) *PostController {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostController{
		postService: postService,
		cache:       responses,
		logger:      logger,
	}
}

// Index handles listing the caller's posts with optional category, tag and search filters
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filters := services.ListFilters{
		Category: query.Get("category"),
		Tag:      query.Get("tag"),
		Search:   query.Get("search"),
	}

	pc.serveCached(w, r, cache.ClassList, func(ctx context.Context, owner string) (interface{}, error) {
		return pc.postService.ListPosts(ctx, owner, filters)
	})
}

// Categories handles listing the distinct categories of the caller's posts
func (pc *PostController) Categories(w http.ResponseWriter, r *http.Request) {
	pc.serveCached(w, r, cache.ClassCategories, func(ctx context.Context, owner string) (interface{}, error) {
		return pc.postService.Categories(ctx, owner), nil
	})
}

// Tags handles listing the distinct tags of the caller's posts
func (pc *PostController) Tags(w http.ResponseWriter, r *http.Request) {
	pc.serveCached(w, r, cache.ClassTags, func(ctx context.Context, owner string) (interface{}, error) {
		return pc.postService.Tags(ctx, owner), nil
	})
}

// Show handles displaying a single post
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromContext(r.Context())
	post, err := pc.postService.GetPost(r.Context(), owner, mux.Vars(r)["id"])
	if err != nil {
		sendServiceError(w, r, pc.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Create handles creating a new post
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	var in models.PostInput
	if !decodeJSON(w, r, &in) {
		return
	}

	owner := middleware.OwnerFromContext(r.Context())
	post, err := pc.postService.CreatePost(r.Context(), owner, in)
	if err != nil {
		sendServiceError(w, r, pc.logger, err)
		return
	}
	sendJSON(w, http.StatusCreated, post)
}

// Update handles replacing the fields of an existing post
func (pc *PostController) Update(w http.ResponseWriter, r *http.Request) {
	var in models.PostInput
	if !decodeJSON(w, r, &in) {
		return
	}

	owner := middleware.OwnerFromContext(r.Context())
	post, err := pc.postService.UpdatePost(r.Context(), owner, mux.Vars(r)["id"], in)
	if err != nil {
		sendServiceError(w, r, pc.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Delete handles deleting a post
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromContext(r.Context())
	res, err := pc.postService.DeletePost(r.Context(), owner, mux.Vars(r)["id"])
	if err != nil {
		sendServiceError(w, r, pc.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, res)
}

// serveCached answers a read request from the response cache, computing and
// storing the payload on a miss. Concurrent misses for the same owner,
// generation and signature share one computation; a read arriving after a
// mutation never joins a computation that started before it.
func (pc *PostController) serveCached(w http.ResponseWriter, r *http.Request, class cache.Class,
	compute func(ctx context.Context, owner string) (interface{}, error)) {
	owner := middleware.OwnerFromContext(r.Context())
	key := cache.Key{Class: class, Signature: cache.Signature(r.Method, r.URL.Path, r.URL.Query())}

	var gen uint64
	if pc.cache != nil {
		if payload, ok := pc.cache.Get(owner, key); ok {
			w.Header().Set("X-Cache", "HIT")
			sendRaw(w, http.StatusOK, payload)
			return
		}
		gen = pc.cache.Generation(owner)
	}

	ctx := context.WithoutCancel(r.Context())
	flight := fmt.Sprintf("%s\x00%d\x00%s\x00%s", owner, gen, class, key.Signature)
	v, err, _ := pc.group.Do(flight, func() (interface{}, error) {
		data, err := compute(ctx, owner)
		if err != nil {
			return nil, err
		}
		payload, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		if pc.cache != nil && owner != "" {
			pc.cache.PutIfGeneration(owner, key, gen, payload)
		}
		return payload, nil
	})
	if err != nil {
		sendServiceError(w, r, pc.logger, err)
		return
	}

	w.Header().Set("X-Cache", "MISS")
	sendRaw(w, http.StatusOK, v.([]byte))
}
