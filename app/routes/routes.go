package routes

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"notebook/app/cache"
	"notebook/app/config"
	"notebook/app/controllers"
	"notebook/app/middleware"
	"notebook/app/repositories"
	"notebook/app/services"

	"github.com/gorilla/mux"
)

// Dependencies are the collaborators the router is built from.
// Cache may be nil to serve every read from the store.
type Dependencies struct {
	Posts  repositories.PostRepository
	Users  repositories.UserRepository
	Cache  *cache.Cache
	Auth   config.Auth
	Logger *slog.Logger
}

// SetupRoutes defines the application's routes and returns a router.
// Every route is served both at the root and under /api.
func SetupRoutes(deps Dependencies) *mux.Router {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	var (
		invalidator services.Invalidator
		responses   controllers.ResponseCache
	)
	if deps.Cache != nil {
		invalidator = deps.Cache
		responses = deps.Cache
	}

	postService := services.NewPostService(deps.Posts, invalidator, log)
	authService := services.NewAuthService(deps.Users, deps.Auth)

	postController := controllers.NewPostController(postService, responses, log)
	authController := controllers.NewAuthController(authService, log)

	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recoverer(log))
	router.Use(middleware.ContentTypeJSON)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
	})

	authenticate := middleware.Authenticate(authService)
	for _, r := range []*mux.Router{router.PathPrefix("/api").Subrouter(), router} {
		mount(r, postController, authController, authenticate)
	}

	return router
}

func mount(r *mux.Router, pc *controllers.PostController, ac *controllers.AuthController, authenticate mux.MiddlewareFunc) {
	r.HandleFunc("/health", health).Methods("GET")

	// Auth endpoints
	r.HandleFunc("/auth/register", ac.Register).Methods("POST")
	r.HandleFunc("/auth/login", ac.Login).Methods("POST")
	r.Handle("/auth/me", authenticate(http.HandlerFunc(ac.Me))).Methods("GET")

	// Posts endpoints; the aggregate paths must precede /{id}
	posts := r.PathPrefix("/posts").Subrouter()
	posts.Use(authenticate)
	posts.HandleFunc("", pc.Index).Methods("GET")
	posts.HandleFunc("", pc.Create).Methods("POST")
	posts.HandleFunc("/categories", pc.Categories).Methods("GET")
	posts.HandleFunc("/tags", pc.Tags).Methods("GET")
	posts.HandleFunc("/{id}", pc.Show).Methods("GET")
	posts.HandleFunc("/{id}", pc.Update).Methods("PUT")
	posts.HandleFunc("/{id}", pc.Delete).Methods("DELETE")
}

func health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
