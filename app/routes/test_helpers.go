package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"notebook/app/cache"
	"notebook/app/config"
	"notebook/app/logger"
	"notebook/app/repositories"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

const testSecret = "routes-test-secret-0123456789"

func setupTestStore(t *testing.T) *repositories.Store {
	t.Helper()
	store, err := repositories.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func setupTestRouter(t *testing.T) (*mux.Router, *repositories.Store, *cache.Cache) {
	t.Helper()
	store := setupTestStore(t)

	responses, err := cache.New(cache.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(responses.Close)

	router := SetupRoutes(Dependencies{
		Posts: store.Posts(),
		Users: store.Users(),
		Cache: responses,
		Auth: config.Auth{
			JWTSecret: testSecret,
			Issuer:    "notebook",
			TokenTTL:  time.Hour,
		},
		Logger: logger.Discard(),
	})
	return router, store, responses
}

func request(router http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// registerUser creates an account and returns its token.
func registerUser(t *testing.T, router http.Handler, username string) string {
	t.Helper()
	w := request(router, http.MethodPost, "/auth/register", "",
		`{"username":"`+username+`","password":"password123"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotEmpty(t, res.Token)
	return res.Token
}
