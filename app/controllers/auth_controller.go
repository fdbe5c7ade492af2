package controllers

import (
	"log/slog"
	"net/http"

	"notebook/app/middleware"
	"notebook/app/models"
	"notebook/app/services"
)

// AuthController handles registration, login and the current user
type AuthController struct {
	authService *services.AuthService
	logger      *slog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, logger *slog.Logger) *AuthController {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthController{authService: authService, logger: logger}
}

// Register handles creating an account
func (ac *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if !decodeJSON(w, r, &creds) {
		return
	}

	res, err := ac.authService.Register(r.Context(), creds)
	if err != nil {
		sendServiceError(w, r, ac.logger, err)
		return
	}
	sendJSON(w, http.StatusCreated, res)
}

// Login handles exchanging credentials for a token
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if !decodeJSON(w, r, &creds) {
		return
	}

	res, err := ac.authService.Login(r.Context(), creds)
	if err != nil {
		sendServiceError(w, r, ac.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, res)
}

// Me handles returning the authenticated user
func (ac *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	user, err := ac.authService.CurrentUser(r.Context(), middleware.OwnerFromContext(r.Context()))
	if err != nil {
		sendServiceError(w, r, ac.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, user)
}
