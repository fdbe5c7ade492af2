package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notebook/app/config"
	"notebook/app/models"
	"notebook/app/repositories"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// AuthService registers users, issues tokens and verifies them.
type AuthService struct {
	userRepo repositories.UserRepository
	secret   []byte
	issuer   string
	ttl      time.Duration
	cost     int
	now      func() time.Time
}

// NewAuthService creates a new AuthService signing HS256 tokens with cfg.JWTSecret.
func NewAuthService(userRepo repositories.UserRepository, cfg config.Auth) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.Issuer,
		ttl:      cfg.TokenTTL,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// Register creates a user and returns a token for it.
func (s *AuthService) Register(ctx context.Context, creds models.Credentials) (*AuthResult, error) {
	creds.Normalize()
	if errs := creds.Validate(); len(errs) > 0 {
		return nil, errs
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     creds.Username,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, &StoreError{Op: "create user", Err: err}
	}

	return s.issue(user)
}

// Login checks the credentials and returns a fresh token.
// Unknown users and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, creds models.Credentials) (*AuthResult, error) {
	creds.Normalize()
	if creds.Username == "" || creds.Password == "" {
		return nil, models.ValidationErrors{{Field: "credentials", Message: "username and password are required"}}
	}

	user, err := s.userRepo.GetByUsername(ctx, creds.Username)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, &StoreError{Op: "get user", Err: err}
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

// CurrentUser returns the user with the given ID.
func (s *AuthService) CurrentUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, &StoreError{Op: "get user", Err: err}
	}
	return user, nil
}

// IssueToken signs a token whose subject is the user ID.
func (s *AuthService) IssueToken(userID string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks a token and returns the owner identifier it was issued for.
func (s *AuthService) Verify(token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrUnauthorized)
	}
	return claims.Subject, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}
