package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"notebook/app/config"
	"notebook/app/models"
	"notebook/app/repositories/mock"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testAuthConfig = config.Auth{
	JWTSecret: "test-secret-0123456789",
	Issuer:    "notebook-test",
	TokenTTL:  time.Hour,
}

func newTestAuthService() *AuthService {
	s := NewAuthService(mock.NewUserRepository(), testAuthConfig)
	s.cost = bcrypt.MinCost
	return s
}

func TestAuthService(t *testing.T) {
	s := newTestAuthService()
	ctx := context.Background()

	var registered *AuthResult

	t.Run("register", func(t *testing.T) {
		var err error
		registered, err = s.Register(ctx, models.Credentials{Username: " Alice ", Password: "secret1"})
		require.NoError(t, err)
		assert.NotEmpty(t, registered.Token)
		assert.Equal(t, "alice", registered.User.Username)
		assert.NotEmpty(t, registered.User.ID)
	})

	t.Run("token verifies to user id", func(t *testing.T) {
		owner, err := s.Verify(registered.Token)
		require.NoError(t, err)
		assert.Equal(t, registered.User.ID, owner)
	})

	t.Run("duplicate username is case-insensitive", func(t *testing.T) {
		_, err := s.Register(ctx, models.Credentials{Username: "ALICE", Password: "another1"})
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("register validates", func(t *testing.T) {
		_, err := s.Register(ctx, models.Credentials{Username: "x", Password: "1"})
		var verrs models.ValidationErrors
		require.True(t, errors.As(err, &verrs))
		assert.Len(t, verrs, 2)
	})

	t.Run("login", func(t *testing.T) {
		res, err := s.Login(ctx, models.Credentials{Username: "alice", Password: "secret1"})
		require.NoError(t, err)
		owner, err := s.Verify(res.Token)
		require.NoError(t, err)
		assert.Equal(t, registered.User.ID, owner)
	})

	t.Run("login failures look the same", func(t *testing.T) {
		_, err := s.Login(ctx, models.Credentials{Username: "alice", Password: "wrong-password"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		_, err = s.Login(ctx, models.Credentials{Username: "nobody", Password: "secret1"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("login requires both fields", func(t *testing.T) {
		_, err := s.Login(ctx, models.Credentials{Username: "alice"})
		var verrs models.ValidationErrors
		assert.True(t, errors.As(err, &verrs))
	})

	t.Run("current user", func(t *testing.T) {
		u, err := s.CurrentUser(ctx, registered.User.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", u.Username)

		_, err = s.CurrentUser(ctx, "ghost")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestAuthServiceVerifyRejects(t *testing.T) {
	s := newTestAuthService()

	t.Run("empty token", func(t *testing.T) {
		_, err := s.Verify("")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := s.Verify("not.a.token")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := s.IssueToken("user-1")
		require.NoError(t, err)

		s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { s.now = time.Now }()

		_, err = s.Verify(token)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewAuthService(mock.NewUserRepository(), config.Auth{JWTSecret: "a-different-secret-value", Issuer: testAuthConfig.Issuer, TokenTTL: time.Hour})
		token, err := other.IssueToken("user-1")
		require.NoError(t, err)

		_, err = s.Verify(token)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewAuthService(mock.NewUserRepository(), config.Auth{JWTSecret: testAuthConfig.JWTSecret, Issuer: "someone-else", TokenTTL: time.Hour})
		token, err := other.IssueToken("user-1")
		require.NoError(t, err)

		_, err = s.Verify(token)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("alg none", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    testAuthConfig.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = s.Verify(token)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("missing subject", func(t *testing.T) {
		token, err := s.IssueToken("")
		require.NoError(t, err)

		_, err = s.Verify(token)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}
