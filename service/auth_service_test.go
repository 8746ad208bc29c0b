// file: service/auth_service_test.go

package service

import (
	"database/sql"
	"errors"
	"go-auth-api/config"
	"go-auth-api/logger"
	"go-auth-api/model"
	"go-auth-api/repository"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// TestMain runs setup before any tests in this package are executed.
func TestMain(m *testing.M) {
	logger.Init()
	config.AppConfig.JWT.SecretKey = "test-secret-key"
	os.Exit(m.Run())
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}
func (m *mockUserRepo) GetUserByEmail(email string) (*model.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
func (m *mockUserRepo) GetUserByID(id int) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
func (m *mockUserRepo) UpdateUser(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

type mockTokenRepo struct{ mock.Mock }

func (m *mockTokenRepo) Upsert(token *model.RefreshToken) error {
	args := m.Called(token)
	return args.Error(0)
}
func (m *mockTokenRepo) GetByToken(token string) (*model.RefreshToken, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RefreshToken), args.Error(1)
}
func (m *mockTokenRepo) DeleteByToken(token string) (bool, error) {
	args := m.Called(token)
	return args.Bool(0), args.Error(1)
}

// staticTTL is a mutable TTL provider for tests. Changing the fields
// simulates an admin edit of the dynamic config.
type staticTTL struct {
	access  time.Duration
	refresh time.Duration
}

func (s *staticTTL) AccessTokenTTL() time.Duration  { return s.access }
func (s *staticTTL) RefreshTokenTTL() time.Duration { return s.refresh }

func defaultTTL() *staticTTL {
	return &staticTTL{access: 15 * time.Minute, refresh: 7 * 24 * time.Hour}
}

// TestAuthService_HashAndCheckPassword ensures that password hashing and verification work correctly.
func TestAuthService_HashAndCheckPassword(t *testing.T) {
	password := "mySecretPassword123"

	hashedPassword, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() returned an unexpected error: %v", err)
	}

	if hashedPassword == password {
		t.Errorf("Hashed password should not be the same as the original password.")
	}

	if !CheckPasswordHash(password, hashedPassword) {
		t.Errorf("CheckPasswordHash() should have returned true for a matching password, but got false.")
	}

	if CheckPasswordHash("notMyPassword", hashedPassword) {
		t.Errorf("CheckPasswordHash() should have returned false for a non-matching password, but got true.")
	}
}

func TestAuthService_IssueAndParseToken(t *testing.T) {
	authService := NewAuthService(nil, nil, defaultTTL())

	ttl := 15 * time.Minute
	before := time.Now()
	tokenString, err := authService.IssueToken(42, "a@x.com", ttl)
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	claims, err := authService.ParseToken(tokenString)
	assert.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)

	issuedAt := claims.IssuedAt.Time
	expiresAt := claims.ExpiresAt.Time
	assert.WithinDuration(t, before, issuedAt, time.Second)
	assert.WithinDuration(t, issuedAt.Add(ttl), expiresAt, time.Second)
	assert.True(t, time.Now().Before(expiresAt))
}

func TestAuthService_ParseToken_Expired(t *testing.T) {
	authService := NewAuthService(nil, nil, defaultTTL())

	t.Run("past expiry", func(t *testing.T) {
		tokenString, err := authService.IssueToken(1, "a@x.com", -1*time.Minute)
		assert.NoError(t, err)

		_, err = authService.ParseToken(tokenString)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("expiry instant is inclusive", func(t *testing.T) {
		// A zero lifetime puts expires_at at the issue instant; the token
		// must already count as expired.
		tokenString, err := authService.IssueToken(1, "a@x.com", 0)
		assert.NoError(t, err)

		_, err = authService.ParseToken(tokenString)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}

func TestAuthService_ParseToken_Malformed(t *testing.T) {
	authService := NewAuthService(nil, nil, defaultTTL())

	t.Run("garbage input", func(t *testing.T) {
		_, err := authService.ParseToken("not-a-token")
		assert.ErrorIs(t, err, ErrMalformedToken)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		claims := &model.AppClaims{
			UserID: 1,
			Email:  "a@x.com",
			RegisteredClaims: jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(time.Now()),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("some-other-key"))
		assert.NoError(t, err)

		_, err = authService.ParseToken(foreign)
		assert.ErrorIs(t, err, ErrMalformedToken)
	})
}

func TestAuthService_Login(t *testing.T) {
	password := "password123"
	hashedPassword, err := HashPassword(password)
	assert.NoError(t, err)
	user := &model.User{ID: 7, Username: "tester", Email: "a@x.com", Password: hashedPassword}

	t.Run("success stores refresh token", func(t *testing.T) {
		mockUsers := new(mockUserRepo)
		mockTokens := new(mockTokenRepo)
		ttl := defaultTTL()
		authService := NewAuthService(mockUsers, mockTokens, ttl)

		mockUsers.On("GetUserByEmail", "a@x.com").Return(user, nil).Once()
		var stored *model.RefreshToken
		mockTokens.On("Upsert", mock.AnythingOfType("*model.RefreshToken")).Run(func(args mock.Arguments) {
			stored = args.Get(0).(*model.RefreshToken)
		}).Return(nil).Once()

		pair, err := authService.Login("a@x.com", password)
		assert.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)

		assert.Equal(t, 7, stored.UserID)
		assert.Equal(t, pair.RefreshToken, stored.Token)
		assert.WithinDuration(t, time.Now().Add(ttl.refresh), stored.ExpiresAt, 2*time.Second)

		// Both tokens carry the same claims but different lifetimes.
		accessClaims, err := authService.ParseToken(pair.AccessToken)
		assert.NoError(t, err)
		refreshClaims, err := authService.ParseToken(pair.RefreshToken)
		assert.NoError(t, err)
		assert.Equal(t, 7, accessClaims.UserID)
		assert.Equal(t, 7, refreshClaims.UserID)
		assert.True(t, refreshClaims.ExpiresAt.After(accessClaims.ExpiresAt.Time))

		mockUsers.AssertExpectations(t)
		mockTokens.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		mockUsers := new(mockUserRepo)
		mockTokens := new(mockTokenRepo)
		authService := NewAuthService(mockUsers, mockTokens, defaultTTL())

		mockUsers.On("GetUserByEmail", "a@x.com").Return(user, nil).Once()

		_, err := authService.Login("a@x.com", "wrongpassword")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		mockTokens.AssertNotCalled(t, "Upsert")
	})

	t.Run("unknown email", func(t *testing.T) {
		mockUsers := new(mockUserRepo)
		mockTokens := new(mockTokenRepo)
		authService := NewAuthService(mockUsers, mockTokens, defaultTTL())

		mockUsers.On("GetUserByEmail", "nobody@x.com").Return(nil, sql.ErrNoRows).Once()

		_, err := authService.Login("nobody@x.com", password)
		assert.ErrorIs(t, err, ErrUserNotFound)
		mockTokens.AssertNotCalled(t, "Upsert")
	})

	t.Run("retries once on duplicate token value", func(t *testing.T) {
		mockUsers := new(mockUserRepo)
		mockTokens := new(mockTokenRepo)
		authService := NewAuthService(mockUsers, mockTokens, defaultTTL())

		mockUsers.On("GetUserByEmail", "a@x.com").Return(user, nil).Once()
		mockTokens.On("Upsert", mock.AnythingOfType("*model.RefreshToken")).Return(repository.ErrDuplicateToken).Once()
		mockTokens.On("Upsert", mock.AnythingOfType("*model.RefreshToken")).Return(nil).Once()

		pair, err := authService.Login("a@x.com", password)
		assert.NoError(t, err)
		assert.NotEmpty(t, pair.RefreshToken)
		mockTokens.AssertNumberOfCalls(t, "Upsert", 2)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	user := &model.User{ID: 7, Username: "tester", Email: "a@x.com"}

	t.Run("mints a new access token without consulting the store", func(t *testing.T) {
		mockUsers := new(mockUserRepo)
		mockTokens := new(mockTokenRepo)
		authService := NewAuthService(mockUsers, mockTokens, defaultTTL())

		refreshToken, err := authService.IssueToken(user.ID, user.Email, 7*24*time.Hour)
		assert.NoError(t, err)

		mockUsers.On("GetUserByID", 7).Return(user, nil).Once()

		accessToken, err := authService.Refresh(refreshToken)
		assert.NoError(t, err)
		assert.NotEmpty(t, accessToken)

		claims, err := authService.ParseToken(accessToken)
		assert.NoError(t, err)
		assert.Equal(t, 7, claims.UserID)
		assert.Equal(t, "a@x.com", claims.Email)

		// A refresh token deleted by logout keeps working until it
		// expires: the store is never read here.
		mockTokens.AssertNotCalled(t, "GetByToken")
		mockUsers.AssertExpectations(t)
	})

	t.Run("user deleted since issuance", func(t *testing.T) {
		mockUsers := new(mockUserRepo)
		authService := NewAuthService(mockUsers, new(mockTokenRepo), defaultTTL())

		refreshToken, err := authService.IssueToken(99, "gone@x.com", time.Hour)
		assert.NoError(t, err)

		mockUsers.On("GetUserByID", 99).Return(nil, sql.ErrNoRows).Once()

		_, err = authService.Refresh(refreshToken)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("expired refresh token", func(t *testing.T) {
		authService := NewAuthService(new(mockUserRepo), new(mockTokenRepo), defaultTTL())

		refreshToken, err := authService.IssueToken(7, "a@x.com", -time.Minute)
		assert.NoError(t, err)

		_, err = authService.Refresh(refreshToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("malformed refresh token", func(t *testing.T) {
		authService := NewAuthService(new(mockUserRepo), new(mockTokenRepo), defaultTTL())

		_, err := authService.Refresh("garbage")
		assert.ErrorIs(t, err, ErrMalformedToken)
	})
}

func TestAuthService_Logout(t *testing.T) {
	t.Run("deletes the stored token", func(t *testing.T) {
		mockTokens := new(mockTokenRepo)
		authService := NewAuthService(nil, mockTokens, defaultTTL())

		mockTokens.On("DeleteByToken", "the-token").Return(true, nil).Once()

		assert.NoError(t, authService.Logout("the-token"))
		mockTokens.AssertExpectations(t)
	})

	t.Run("token not on file", func(t *testing.T) {
		mockTokens := new(mockTokenRepo)
		authService := NewAuthService(nil, mockTokens, defaultTTL())

		mockTokens.On("DeleteByToken", "unknown-token").Return(false, nil).Once()

		err := authService.Logout("unknown-token")
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("storage failure propagates", func(t *testing.T) {
		mockTokens := new(mockTokenRepo)
		authService := NewAuthService(nil, mockTokens, defaultTTL())

		storageErr := errors.New("connection reset")
		mockTokens.On("DeleteByToken", "the-token").Return(false, storageErr).Once()

		err := authService.Logout("the-token")
		assert.ErrorIs(t, err, storageErr)
	})
}

// TestAuthService_Login_TTLChange verifies that a changed access TTL takes
// effect on the next login without a restart, while tokens issued earlier
// keep their original expiry.
func TestAuthService_Login_TTLChange(t *testing.T) {
	password := "password123"
	hashedPassword, err := HashPassword(password)
	assert.NoError(t, err)
	user := &model.User{ID: 7, Email: "a@x.com", Password: hashedPassword}

	mockUsers := new(mockUserRepo)
	mockTokens := new(mockTokenRepo)
	ttl := &staticTTL{access: 900 * time.Second, refresh: 7 * 24 * time.Hour}
	authService := NewAuthService(mockUsers, mockTokens, ttl)

	mockUsers.On("GetUserByEmail", "a@x.com").Return(user, nil).Twice()
	mockTokens.On("Upsert", mock.AnythingOfType("*model.RefreshToken")).Return(nil).Twice()

	firstPair, err := authService.Login("a@x.com", password)
	assert.NoError(t, err)

	ttl.access = 60 * time.Second

	secondPair, err := authService.Login("a@x.com", password)
	assert.NoError(t, err)

	firstClaims, err := authService.ParseToken(firstPair.AccessToken)
	assert.NoError(t, err)
	secondClaims, err := authService.ParseToken(secondPair.AccessToken)
	assert.NoError(t, err)

	firstLifetime := firstClaims.ExpiresAt.Sub(firstClaims.IssuedAt.Time)
	secondLifetime := secondClaims.ExpiresAt.Sub(secondClaims.IssuedAt.Time)
	assert.InDelta(t, (900 * time.Second).Seconds(), firstLifetime.Seconds(), 1)
	assert.InDelta(t, (60 * time.Second).Seconds(), secondLifetime.Seconds(), 1)
}
