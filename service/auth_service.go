package service

import (
	"database/sql"
	"errors"
	"fmt"
	"go-auth-api/config"
	"go-auth-api/logger"
	"go-auth-api/model"
	"go-auth-api/repository"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Expected authentication failures. Handlers map these to HTTP status
// codes; they are normal control flow, not exceptional conditions.
var (
	ErrUserNotFound       = errors.New("user does not exist")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrExpiredToken       = errors.New("token has expired")
	ErrMalformedToken     = errors.New("token is malformed")
	ErrTokenNotFound      = errors.New("refresh token not found")
)

// TokenPair is the login response: a short-lived access token and a
// long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
}

// AuthService owns the token lifecycle: issuing and verifying signed
// tokens, checking credentials, and tracking the single active refresh
// token per user.
type AuthService struct {
	userRepo  repository.IUserRepository
	tokenRepo repository.ITokenRepository
	ttl       config.TokenTTLProvider
}

func NewAuthService(userRepo repository.IUserRepository, tokenRepo repository.ITokenRepository, ttl config.TokenTTLProvider) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		ttl:       ttl,
	}
}

func getJwtKey() []byte {
	return []byte(config.AppConfig.JWT.SecretKey)
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// IssueToken signs a token carrying {user_id, email} plus issued-at and
// expiry timestamps in integer seconds.
func (s *AuthService) IssueToken(userID int, email string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := &model.AppClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(getJwtKey())
	if err != nil {
		logger.Log.WithError(err).WithField("email", email).Error("Failed to sign JWT")
		return "", fmt.Errorf("failed to sign token string: %w", err)
	}

	return tokenString, nil
}

// ParseToken verifies the signature and expiry of a token and returns its
// claims. A token is considered expired at the exact expiry instant, not
// one second later.
func (s *AuthService) ParseToken(tokenString string) (*model.AppClaims, error) {
	claims := &model.AppClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return getJwtKey(), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrMalformedToken
	}
	if !token.Valid || claims.ExpiresAt == nil {
		return nil, ErrMalformedToken
	}
	if !time.Now().Before(claims.ExpiresAt.Time) {
		return nil, ErrExpiredToken
	}

	return claims, nil
}

// VerifyCredentials checks an email/password pair against the user store.
// Unknown email and wrong password are reported as distinct errors to
// match the API contract.
func (s *AuthService) VerifyCredentials(email, password string) (*model.User, error) {
	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// Login verifies the credentials, issues a fresh access/refresh token pair
// and stores the refresh token, replacing any previous one for the user.
// Token lifetimes are read from the TTL provider on every call.
func (s *AuthService) Login(email, password string) (*TokenPair, error) {
	user, err := s.VerifyCredentials(email, password)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.IssueToken(user.ID, user.Email, s.ttl.AccessTokenTTL())
	if err != nil {
		return nil, err
	}

	refreshTTL := s.ttl.RefreshTokenTTL()
	refreshToken, err := s.IssueToken(user.ID, user.Email, refreshTTL)
	if err != nil {
		return nil, err
	}

	row := &model.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: time.Now().Add(refreshTTL),
	}
	if err := s.tokenRepo.Upsert(row); err != nil {
		if !errors.Is(err, repository.ErrDuplicateToken) {
			return nil, err
		}
		// A value collision indicates a generation defect, not a normal
		// path. Retry once with a freshly issued token.
		refreshToken, err = s.IssueToken(user.ID, user.Email, refreshTTL)
		if err != nil {
			return nil, err
		}
		row.Token = refreshToken
		if err := s.tokenRepo.Upsert(row); err != nil {
			return nil, err
		}
	}

	logger.Log.WithField("user_id", user.ID).Info("User logged in, refresh token stored")

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself is not rotated and is deliberately not checked
// against the stored row: a token deleted by logout keeps minting access
// tokens until its own expiry.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	claims, err := s.ParseToken(refreshToken)
	if err != nil {
		return "", err
	}

	// Re-read the user record so tokens of deleted users stop working.
	user, err := s.userRepo.GetUserByID(claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	return s.IssueToken(user.ID, user.Email, s.ttl.AccessTokenTTL())
}

// Logout revokes the refresh token by deleting its row. Logging out with a
// token that is not on file fails with ErrTokenNotFound; a repeated logout
// with the same token therefore fails after the first success.
func (s *AuthService) Logout(refreshToken string) error {
	deleted, err := s.tokenRepo.DeleteByToken(refreshToken)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrTokenNotFound
	}

	logger.Log.Info("User logged out, refresh token deleted")
	return nil
}
