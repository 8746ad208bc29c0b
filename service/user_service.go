package service

import (
	"context"
	"encoding/json"
	"fmt"
	"go-auth-api/model"
	"go-auth-api/repository"
	"time"
)

const userCacheTTL = 5 * time.Minute

// UserService handles user registration and profile reads/updates. User
// records are cached in Redis because every authenticated request loads
// the user behind the access token.
type UserService struct {
	userRepo repository.IUserRepository
	cache    ICacheClient
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.IUserRepository, cache ICacheClient) *UserService {
	return &UserService{
		userRepo: userRepo,
		cache:    cache,
	}
}

// Register creates a new user with a hashed password. No tokens are issued
// at registration. Duplicate emails surface as repository.ErrDuplicateEmail.
func (s *UserService) Register(username, email, password string) (*model.User, error) {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: username,
		Email:    email,
		Password: hashedPassword,
	}
	if err := s.userRepo.CreateUser(user); err != nil {
		return nil, err
	}

	return user, nil
}

func userCacheKey(id int) string {
	return fmt.Sprintf("user:%d", id)
}

// GetUserByID loads a user record, utilizing a cache-aside strategy.
// The cached copy never contains the password digest.
func (s *UserService) GetUserByID(id int) (*model.User, error) {
	cacheKey := userCacheKey(id)
	ctx := context.Background()

	// 1. Try the cache first.
	if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
		var user model.User
		if err := json.Unmarshal([]byte(cached), &user); err == nil {
			return &user, nil
		}
	}

	// 2. Cache miss. Fetch from the database.
	user, err := s.userRepo.GetUserByID(id)
	if err != nil {
		return nil, err // Returns sql.ErrNoRows if the user is gone.
	}

	// 3. Store the result for future requests. The json:"-" tag on the
	// password field keeps the digest out of the cache.
	if data, err := json.Marshal(user); err == nil {
		s.cache.Set(ctx, cacheKey, data, userCacheTTL)
	}

	return user, nil
}

// UpdateUser applies a partial update to username and/or email and
// invalidates the cached record.
func (s *UserService) UpdateUser(id int, username, email *string) (*model.User, error) {
	user, err := s.userRepo.GetUserByID(id)
	if err != nil {
		return nil, err
	}

	if username != nil {
		user.Username = *username
	}
	if email != nil {
		user.Email = *email
	}

	if err := s.userRepo.UpdateUser(user); err != nil {
		return nil, err
	}

	s.cache.Del(context.Background(), userCacheKey(id))

	return user, nil
}
