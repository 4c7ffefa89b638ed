package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"blogapp/internal/auth"
	"blogapp/internal/cache"
	apperrors "blogapp/internal/errors"
	"blogapp/internal/metrics"
	"blogapp/internal/model"
	"blogapp/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// UserService is the credential store: registration, lookups and profile updates.
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	GetUser(ctx context.Context, id uint) (*model.User, error)
	UpdateProfile(ctx context.Context, userID uint, username, email string) (*model.User, error)
}

type userService struct {
	repo          repository.UserRepository
	hasher        auth.PasswordHasher
	cache         *cache.Client
	defaultAvatar string
}

// NewUserService builds a UserService with repository, hasher and cache.
func NewUserService(repo repository.UserRepository, hasher auth.PasswordHasher, cache *cache.Client, defaultAvatar string) UserService {
	if defaultAvatar == "" {
		defaultAvatar = model.DefaultAvatar
	}
	return &userService{
		repo:          repo,
		hasher:        hasher,
		cache:         cache,
		defaultAvatar: defaultAvatar,
	}
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

// Register creates a user with a hashed password. The lookups give a precise
// error in the common case; the unique indexes decide concurrent races.
func (s *userService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	if existing, err := s.repo.FindByUsername(ctx, username); err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	} else if existing != nil {
		return nil, apperrors.ErrDuplicateUsername
	}
	if existing, err := s.repo.FindByEmail(ctx, email); err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	} else if existing != nil {
		return nil, apperrors.ErrDuplicateEmail
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, passwordError(err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		AvatarPath:   s.defaultAvatar,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	metrics.RecordRegistration()
	return user, nil
}

func (s *userService) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.repo.FindByUsername(ctx, username)
}

func (s *userService) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.repo.FindByEmail(ctx, email)
}

// GetUser loads a user by id through the cache. Cached copies carry no password hash.
func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, userCacheTTL)
	}
	return user, nil
}

// UpdateProfile changes username and email. A value equal to the user's
// current one is never reported as a duplicate.
func (s *userService) UpdateProfile(ctx context.Context, userID uint, username, email string) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}

	if username != user.Username {
		if other, err := s.repo.FindByUsername(ctx, username); err != nil {
			return nil, fmt.Errorf("check username: %w", err)
		} else if other != nil && other.ID != user.ID {
			return nil, apperrors.ErrDuplicateUsername
		}
	}
	if email != user.Email {
		if other, err := s.repo.FindByEmail(ctx, email); err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		} else if other != nil && other.ID != user.ID {
			return nil, apperrors.ErrDuplicateEmail
		}
	}

	if username != user.Username || email != user.Email {
		if err := s.repo.UpdateProfile(ctx, user.ID, username, email); err != nil {
			return nil, err
		}
		_ = s.cache.Delete(ctx, s.cacheKey(user.ID))
	}

	user.Username = username
	user.Email = email
	return user, nil
}

// passwordError reports unusable passwords as a form error on the password field.
func passwordError(err error) error {
	switch {
	case errors.Is(err, auth.ErrPasswordTooLong):
		return &apperrors.ValidationError{Fields: map[string]string{
			"password": fmt.Sprintf("must be at most %d bytes long", auth.MaxPasswordBytes),
		}}
	case errors.Is(err, auth.ErrEmptyPassword):
		return &apperrors.ValidationError{Fields: map[string]string{"password": "this field is required"}}
	default:
		return err
	}
}
