package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"blogapp/internal/auth"
	apperrors "blogapp/internal/errors"
	"blogapp/internal/metrics"
	"blogapp/internal/model"
	"blogapp/internal/repository"
)

// Session is the result of a successful login.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	Remember  bool        `json:"remember"`
	User      *model.User `json:"user"`
}

// AuthService is the session authenticator.
type AuthService interface {
	Login(ctx context.Context, email, password string, remember bool) (*Session, error)
	// CurrentUser resolves a session token. Anything unusable yields nil.
	CurrentUser(ctx context.Context, token string) *model.User
	// CurrentUserFromClaims resolves already validated token claims.
	CurrentUserFromClaims(ctx context.Context, claims *auth.Claims) *model.User
	// Logout ends the session named by token. It is idempotent.
	Logout(ctx context.Context, token string) error
}

// SessionConfig sets session lifetimes.
type SessionConfig struct {
	TTL         time.Duration
	RememberTTL time.Duration
}

type authService struct {
	userRepo repository.UserRepository
	users    UserService
	hasher   auth.PasswordHasher
	tokens   *auth.TokenService
	sessions auth.SessionStore
	cfg      SessionConfig
	logger   *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	users UserService,
	hasher auth.PasswordHasher,
	tokens *auth.TokenService,
	sessions auth.SessionStore,
	cfg SessionConfig,
	logger *slog.Logger,
) AuthService {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.RememberTTL < cfg.TTL {
		cfg.RememberTTL = cfg.TTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		userRepo: userRepo,
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
	}
}

// Login verifies credentials and opens a session. An unknown email and a
// wrong password produce the same error.
func (s *authService) Login(ctx context.Context, email, password string, remember bool) (*Session, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil || !s.hasher.Verify(user.PasswordHash, password) {
		metrics.RecordLogin(metrics.LoginFailure)
		return nil, apperrors.ErrInvalidCredentials
	}

	ttl := s.cfg.TTL
	if remember {
		ttl = s.cfg.RememberTTL
	}

	sessionID, token, expiresAt, err := s.tokens.Issue(user.ID, ttl)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	if err := s.sessions.Save(ctx, sessionID, user.ID, ttl); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	metrics.RecordLogin(metrics.LoginSuccess)
	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID, "remember", remember)
	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		Remember:  remember,
		User:      user,
	}, nil
}

func (s *authService) CurrentUser(ctx context.Context, token string) *model.User {
	if token == "" {
		return nil
	}
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil
	}
	return s.CurrentUserFromClaims(ctx, claims)
}

func (s *authService) CurrentUserFromClaims(ctx context.Context, claims *auth.Claims) *model.User {
	if claims == nil || claims.ID == "" {
		return nil
	}

	userID, found, err := s.sessions.Lookup(ctx, claims.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "session lookup failed", "error", err)
		return nil
	}
	if !found || userID != claims.UserID {
		return nil
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrUserNotFound) {
			s.logger.WarnContext(ctx, "load session user failed", "user_id", userID, "error", err)
		}
		return nil
	}
	return user
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.tokens.Validate(token)
	if err != nil {
		// Expired or foreign tokens have nothing left to revoke.
		return nil
	}
	if err := s.sessions.Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.InfoContext(ctx, "user logged out", "user_id", claims.UserID)
	return nil
}
