package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"blogapp/internal/errors"
	"blogapp/internal/service"
)

// AuthHandler handles registration, login, logout and the account page.
type AuthHandler struct {
	authService  service.AuthService
	userService  service.UserService
	secureCookie bool
	logger       *slog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, userService service.UserService, secureCookie bool, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		authService:  authService,
		userService:  userService,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Username        string `json:"username" validate:"required,min=2,max=20"`
	Email           string `json:"email" validate:"required,email,max=100"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Remember bool   `json:"remember"`
}

// UpdateAccountRequest represents an account details update.
type UpdateAccountRequest struct {
	Username string `json:"username" validate:"required,min=2,max=20"`
	Email    string `json:"email" validate:"required,email,max=100"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userService.Register(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.MapErrorToHTTP(err).StatusCode == http.StatusInternalServerError {
			h.logger.ErrorContext(c.Request().Context(), "register failed", "error", err)
		}
		return respondError(err)
	}

	return c.JSON(http.StatusCreated, user)
}

// Login godoc
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} service.Session
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	session, err := h.authService.Login(c.Request().Context(), req.Email, req.Password, req.Remember)
	if err != nil {
		if errors.MapErrorToHTTP(err).StatusCode == http.StatusInternalServerError {
			h.logger.ErrorContext(c.Request().Context(), "login failed", "error", err)
		}
		return respondError(err)
	}

	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	if session.Remember {
		cookie.Expires = session.ExpiresAt
	}
	c.SetCookie(cookie)

	return c.JSON(http.StatusOK, session)
}

// Logout godoc
// @Summary Log out the current session
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context(), rawSessionToken(c)); err != nil {
		h.logger.ErrorContext(c.Request().Context(), "logout failed", "error", err)
		return respondError(err)
	}

	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
	return c.JSON(http.StatusOK, map[string]string{
		"message": "successfully logged out",
	})
}

// Account godoc
// @Summary Show the current user
// @Tags account
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Router /account [get]
func (h *AuthHandler) Account(c echo.Context) error {
	return c.JSON(http.StatusOK, CurrentUser(c))
}

// UpdateAccount godoc
// @Summary Update username and email
// @Tags account
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateAccountRequest true "Account details"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /account [put]
func (h *AuthHandler) UpdateAccount(c echo.Context) error {
	var req UpdateAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userService.UpdateProfile(c.Request().Context(), CurrentUser(c).ID, req.Username, req.Email)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, user)
}
