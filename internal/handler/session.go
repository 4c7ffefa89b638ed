package handler

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"blogapp/internal/auth"
	"blogapp/internal/errors"
	"blogapp/internal/model"
	"blogapp/internal/service"
)

// SessionCookieName is the cookie carrying the session token for browser clients.
const SessionCookieName = "session"

const (
	tokenContextKey = "session_token"
	userContextKey  = "current_user"
)

// ParseSessionToken validates a bearer header or session cookie when present.
// Requests without a usable token continue as anonymous.
func ParseSessionToken(secret []byte) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:  secret,
		ContextKey:  tokenContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ,cookie:" + SessionCookieName,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return nil
		},
		ContinueOnIgnoredError: true,
	})
}

// LoadSession resolves the parsed token to the current user.
func LoadSession(authService service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token, ok := c.Get(tokenContextKey).(*jwt.Token); ok {
				if claims, ok := token.Claims.(*auth.Claims); ok {
					if user := authService.CurrentUserFromClaims(c.Request().Context(), claims); user != nil {
						c.Set(userContextKey, user)
					}
				}
			}
			return next(c)
		}
	}
}

// RequireUser rejects anonymous requests.
func RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if CurrentUser(c) == nil {
			return respondError(errors.ErrUnauthenticated)
		}
		return next(c)
	}
}

// GuestOnly rejects requests that already carry a live session.
func GuestOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if CurrentUser(c) != nil {
			return respondError(errors.ErrAlreadyAuthenticated)
		}
		return next(c)
	}
}

// CurrentUser returns the authenticated user or nil for anonymous requests.
func CurrentUser(c echo.Context) *model.User {
	user, _ := c.Get(userContextKey).(*model.User)
	return user
}

func rawSessionToken(c echo.Context) string {
	if token, ok := c.Get(tokenContextKey).(*jwt.Token); ok {
		return token.Raw
	}
	return ""
}

func respondError(err error) *echo.HTTPError {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_BODY",
		})
	}
	if err := c.Validate(req); err != nil {
		return respondError(errors.NewValidationError(err))
	}
	return nil
}
