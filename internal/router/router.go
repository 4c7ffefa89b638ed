package router

import (
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	"blogapp/internal/handler"
	"blogapp/internal/metrics"
	"blogapp/internal/service"
)

// Deps are the pieces the routes are built from.
type Deps struct {
	Logger        *slog.Logger
	Gatherer      prometheus.Gatherer
	SessionSecret []byte
	AuthService   service.AuthService
	AuthHandler   *handler.AuthHandler
	PostHandler   *handler.PostHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, deps Deps) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	e.Use(metrics.Middleware())
	e.Use(middleware.Recover())

	e.Validator = NewValidator()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if deps.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api",
		handler.ParseSessionToken(deps.SessionSecret),
		handler.LoadSession(deps.AuthService),
	)

	// Public routes
	api.POST("/auth/register", deps.AuthHandler.Register, handler.GuestOnly)
	api.POST("/auth/login", deps.AuthHandler.Login, handler.GuestOnly)
	api.POST("/auth/logout", deps.AuthHandler.Logout)
	api.GET("/posts", deps.PostHandler.ListPosts)
	api.GET("/posts/:id", deps.PostHandler.GetPost)
	api.GET("/users/:username/posts", deps.PostHandler.ListUserPosts)

	// Routes that need a logged in user. RequireUser is attached per route so
	// unknown /api paths stay 404 for anonymous clients.
	api.GET("/account", deps.AuthHandler.Account, handler.RequireUser)
	api.PUT("/account", deps.AuthHandler.UpdateAccount, handler.RequireUser)
	api.POST("/posts", deps.PostHandler.CreatePost, handler.RequireUser)
	api.PUT("/posts/:id", deps.PostHandler.UpdatePost, handler.RequireUser)
	api.DELETE("/posts/:id", deps.PostHandler.DeletePost, handler.RequireUser)
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				if v.Status >= http.StatusInternalServerError {
					level = slog.LevelError
				}
			}
			logger.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator reports field errors under their JSON names.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
