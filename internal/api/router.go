package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/circuitcraft/academy-admin/internal/api/handler"
	"github.com/circuitcraft/academy-admin/internal/api/middleware"
	"github.com/circuitcraft/academy-admin/internal/core/domain"
	"github.com/circuitcraft/academy-admin/internal/core/ports"
)

// Dependencies are the services the HTTP layer routes to.
type Dependencies struct {
	Access        ports.AccessService
	Elevation     ports.ElevationService
	Notifications ports.NotificationService
	Settings      ports.SettingsService
	Watchers      ports.WatcherFactory

	// Site content. A nil service leaves its routes unregistered.
	Courses     ports.ContentService[*domain.Course]
	Workshops   ports.ContentService[*domain.Workshop]
	Electronics ports.ContentService[*domain.Electronic]
	Projects    ports.ContentService[*domain.Project]

	// LoginRateLimit is the sustained sign-in rate allowed per client IP,
	// in requests per second. Confirmation mail resends share it.
	LoginRateLimit float64

	// Registerer receives the HTTP request metrics. Defaults to the
	// Prometheus default registerer.
	Registerer prometheus.Registerer

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "academy_admin",
		Registerer: deps.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Access)
	sessionHandler := handler.NewSessionHandler(deps.Access, deps.Watchers, deps.Log)
	adminHandler := handler.NewAdminHandler(deps.Elevation)
	notificationHandler := handler.NewNotificationHandler(deps.Notifications)
	settingsHandler := handler.NewSettingsHandler(deps.Settings)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/login", authHandler.Login,
		rateLimiter(deps.LoginRateLimit, "Too many sign-in attempts. Please wait and try again."))
	auth.POST("/logout", authHandler.Logout, middleware.Auth())
	auth.POST("/refresh", authHandler.Refresh, middleware.Auth())
	auth.POST("/confirm", authHandler.ConfirmEmail)
	auth.POST("/confirm/resend", authHandler.ResendConfirmation,
		rateLimiter(deps.LoginRateLimit, "Too many requests. Please wait and try again."))

	// --- Session gate (answers for any caller) ---
	e.GET("/admin/session", sessionHandler.Current,
		middleware.AuthWithConfig(middleware.AuthConfig{Optional: true}))
	e.GET("/admin/session/stream", sessionHandler.Stream,
		middleware.AuthWithConfig(middleware.AuthConfig{Optional: true, AllowQuery: true}))

	// --- Admin area ---
	admin := e.Group("/admin", middleware.Auth(), middleware.RequireAdmin(deps.Access))
	admin.POST("/admins", adminHandler.Grant)
	admin.POST("/admins/:id/confirm", adminHandler.Confirm)

	admin.GET("/notifications", notificationHandler.List)
	admin.GET("/notifications/unread-count", notificationHandler.UnreadCount)
	admin.POST("/notifications/:id/read", notificationHandler.MarkRead)

	admin.GET("/settings", settingsHandler.Get)
	admin.PUT("/settings", settingsHandler.UpdateProfile)
	admin.PUT("/settings/password", settingsHandler.ChangePassword)

	if deps.Courses != nil {
		handler.NewContentHandler(deps.Courses, newRecord[domain.Course]).Register(admin)
	}
	if deps.Workshops != nil {
		handler.NewContentHandler(deps.Workshops, newRecord[domain.Workshop]).Register(admin)
	}
	if deps.Electronics != nil {
		handler.NewContentHandler(deps.Electronics, newRecord[domain.Electronic]).Register(admin)
	}
	if deps.Projects != nil {
		handler.NewContentHandler(deps.Projects, newRecord[domain.Project]).Register(admin)
	}

	return e
}

func newRecord[E any]() *E { return new(E) }

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

// rateLimiter throttles a route per client IP. Each call has its own budget.
func rateLimiter(perSecond float64, denied string) echo.MiddlewareFunc {
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(perSecond),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, denied)
		},
	})
}
