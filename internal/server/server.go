package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/MShkut/personal-finance-tracker/internal/ai"
	"github.com/MShkut/personal-finance-tracker/internal/auth"
	"github.com/MShkut/personal-finance-tracker/internal/config"
	"github.com/MShkut/personal-finance-tracker/internal/handlers"
	"github.com/MShkut/personal-finance-tracker/internal/notifications"
	"github.com/MShkut/personal-finance-tracker/internal/repository"
	"github.com/MShkut/personal-finance-tracker/internal/session"
	"github.com/MShkut/personal-finance-tracker/internal/theme"
	"github.com/MShkut/personal-finance-tracker/internal/transactions"
	"github.com/MShkut/personal-finance-tracker/internal/userdata"
)

// Dependencies содержит долгоживущие объекты, которыми владеет main.
type Dependencies struct {
	Users     repository.UserStore
	Records   repository.RecordStore
	Hub       *notifications.Hub
	Publisher notifications.Publisher
	Sessions  *session.Registry
}

// New собирает HTTP-сервер Echo с роутами и зависимостями.
func New(cfg config.Config, logger *slog.Logger, deps Dependencies) (*echo.Echo, error) {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	if len(cfg.Server.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.Server.CORSOrigins,
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}

	recategorizer, err := newRecategorizer(cfg.AI, logger)
	if err != nil {
		return nil, err
	}

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)
	userData := userdata.NewStore(deps.Records)
	themeService := theme.NewService(userData, deps.Publisher, logger)
	transactionService := transactions.NewService(userData, recategorizer, deps.Publisher, logger, cfg.Currency)

	registerRoutes(e, routes{
		health:        handlers.Health(deps.Sessions),
		auth:          handlers.NewAuthHandler(deps.Users, userData, tokenManager, logger),
		app:           handlers.NewAppHandler(deps.Sessions, logger),
		onboarding:    handlers.NewOnboardingHandler(deps.Sessions, deps.Publisher, logger),
		userData:      handlers.NewUserDataHandler(userData, deps.Sessions, cfg.Currency, logger),
		transactions:  handlers.NewTransactionHandler(transactionService, themeService, logger),
		theme:         handlers.NewThemeHandler(themeService, logger),
		notifications: handlers.NewNotificationHandler(deps.Hub),
		admin:         handlers.NewAdminHandler(deps.Users, deps.Records, logger),

		authMiddleware:  auth.JWTMiddleware(tokenManager),
		adminMiddleware: handlers.AdminMiddleware(deps.Users, cfg.Admin.Emails),
		authRateLimiter: rateLimiter(cfg.Auth.RateLimitPerMinute, cfg.Auth.RateLimitBurst),
		aiRateLimiter:   rateLimiter(cfg.AI.RateLimitPerMinute, cfg.AI.RateLimitBurst),
	})

	return e, nil
}

// NewHTTPServer создает net/http сервер с заданными таймаутами.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

// newRecategorizer возвращает nil, если AI-категоризация не настроена.
func newRecategorizer(cfg config.AIConfig, logger *slog.Logger) (transactions.Recategorizer, error) {
	if !cfg.Enabled() {
		logger.Info("ai categorization disabled")
		return nil, nil
	}

	client, err := ai.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, nil
	}

	logger.Info("ai categorization enabled", slog.String("provider", cfg.Provider), slog.String("model", cfg.Model))
	return ai.NewService(client), nil
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.String("request_id", v.RequestID),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(c.Request().Context(), level, "request completed", attrs...)
			return nil
		},
	})
}

func rateLimiter(perMinute, burst int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perMinute) / 60.0),
		Burst:     burst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiter(store)
}
