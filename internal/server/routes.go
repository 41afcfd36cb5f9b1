package server

import (
	"github.com/labstack/echo/v4"

	"github.com/MShkut/personal-finance-tracker/internal/handlers"
)

type routes struct {
	auth          *handlers.AuthHandler
	health        echo.HandlerFunc
	app           *handlers.AppHandler
	onboarding    *handlers.OnboardingHandler
	userData      *handlers.UserDataHandler
	transactions  *handlers.TransactionHandler
	theme         *handlers.ThemeHandler
	notifications *handlers.NotificationHandler
	admin         *handlers.AdminHandler

	authMiddleware  echo.MiddlewareFunc
	adminMiddleware echo.MiddlewareFunc
	authRateLimiter echo.MiddlewareFunc
	aiRateLimiter   echo.MiddlewareFunc
}

func registerRoutes(e *echo.Echo, r routes) {
	e.GET("/health", r.health)

	api := e.Group("/api/v1")
	authGroup := api.Group("/auth", r.authRateLimiter)

	authGroup.POST("/register", r.auth.Register)
	authGroup.POST("/login", r.auth.Login)
	authGroup.GET("/me", r.auth.Me, r.authMiddleware)

	app := api.Group("/app", r.authMiddleware)
	app.GET("", r.app.State)
	app.POST("/navigate", r.app.Navigate)
	app.POST("/reload", r.app.Reload)

	onboarding := api.Group("/onboarding", r.authMiddleware)
	onboarding.GET("", r.onboarding.Get)
	onboarding.POST("/steps/:step", r.onboarding.Submit)
	onboarding.POST("/back", r.onboarding.Back)
	onboarding.POST("/form/:key", r.onboarding.UpdateForm)
	onboarding.GET("/lists/:list", r.onboarding.ListItems)
	onboarding.POST("/lists/:list", r.onboarding.AddListItem)
	onboarding.PUT("/lists/:list/:itemId", r.onboarding.UpdateListItem)
	onboarding.DELETE("/lists/:list/:itemId", r.onboarding.DeleteListItem)

	userData := api.Group("/userdata", r.authMiddleware)
	userData.GET("", r.userData.Get)
	userData.DELETE("", r.userData.Reset)

	api.GET("/dashboard", r.userData.Dashboard, r.authMiddleware)
	api.GET("/categories", r.transactions.Categories, r.authMiddleware)

	transactions := api.Group("/transactions", r.authMiddleware)
	transactions.GET("/review", r.transactions.Review)
	transactions.POST("/import", r.transactions.Import, r.aiRateLimiter)
	transactions.POST("", r.transactions.Create)
	transactions.POST("/confirm", r.transactions.ConfirmAll)
	transactions.PATCH("/:id/category", r.transactions.ChangeCategory)
	transactions.POST("/:id/split", r.transactions.Split)
	transactions.GET("/export/csv", r.transactions.ExportCSV)
	transactions.GET("/export/json", r.transactions.ExportJSON)

	themeGroup := api.Group("/theme", r.authMiddleware)
	themeGroup.GET("", r.theme.Get)
	themeGroup.POST("/toggle", r.theme.Toggle)

	notifications := api.Group("/notifications", r.authMiddleware)
	notifications.GET("/stream", r.notifications.Stream)

	admin := api.Group("/admin", r.authMiddleware, r.adminMiddleware)
	admin.GET("/users", r.admin.ListUsers)
	admin.GET("/usage", r.admin.Usage)
}
