package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	custommiddleware "aitradegame/internal/middleware"
)

// RouterConfig holds all dependencies for routing
type RouterConfig struct {
	AccountHandler   *AccountHandler
	PortfolioHandler *PortfolioHandler
	TradeHandler     *TradeHandler
}

// SetupRoutes configures all HTTP routes
func SetupRoutes(e *echo.Echo, config *RouterConfig) {
	// Middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			// Skip logging for polling endpoints to reduce noise
			path := c.Request().URL.Path
			return path == "/health" || path == "/api/market" || path == "/api/portfolio"
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return SuccessResponse(c, map[string]interface{}{
			"status":  "healthy",
			"service": "aitradegame-api",
		})
	})

	// API group
	api := e.Group("/api")

	// Reporting routes (public)
	api.GET("/portfolio", config.PortfolioHandler.GetOverview)
	api.GET("/portfolio/chart", config.PortfolioHandler.GetChart)
	api.GET("/market", config.PortfolioHandler.GetMarket)

	// Account routes (public reads)
	api.GET("/accounts", config.AccountHandler.ListAccounts)
	api.GET("/accounts/:id", config.AccountHandler.GetAccount)
	api.GET("/accounts/:id/history", config.AccountHandler.GetHistory)
	api.GET("/accounts/:id/trades", config.AccountHandler.GetTrades)
	api.GET("/accounts/:id/conversations", config.AccountHandler.GetConversations)

	// Admin routes (protected)
	admin := api.Group("/admin", custommiddleware.AdminMiddleware)
	{
		admin.POST("/accounts", config.AccountHandler.CreateAccount)
		admin.DELETE("/accounts/:id", config.AccountHandler.ArchiveAccount)
		admin.POST("/accounts/:id/trades", config.TradeHandler.SubmitTrade)
		admin.POST("/cycle", config.TradeHandler.TriggerCycle)
	}
}
