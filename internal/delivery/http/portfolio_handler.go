package http

import (
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"aitradegame/internal/usecase"
)

// PortfolioHandler serves the cross-account reporting endpoints
type PortfolioHandler struct {
	trading *usecase.TradingService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(trading *usecase.TradingService) *PortfolioHandler {
	return &PortfolioHandler{trading: trading}
}

// GetOverview handles GET /api/portfolio: the combined portfolio plus the
// leaderboard
func (h *PortfolioHandler) GetOverview(c echo.Context) error {
	combined, leaderboard, err := h.trading.Overview(c.Request().Context())
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessResponse(c, map[string]interface{}{
		"combined":    combined,
		"leaderboard": leaderboard,
	})
}

// GetChart handles GET /api/portfolio/chart: one labeled equity series per
// account plus the merged total curve
func (h *PortfolioHandler) GetChart(c echo.Context) error {
	from, to, err := parseTimeRange(c)
	if err != nil {
		return BadRequestResponse(c, err.Error())
	}

	series, merged := h.trading.Chart(from, to)
	return SuccessResponse(c, map[string]interface{}{
		"series": series,
		"merged": merged,
	})
}

// GetMarket handles GET /api/market and returns the tracked quotes
func (h *PortfolioHandler) GetMarket(c echo.Context) error {
	quotes, err := h.trading.Market(c.Request().Context())
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessResponse(c, quotes)
}

// parseTimeRange reads optional RFC3339 from/to query parameters.
func parseTimeRange(c echo.Context) (time.Time, time.Time, error) {
	var from, to time.Time
	if raw := c.QueryParam("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return from, to, fmt.Errorf("invalid 'from' timestamp: %s", raw)
		}
		from = parsed
	}
	if raw := c.QueryParam("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return from, to, fmt.Errorf("invalid 'to' timestamp: %s", raw)
		}
		to = parsed
	}
	return from, to, nil
}

// parseLimit reads the optional limit query parameter.
func parseLimit(c echo.Context, fallback int) int {
	raw := c.QueryParam("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}
