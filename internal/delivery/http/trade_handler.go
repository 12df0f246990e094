package http

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"aitradegame/internal/delivery/http/dto"
	"aitradegame/internal/domain"
	"aitradegame/internal/usecase"
)

// TradeHandler serves trade submission and cycle trigger endpoints
type TradeHandler struct {
	trading *usecase.TradingService
}

// NewTradeHandler creates a new TradeHandler
func NewTradeHandler(trading *usecase.TradingService) *TradeHandler {
	return &TradeHandler{trading: trading}
}

// SubmitTrade handles POST /api/accounts/:id/trades
func (h *TradeHandler) SubmitTrade(c echo.Context) error {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid account ID")
	}

	var req dto.TradeRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request body")
	}

	instr := domain.Instruction{
		Signal:   domain.Signal(req.Signal),
		Symbol:   req.Symbol,
		Quantity: req.Quantity,
		Leverage: req.Leverage,
		Side:     domain.Side(req.Side),
	}

	record, err := h.trading.SubmitTrade(c.Request().Context(), accountID, instr)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return CreatedResponse(c, tradeOutput(record))
}

// TriggerCycle handles POST /api/admin/cycle and kicks off one trading cycle
// for every active account. The cycle runs in the background; model calls
// are far too slow to hold an HTTP request open for.
func (h *TradeHandler) TriggerCycle(c echo.Context) error {
	go func() {
		log.Println("[OK] Trading cycle triggered via API")
		h.trading.RunAll(context.Background())
		h.trading.SnapshotAll(context.Background())
	}()
	return SuccessResponse(c, map[string]interface{}{"triggered": true})
}
