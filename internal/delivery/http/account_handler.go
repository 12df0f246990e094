package http

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"aitradegame/internal/delivery/http/dto"
	"aitradegame/internal/domain"
	"aitradegame/internal/engine"
	"aitradegame/internal/usecase"
)

// KeySealer seals a provider credential before it reaches storage.
type KeySealer interface {
	Seal(plaintext string) (string, error)
}

// AccountHandler serves account lifecycle and per-account history endpoints
type AccountHandler struct {
	store         *engine.Store
	history       *engine.HistoryRecorder
	trading       *usecase.TradingService
	sealer        KeySealer
	trades        domain.TradeRepository        // nil without a database
	conversations domain.ConversationRepository // nil without a database
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(
	store *engine.Store,
	history *engine.HistoryRecorder,
	trading *usecase.TradingService,
	sealer KeySealer,
	trades domain.TradeRepository,
	conversations domain.ConversationRepository,
) *AccountHandler {
	return &AccountHandler{
		store:         store,
		history:       history,
		trading:       trading,
		sealer:        sealer,
		trades:        trades,
		conversations: conversations,
	}
}

// CreateAccount handles POST /api/admin/accounts
func (h *AccountHandler) CreateAccount(c echo.Context) error {
	var req dto.CreateAccountRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request body")
	}

	sealed := ""
	if req.APIKey != "" {
		var err error
		sealed, err = h.sealer.Seal(req.APIKey)
		if err != nil {
			return InternalServerErrorResponse(c, "Failed to store credential", err)
		}
	}

	account, err := h.store.Register(c.Request().Context(), req.Name, req.Provider, req.ModelName, sealed, req.InitialCapital)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return CreatedResponse(c, accountOutput(account))
}

// ListAccounts handles GET /api/accounts
func (h *AccountHandler) ListAccounts(c echo.Context) error {
	snapshots := h.store.Snapshots(false)
	out := make([]dto.AccountOutput, 0, len(snapshots))
	for _, snap := range snapshots {
		out = append(out, dto.AccountOutput{
			ID:             snap.AccountID.String(),
			Name:           snap.Name,
			Provider:       snap.Provider,
			ModelName:      snap.ModelName,
			InitialCapital: snap.InitialCapital,
			Cash:           snap.Cash,
			CreatedAt:      snap.CreatedAt.Format(time.RFC3339),
		})
	}
	return SuccessResponse(c, out)
}

// GetAccount handles GET /api/accounts/:id and returns the full valuation
func (h *AccountHandler) GetAccount(c echo.Context) error {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid account ID")
	}

	valuation, err := h.trading.AccountValuation(c.Request().Context(), accountID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessResponse(c, valuation)
}

// ArchiveAccount handles DELETE /api/admin/accounts/:id
func (h *AccountHandler) ArchiveAccount(c echo.Context) error {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid account ID")
	}

	if err := h.store.Archive(c.Request().Context(), accountID); err != nil {
		return DomainErrorResponse(c, err)
	}
	log.Printf("[OK] Account %s archived via API", accountID)
	return SuccessResponse(c, map[string]interface{}{"archived": accountID})
}

// GetHistory handles GET /api/accounts/:id/history and returns the equity curve
func (h *AccountHandler) GetHistory(c echo.Context) error {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid account ID")
	}
	if _, err := h.store.Ledger(accountID); err != nil {
		return DomainErrorResponse(c, err)
	}

	from, to, err := parseTimeRange(c)
	if err != nil {
		return BadRequestResponse(c, err.Error())
	}
	return SuccessResponse(c, h.history.Range(accountID, from, to))
}

// GetTrades handles GET /api/accounts/:id/trades
func (h *AccountHandler) GetTrades(c echo.Context) error {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid account ID")
	}
	if h.trades == nil {
		return SuccessResponse(c, []dto.TradeOutput{})
	}

	records, err := h.trades.RecentByAccount(c.Request().Context(), accountID, parseLimit(c, 50))
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to load trades", err)
	}

	out := make([]dto.TradeOutput, 0, len(records))
	for _, record := range records {
		out = append(out, tradeOutput(record))
	}
	return SuccessResponse(c, out)
}

// GetConversations handles GET /api/accounts/:id/conversations
func (h *AccountHandler) GetConversations(c echo.Context) error {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid account ID")
	}
	if h.conversations == nil {
		return SuccessResponse(c, []*domain.ConversationRecord{})
	}

	records, err := h.conversations.RecentByAccount(c.Request().Context(), accountID, parseLimit(c, 20))
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to load conversations", err)
	}
	return SuccessResponse(c, records)
}

func accountOutput(account *domain.Account) dto.AccountOutput {
	return dto.AccountOutput{
		ID:             account.ID.String(),
		Name:           account.Name,
		Provider:       account.Provider,
		ModelName:      account.ModelName,
		InitialCapital: account.InitialCapital,
		Cash:           account.Cash,
		CreatedAt:      account.CreatedAt.Format(time.RFC3339),
	}
}

func tradeOutput(record *domain.TradeRecord) dto.TradeOutput {
	return dto.TradeOutput{
		ID:          record.ID.String(),
		AccountID:   record.AccountID.String(),
		Symbol:      record.Symbol,
		Signal:      string(record.Signal),
		Side:        string(record.Side),
		Quantity:    record.Quantity,
		Price:       record.Price,
		Leverage:    record.Leverage,
		RealizedPnL: record.RealizedPnL,
		Fee:         record.Fee,
		CreatedAt:   record.CreatedAt.Format(time.RFC3339),
	}
}
