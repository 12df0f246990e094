package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"aitradegame/internal/domain"
)

// AdvisorBridge implements the Advisor interface against the external
// reasoning service that talks to the model providers.
type AdvisorBridge struct {
	baseURL    string
	httpClient *http.Client
}

// NewAdvisorBridge creates a new reasoning-service bridge
func NewAdvisorBridge(baseURL string) domain.Advisor {
	return &AdvisorBridge{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // model calls can take time
		},
	}
}

// decideRequest is the request to the reasoning service. The credential
// travels in the body over the internal network, never in a URL.
type decideRequest struct {
	Provider  string                 `json:"provider"`
	ModelName string                 `json:"model_name"`
	APIKey    string                 `json:"api_key"`
	Context   domain.DecisionContext `json:"context"`
}

// decideDecision is one decision in the reasoning service response
type decideDecision struct {
	Signal   string          `json:"signal"`
	Symbol   string          `json:"symbol"`
	Quantity decimal.Decimal `json:"quantity"`
	Leverage decimal.Decimal `json:"leverage"`
	Side     string          `json:"side,omitempty"`
}

// decideResponse is the full reasoning service response
type decideResponse struct {
	Decisions []decideDecision `json:"decisions"`
	Prompt    string           `json:"prompt"`
	Response  string           `json:"response"`
}

// Decide calls the reasoning service and parses its decisions into
// instructions. Hold decisions are dropped here; they carry no action.
func (ab *AdvisorBridge) Decide(ctx context.Context, dc domain.DecisionContext) (*domain.DecisionResult, error) {
	reqBody := decideRequest{
		Provider:  dc.Provider,
		ModelName: dc.ModelName,
		APIKey:    dc.APIKey,
		Context:   dc,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal decide request: %w", err)
	}

	url := fmt.Sprintf("%s/decide", ab.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := ab.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call reasoning service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("reasoning service returned error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	var decided decideResponse
	if err := json.NewDecoder(resp.Body).Decode(&decided); err != nil {
		return nil, fmt.Errorf("failed to decode decide response: %w", err)
	}

	result := &domain.DecisionResult{
		Prompt: decided.Prompt,
		Raw:    decided.Response,
	}
	for _, decision := range decided.Decisions {
		signal := domain.Signal(decision.Signal)
		if signal == domain.SignalHold {
			continue
		}
		result.Instructions = append(result.Instructions, domain.Instruction{
			Signal:   signal,
			Symbol:   decision.Symbol,
			Quantity: decision.Quantity,
			Leverage: decision.Leverage,
			Side:     domain.Side(decision.Side),
		})
	}

	return result, nil
}

// HealthCheck checks if the reasoning service is reachable
func (ab *AdvisorBridge) HealthCheck(ctx context.Context) error {
	url := fmt.Sprintf("%s/health", ab.baseURL)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := ab.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to check reasoning service health: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reasoning service is unhealthy: status=%d", resp.StatusCode)
	}

	return nil
}
