package provider

import (
	"context"
	"fmt"

	"github.com/isrealsanci/wheel-app/config"
	"github.com/isrealsanci/wheel-app/httpclient"
	"github.com/isrealsanci/wheel-app/wheel"
	"github.com/rs/zerolog"
)

// SettlementProvider implements wheel.SettlementBackend against the payout
// backend over HTTP.
type SettlementProvider struct {
	client *httpclient.Client
	logger zerolog.Logger
}

// NewSettlementProvider creates a new settlement provider
func NewSettlementProvider(cfg *config.Config, logger zerolog.Logger) *SettlementProvider {
	return &SettlementProvider{
		client: httpclient.New(httpclient.Config{
			BaseURL: cfg.ExternalServices.SettlementService.BaseURL,
			Timeout: cfg.ExternalServices.SettlementService.Timeout,
			Logger:  logger,
		}),
		logger: logger.With().Str("component", "settlement_provider").Logger(),
	}
}

type settleRequest struct {
	Address string                `json:"address"`
	Prize   wheel.PrizeTableEntry `json:"prize"`
}

type settleResponse struct {
	TxHash string `json:"txHash"`
}

// Settle asks the backend to execute the on-chain payout for a won prize.
// A non-2xx response or a response without a transaction reference is an
// error; the caller treats either as a failed settlement.
func (p *SettlementProvider) Settle(ctx context.Context, address string, prize wheel.PrizeTableEntry) (string, error) {
	var result settleResponse
	err := p.client.PostJSON(ctx, "", settleRequest{Address: address, Prize: prize}, nil, &result)
	if err != nil {
		return "", fmt.Errorf("settlement request failed: %w", err)
	}

	if result.TxHash == "" {
		return "", fmt.Errorf("settlement response missing transaction reference")
	}

	p.logger.Info().
		Str("address", address).
		Str("prize", prize.Label).
		Str("tx_hash", result.TxHash).
		Msg("prize settled")

	return result.TxHash, nil
}
