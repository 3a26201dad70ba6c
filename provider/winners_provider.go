package provider

import (
	"context"
	"fmt"

	"github.com/isrealsanci/wheel-app/config"
	"github.com/isrealsanci/wheel-app/httpclient"
	"github.com/isrealsanci/wheel-app/wheel"
	"github.com/rs/zerolog"
)

// WinnersProvider implements wheel.WinnersSource over one of the two feed
// endpoints. Construct one for the enriched feed and one for the basic
// history feed and hand both to the aggregator.
type WinnersProvider struct {
	client *httpclient.Client
	name   string
	logger zerolog.Logger
}

// NewEnrichedWinnersProvider creates the primary (enriched) feed source
func NewEnrichedWinnersProvider(cfg *config.Config, logger zerolog.Logger) *WinnersProvider {
	return newWinnersProvider(cfg.ExternalServices.WinnersEnriched, "enriched", logger)
}

// NewHistoryWinnersProvider creates the fallback (basic history) feed source
func NewHistoryWinnersProvider(cfg *config.Config, logger zerolog.Logger) *WinnersProvider {
	return newWinnersProvider(cfg.ExternalServices.WinnersHistory, "history", logger)
}

func newWinnersProvider(svc config.ServiceConfig, name string, logger zerolog.Logger) *WinnersProvider {
	return &WinnersProvider{
		client: httpclient.New(httpclient.Config{
			BaseURL: svc.BaseURL,
			Timeout: svc.Timeout,
			Logger:  logger,
		}),
		name:   name,
		logger: logger.With().Str("component", "winners_provider").Str("feed", name).Logger(),
	}
}

// Fetch retrieves the winners list, most-recent-first as returned by the
// feed.
func (p *WinnersProvider) Fetch(ctx context.Context) ([]wheel.WinnerRecord, error) {
	var records []wheel.WinnerRecord
	if err := p.client.GetJSON(ctx, "", nil, &records); err != nil {
		return nil, fmt.Errorf("%s winners feed failed: %w", p.name, err)
	}

	p.logger.Debug().Int("count", len(records)).Msg("winners fetched")
	return records, nil
}
