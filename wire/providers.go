package wire

import (
	"context"

	"github.com/google/wire"
	"github.com/isrealsanci/wheel-app/config"
	"github.com/isrealsanci/wheel-app/db/localstore"
	coreredis "github.com/isrealsanci/wheel-app/db/redis"
	"github.com/isrealsanci/wheel-app/logging"
	"github.com/isrealsanci/wheel-app/provider"
	"github.com/isrealsanci/wheel-app/wheel"
	"github.com/rs/zerolog"
)

// ProvideLogger provides a zerolog.Logger
func ProvideLogger(cfg *config.Config) zerolog.Logger {
	return logging.New(cfg.Logging)
}

// ProvideLocalStore provides the sqlite-backed client profile store
func ProvideLocalStore(cfg *config.Config, logger zerolog.Logger) (*localstore.Store, error) {
	return localstore.Open(cfg.Storage.Path, logger)
}

// ProvideRedisClient provides a Redis client for kiosk deployments
func ProvideRedisClient(cfg *config.Config) (*coreredis.Client, error) {
	return coreredis.New(cfg.Redis)
}

// ProvideEntitlementStore provides the entitlement store over the given backing
func ProvideEntitlementStore(kv wheel.KeyValue, logger zerolog.Logger) *wheel.EntitlementStore {
	return wheel.NewEntitlementStore(kv, nil, logger)
}

// ProvidePrizeTable provides the configured prize table, falling back to
// the stock wheel layout when no override file is configured
func ProvidePrizeTable(cfg *config.Config) (wheel.PrizeTable, error) {
	if cfg.Spin.PrizeTableFile != "" {
		return wheel.LoadPrizeTable(cfg.Spin.PrizeTableFile)
	}
	return wheel.DefaultPrizeTable(), nil
}

// ProvideChainProvider provides the NFT balance reader and receipt waiter
func ProvideChainProvider(cfg *config.Config, logger zerolog.Logger) (*provider.ChainProvider, error) {
	return provider.NewChainProvider(cfg, logger)
}

// ProvideSettlementProvider provides the settlement backend client
func ProvideSettlementProvider(cfg *config.Config, logger zerolog.Logger) *provider.SettlementProvider {
	return provider.NewSettlementProvider(cfg, logger)
}

// ProvideWinnersAggregator provides the winners feed aggregator over the
// enriched primary and basic history fallback
func ProvideWinnersAggregator(cfg *config.Config, logger zerolog.Logger) *wheel.WinnersAggregator {
	return wheel.NewWinnersAggregator(
		provider.NewEnrichedWinnersProvider(cfg, logger),
		provider.NewHistoryWinnersProvider(cfg, logger),
		logger,
	)
}

// ProvideCoordinator provides the settlement coordinator. The payment
// submitter is wallet-owned and must come from the host application.
func ProvideCoordinator(
	cfg *config.Config,
	store *wheel.EntitlementStore,
	table wheel.PrizeTable,
	chain *provider.ChainProvider,
	settlement *provider.SettlementProvider,
	payment wheel.PaymentSubmitter,
	winners *wheel.WinnersAggregator,
	logger zerolog.Logger,
) (*wheel.Coordinator, error) {
	return wheel.NewCoordinator(wheel.CoordinatorOptions{
		Table:          table,
		Store:          store,
		Chain:          chain,
		Settlement:     settlement,
		Payment:        payment,
		Receipts:       chain,
		SpinsPerAsset:  cfg.Spin.SpinsPerAsset,
		PurchaseCredit: cfg.Spin.PurchaseCredit,
		OnSettled: func() {
			// the backend registers the winner asynchronously; refresh right
			// away and let the next render pick up whatever is there
			_ = winners.Refresh(context.Background())
		},
		Logger: logger,
	})
}

// ConfigSet is the wire provider set for configuration
var ConfigSet = wire.NewSet(
	config.Load,
)

// LoggingSet is the wire provider set for logging
var LoggingSet = wire.NewSet(
	ProvideLogger,
)

// LocalStorageSet backs the entitlement store with the sqlite client profile
var LocalStorageSet = wire.NewSet(
	ProvideLocalStore,
	wire.Bind(new(wheel.KeyValue), new(*localstore.Store)),
)

// RedisStorageSet backs the entitlement store with Redis (kiosk mode)
var RedisStorageSet = wire.NewSet(
	ProvideRedisClient,
	wire.Bind(new(wheel.KeyValue), new(*coreredis.Client)),
)

// EngineSet is the wire provider set for the spin engine
var EngineSet = wire.NewSet(
	ProvideEntitlementStore,
	ProvidePrizeTable,
	ProvideChainProvider,
	ProvideSettlementProvider,
	ProvideWinnersAggregator,
	ProvideCoordinator,
)

// DefaultSet is the default wire provider set: sqlite-backed local profile
var DefaultSet = wire.NewSet(
	LoggingSet,
	LocalStorageSet,
	EngineSet,
)

// KioskSet swaps the local profile for Redis-backed storage
var KioskSet = wire.NewSet(
	LoggingSet,
	RedisStorageSet,
	EngineSet,
)
