package wheel

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// SpinsPerAsset is the stock daily allowance granted per held membership NFT.
const SpinsPerAsset = 20

// DefaultPurchaseCredit is the number of spins granted per confirmed purchase.
const DefaultPurchaseCredit = 5

// ComputeAllowance converts a held-asset count into the daily spin allowance.
// A perAsset of zero or less falls back to SpinsPerAsset. An unknown balance
// is reported by callers as zero assets, never as an error.
func ComputeAllowance(heldAssets, perAsset int) int {
	if heldAssets < 0 {
		return 0
	}
	if perAsset <= 0 {
		perAsset = SpinsPerAsset
	}
	return heldAssets * perAsset
}

// KeyValue is the persistence abstraction behind the entitlement store.
// Absence is reported as found=false with a nil error.
type KeyValue interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Put(ctx context.Context, key, value string) error
}

// DailyRecord is the persisted per-identity consumption record. The wire
// format is the exact JSON the storage key has always held:
// {"date":"2006-01-02","count":3}. Count goes negative when a purchase
// credit outpaces consumption; that banks the bonus under the allowance
// ceiling until the next daily reset.
type DailyRecord struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// EntitlementStore tracks per-identity daily spin consumption in a local
// key-value store. It is the only component that mutates the records.
type EntitlementStore struct {
	kv     KeyValue
	clock  func() time.Time
	logger zerolog.Logger
}

// NewEntitlementStore creates a store over the given key-value backing.
// A nil clock defaults to time.Now (local time, day granularity).
func NewEntitlementStore(kv KeyValue, clock func() time.Time, logger zerolog.Logger) *EntitlementStore {
	if clock == nil {
		clock = time.Now
	}
	return &EntitlementStore{
		kv:     kv,
		clock:  clock,
		logger: logger.With().Str("component", "entitlement_store").Logger(),
	}
}

func storageKey(identity string) string {
	return fmt.Sprintf("spin-data-%s", identity)
}

func (s *EntitlementStore) today() string {
	return s.clock().Format("2006-01-02")
}

// load reads the record for identity, treating absent or corrupt state as
// an empty record for today (fail open).
func (s *EntitlementStore) load(ctx context.Context, identity string) DailyRecord {
	raw, found, err := s.kv.Get(ctx, storageKey(identity))
	if err != nil || !found {
		if err != nil {
			s.logger.Warn().Err(err).Str("address", identity).Msg("entitlement read failed, assuming empty record")
		}
		return DailyRecord{Date: s.today()}
	}

	var rec DailyRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		s.logger.Warn().Err(err).Str("address", identity).Msg("corrupt entitlement record, assuming empty record")
		return DailyRecord{Date: s.today()}
	}
	return rec
}

func (s *EntitlementStore) save(ctx context.Context, identity string, rec DailyRecord) {
	data, _ := json.Marshal(rec)
	if err := s.kv.Put(ctx, storageKey(identity), string(data)); err != nil {
		s.logger.Error().Err(err).Str("address", identity).Msg("failed to persist entitlement record")
	}
}

// loadCurrent applies the staleness rule: a record whose date differs from
// today is reset to {today, 0} and the reset is persisted. A new day grants
// a fresh allowance window, not an additive one.
func (s *EntitlementStore) loadCurrent(ctx context.Context, identity string) DailyRecord {
	rec := s.load(ctx, identity)
	if rec.Date != s.today() {
		rec = DailyRecord{Date: s.today()}
		s.save(ctx, identity, rec)
	}
	return rec
}

func remaining(allowance, consumed int) int {
	if r := allowance - consumed; r > 0 {
		return r
	}
	return 0
}

// Remaining returns the spins left today for identity under the given
// allowance, persisting a daily reset if the stored record is stale.
func (s *EntitlementStore) Remaining(ctx context.Context, identity string, allowance int) int {
	rec := s.loadCurrent(ctx, identity)
	return remaining(allowance, rec.Count)
}

// RecordSpin consumes one spin for identity's current-day record and
// returns the updated remaining count. Every spin attempt consumes
// entitlement regardless of its settlement outcome.
func (s *EntitlementStore) RecordSpin(ctx context.Context, identity string, allowance int) int {
	rec := s.loadCurrent(ctx, identity)
	rec.Count++
	s.save(ctx, identity, rec)

	left := remaining(allowance, rec.Count)
	s.logger.Debug().
		Str("address", identity).
		Int("consumed", rec.Count).
		Int("remaining", left).
		Msg("spin recorded")
	return left
}

// ApplyPurchaseCredit credits purchased spins by decrementing consumption.
// The count may go negative; combined with the clamp in Remaining this
// banks the bonus under the current allowance ceiling.
func (s *EntitlementStore) ApplyPurchaseCredit(ctx context.Context, identity string, allowance, credit int) int {
	if credit <= 0 {
		credit = DefaultPurchaseCredit
	}
	rec := s.loadCurrent(ctx, identity)
	rec.Count -= credit
	s.save(ctx, identity, rec)

	left := remaining(allowance, rec.Count)
	s.logger.Info().
		Str("address", identity).
		Int("credit", credit).
		Int("remaining", left).
		Msg("purchase credit applied")
	return left
}
