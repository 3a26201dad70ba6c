package wheel

import (
	"context"
	"sync"

	"github.com/isrealsanci/wheel-app/errors"
	"github.com/rs/zerolog"
)

// WinnerRecord is one entry of the externally maintained winners feed.
// The engine never constructs these; they are display data from the feed.
type WinnerRecord struct {
	Address     string  `json:"address"`
	Amount      float64 `json:"amount"`
	TxHash      string  `json:"txHash"`
	Chain       string  `json:"chain,omitempty"`
	Token       string  `json:"token,omitempty"`
	Pfp         string  `json:"pfp,omitempty"`
	Username    string  `json:"username,omitempty"`
	DisplayName string  `json:"displayName,omitempty"`
}

const (
	// initialReveal is how many winners are visible after a refresh.
	initialReveal = 2
	// revealStep is how many more each "show more" uncovers.
	revealStep = 3
	// maxReveal caps the total visible winners.
	maxReveal = 6
)

// WinnersAggregator fetches the recent-winners list from the enriched
// primary source, falling back to the basic history source, and exposes
// incremental reveal over the result.
type WinnersAggregator struct {
	primary  WinnersSource
	fallback WinnersSource

	mu      sync.Mutex
	winners []WinnerRecord
	visible int
	lastErr error

	logger zerolog.Logger
}

// NewWinnersAggregator creates an aggregator over the two feed sources.
func NewWinnersAggregator(primary, fallback WinnersSource, logger zerolog.Logger) *WinnersAggregator {
	return &WinnersAggregator{
		primary:  primary,
		fallback: fallback,
		visible:  initialReveal,
		logger:   logger.With().Str("component", "winners_feed").Logger(),
	}
}

// Refresh fetches the winners list. The primary attempt fully resolves
// before the fallback begins; if both fail the previously loaded list is
// retained and an error state is surfaced. A successful refresh resets the
// reveal count.
func (a *WinnersAggregator) Refresh(ctx context.Context) error {
	records, err := a.primary.Fetch(ctx)
	if err != nil {
		a.logger.Warn().Err(err).Msg("enriched feed failed, trying history feed")
		records, err = a.fallback.Fetch(ctx)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err != nil {
		a.lastErr = errors.Wrap(err, errors.ErrFeedUnavailable, "failed to load winners")
		a.logger.Error().Err(err).Msg("both winners feeds failed, keeping previous list")
		return a.lastErr
	}

	a.winners = records
	a.visible = initialReveal
	a.lastErr = nil
	a.logger.Debug().Int("count", len(records)).Msg("winners feed refreshed")
	return nil
}

// Err returns the surfaced error state from the last refresh, nil if the
// last refresh succeeded.
func (a *WinnersAggregator) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

// All returns the full fetched list, most-recent-first as supplied by the
// source; the aggregator never re-sorts.
func (a *WinnersAggregator) All() []WinnerRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.winners
}

// Visible returns the currently revealed prefix of the winners list.
func (a *WinnersAggregator) Visible() []WinnerRecord {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := a.visible
	if n > maxReveal {
		n = maxReveal
	}
	if n > len(a.winners) {
		n = len(a.winners)
	}
	return a.winners[:n]
}

// CanShowMore reports whether more winners can be revealed.
func (a *WinnersAggregator) CanShowMore() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.visible < revealLimit(len(a.winners))
}

// ShowMore reveals up to revealStep additional winners, capped at maxReveal
// and at the number available.
func (a *WinnersAggregator) ShowMore() {
	a.mu.Lock()
	defer a.mu.Unlock()

	next := a.visible + revealStep
	if limit := revealLimit(len(a.winners)); next > limit {
		next = limit
	}
	a.visible = next
}

// ShowLess collapses the reveal back to the initial count.
func (a *WinnersAggregator) ShowLess() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.visible = initialReveal
}

// revealLimit bounds the reveal by both the global cap and the available records.
func revealLimit(available int) int {
	if available < maxReveal {
		return available
	}
	return maxReveal
}
