package wheel

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/isrealsanci/wheel-app/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Chain identifies where a prize is paid out. ChainNone marks the single
// non-payout entry of a table.
type Chain string

const (
	ChainNone Chain = "none"
	ChainBase Chain = "base"
	ChainCelo Chain = "celo"
)

// PrizeTableEntry is one segment of the wheel.
type PrizeTableEntry struct {
	Label  string          `mapstructure:"label" json:"label"`
	Amount decimal.Decimal `mapstructure:"amount" json:"amount"`
	Chain  Chain           `mapstructure:"chain" json:"chain"`
	Token  string          `mapstructure:"token" json:"token,omitempty"`
	Weight float64         `mapstructure:"weight" json:"weight"`
}

// IsReward reports whether landing on this entry pays out
func (e PrizeTableEntry) IsReward() bool {
	return e.Chain != ChainNone && e.Amount.IsPositive()
}

// PrizeTable is the fixed ordered sequence of possible outcomes.
// Order matters: the drawn index is what the wheel animation receives.
type PrizeTable []PrizeTableEntry

// DefaultPrizeTable returns the production wheel layout. Weights do not sum
// to any particular constant; they are normalized at draw time.
func DefaultPrizeTable() PrizeTable {
	return PrizeTable{
		{Label: "$0.01 ETH", Amount: decimal.RequireFromString("0.000005"), Chain: ChainBase, Token: "ETH", Weight: 20},
		{Label: "$0.05 ETH", Amount: decimal.RequireFromString("0.00002"), Chain: ChainBase, Token: "ETH", Weight: 5},
		{Label: "$0.1 ETH", Amount: decimal.RequireFromString("0.00004"), Chain: ChainBase, Token: "ETH", Weight: 0.25},
		{Label: "$0.5 ETH", Amount: decimal.RequireFromString("0.0002"), Chain: ChainBase, Token: "ETH", Weight: 0.001},
		{Label: "$1 ETH", Amount: decimal.RequireFromString("0.0004"), Chain: ChainBase, Token: "ETH", Weight: 0},
		{Label: "0.001 CELO", Amount: decimal.RequireFromString("0.001"), Chain: ChainCelo, Token: "CELO", Weight: 25},
		{Label: "0.01 CELO", Amount: decimal.RequireFromString("0.01"), Chain: ChainCelo, Token: "CELO", Weight: 10},
		{Label: "0.1 CELO", Amount: decimal.RequireFromString("0.1"), Chain: ChainCelo, Token: "CELO", Weight: 2},
		{Label: "0.5 CELO", Amount: decimal.RequireFromString("0.5"), Chain: ChainCelo, Token: "CELO", Weight: 0.1},
		{Label: "1 CELO", Amount: decimal.RequireFromString("1"), Chain: ChainCelo, Token: "CELO", Weight: 0},
		{Label: "Thanks", Amount: decimal.Zero, Chain: ChainNone, Weight: 37.649},
	}
}

// Validate checks the table invariant: exactly one ChainNone entry and its
// amount is zero. Negative weights are rejected.
func (t PrizeTable) Validate() error {
	if len(t) == 0 {
		return errors.New(errors.ErrPrizeTableError, "prize table is empty")
	}

	noneEntries := lo.Filter(t, func(e PrizeTableEntry, _ int) bool {
		return e.Chain == ChainNone
	})
	if len(noneEntries) != 1 {
		return errors.NewWithDebug(errors.ErrPrizeTableError, "prize table must have exactly one no-win entry",
			fmt.Sprintf("counted %d no-win entries", len(noneEntries)))
	}
	if !noneEntries[0].Amount.IsZero() {
		return errors.New(errors.ErrPrizeTableError, "no-win entry must have zero amount")
	}

	for _, e := range t {
		if e.Weight < 0 {
			return errors.New(errors.ErrPrizeTableError, "prize weight must not be negative")
		}
	}

	return nil
}

// Selector performs weighted-random draws over a prize table. It is safe
// for concurrent use; the rand source is guarded by a mutex.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector creates a selector with the given source. A nil source falls
// back to a time-seeded one; tests inject a fixed seed for reproducibility.
func NewSelector(src rand.Source) *Selector {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Selector{rng: rand.New(src)}
}

// Draw returns the index of the selected entry.
//
// The draw walks the table accumulating weights and returns the first index
// whose running sum exceeds the uniform draw over [0, total). A zero total
// (all weights zero) or a floating-point fall-through returns index 0.
func (s *Selector) Draw(table PrizeTable) int {
	total := 0.0
	for _, e := range table {
		total += e.Weight
	}
	if total <= 0 {
		return 0
	}

	s.mu.Lock()
	r := s.rng.Float64() * total
	s.mu.Unlock()

	sum := 0.0
	for i, e := range table {
		sum += e.Weight
		if r < sum {
			return i
		}
	}
	return 0
}
