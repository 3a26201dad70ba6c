package wheel

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/isrealsanci/wheel-app/errors"
	"github.com/rs/zerolog"
)

// SpinPhase is the lifecycle phase of the spin sub-flow.
type SpinPhase int

const (
	SpinIdle SpinPhase = iota
	SpinSpinning
	SpinResolving
)

// OutcomeStatus is the terminal status of a completed spin attempt.
type OutcomeStatus int

const (
	// NoReward: the wheel landed on the zero-amount entry. Terminal, no
	// settlement request is issued.
	NoReward OutcomeStatus = iota
	// RewardPending: the settlement request is in flight.
	RewardPending
	// RewardSettled: the backend confirmed the payout with a tx reference.
	RewardSettled
	// RewardFailed: the settlement request failed. The attempt is not
	// retried and the consumed spin is not refunded.
	RewardFailed
)

// PurchasePhase is the lifecycle phase of the spin-purchase sub-flow.
type PurchasePhase int

const (
	PurchaseNone PurchasePhase = iota
	PurchaseAwaitingSignature
	PurchaseAwaitingConfirmation
	PurchaseConfirmed
	PurchaseRejected
)

// SpinAttempt is one initiated spin. The prize index is drawn exactly once,
// before the animation starts, and is immutable for the attempt's lifetime.
type SpinAttempt struct {
	ID         string
	Identity   string
	PrizeIndex int

	// allowance observed at spin start, reused when consumption is recorded
	allowance int
}

// SpinOutcome is the resolved result of a spin attempt.
type SpinOutcome struct {
	AttemptID  string
	PrizeIndex int
	Prize      PrizeTableEntry
	Status     OutcomeStatus
	Committed  bool
	TxHash     string
	Remaining  int
}

// Coordinator sequences the spin flow (draw, animation completion,
// entitlement consumption, settlement) and the independent purchase flow
// (payment, confirmation, credit). The two sub-flows may be pending
// simultaneously; they touch disjoint sides of the entitlement update.
type Coordinator struct {
	table      PrizeTable
	selector   *Selector
	store      *EntitlementStore
	chain      ChainReader
	settlement SettlementBackend
	payment    PaymentSubmitter
	receipts   ReceiptWaiter

	spinsPerAsset  int
	purchaseCredit int
	onSettled      func()

	mu            sync.Mutex
	spinPhase     SpinPhase
	current       *SpinAttempt
	purchasePhase PurchasePhase
	purchaseTx    string

	logger zerolog.Logger
}

// CoordinatorOptions configures a Coordinator.
type CoordinatorOptions struct {
	Table      PrizeTable
	Selector   *Selector
	Store      *EntitlementStore
	Chain      ChainReader
	Settlement SettlementBackend
	Payment    PaymentSubmitter
	Receipts   ReceiptWaiter

	// SpinsPerAsset defaults to the stock SpinsPerAsset when zero.
	SpinsPerAsset int

	// PurchaseCredit defaults to DefaultPurchaseCredit when zero.
	PurchaseCredit int

	// OnSettled is invoked after a reward settles, so the winners feed can
	// be refreshed. May be nil.
	OnSettled func()

	Logger zerolog.Logger
}

// NewCoordinator creates a coordinator. The prize table is validated once
// here; a broken table is a construction error, not a draw-time surprise.
func NewCoordinator(opts CoordinatorOptions) (*Coordinator, error) {
	if err := opts.Table.Validate(); err != nil {
		return nil, err
	}
	perAsset := opts.SpinsPerAsset
	if perAsset <= 0 {
		perAsset = SpinsPerAsset
	}
	credit := opts.PurchaseCredit
	if credit <= 0 {
		credit = DefaultPurchaseCredit
	}
	selector := opts.Selector
	if selector == nil {
		selector = NewSelector(nil)
	}

	return &Coordinator{
		table:          opts.Table,
		selector:       selector,
		store:          opts.Store,
		chain:          opts.Chain,
		settlement:     opts.Settlement,
		payment:        opts.Payment,
		receipts:       opts.Receipts,
		spinsPerAsset:  perAsset,
		purchaseCredit: credit,
		onSettled:      opts.OnSettled,
		logger:         opts.Logger.With().Str("component", "coordinator").Logger(),
	}, nil
}

// SpinPhase returns the current spin sub-flow phase.
func (c *Coordinator) SpinPhase() SpinPhase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spinPhase
}

// PurchasePhase returns the current purchase sub-flow phase.
func (c *Coordinator) PurchasePhase() PurchasePhase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.purchasePhase
}

// allowanceFor reads the held-asset balance and derives today's allowance.
// An unreadable balance counts as zero assets, not as an error.
func (c *Coordinator) allowanceFor(ctx context.Context, identity string) int {
	held, err := c.chain.HeldAssetCount(ctx, identity)
	if err != nil {
		c.logger.Warn().Err(err).Str("address", identity).Msg("asset balance unavailable, treating as zero")
		held = 0
	}
	return ComputeAllowance(held, c.spinsPerAsset)
}

// SpinsLeft returns the remaining spins for identity today.
func (c *Coordinator) SpinsLeft(ctx context.Context, identity string) int {
	return c.store.Remaining(ctx, identity, c.allowanceFor(ctx, identity))
}

// BeginSpin starts a spin attempt: it guards against concurrent spins and
// exhausted entitlement, draws the prize index, and hands the attempt to
// the caller so the wheel animation can target the drawn segment.
func (c *Coordinator) BeginSpin(ctx context.Context, identity string) (*SpinAttempt, error) {
	if IsBanned(identity) {
		return nil, errors.New(errors.ErrAddressBanned, "this address is not eligible to spin")
	}

	c.mu.Lock()
	if c.spinPhase != SpinIdle {
		c.mu.Unlock()
		return nil, errors.New(errors.ErrSpinInProgress, "a spin is already in progress")
	}
	// Reserve the flow before the chain read so a rapid double-click cannot
	// start a second draw while the first balance query is in flight.
	c.spinPhase = SpinSpinning
	c.mu.Unlock()

	allowance := c.allowanceFor(ctx, identity)
	if left := c.store.Remaining(ctx, identity, allowance); left <= 0 {
		c.mu.Lock()
		c.spinPhase = SpinIdle
		c.mu.Unlock()
		return nil, errors.New(errors.ErrNoSpinsLeft, "no spins left today")
	}

	attempt := &SpinAttempt{
		ID:         uuid.NewString(),
		Identity:   identity,
		PrizeIndex: c.selector.Draw(c.table),
		allowance:  allowance,
	}

	c.mu.Lock()
	c.current = attempt
	c.mu.Unlock()

	c.logger.Info().
		Str("spin_id", attempt.ID).
		Str("address", identity).
		Int("prize_index", attempt.PrizeIndex).
		Msg("spin started")

	return attempt, nil
}

// FinishSpin resolves a spin after the animation reports completion.
// reportedIndex is the index echoed back by the animation; only the index
// drawn at BeginSpin is trusted, a mismatch is logged and ignored.
//
// Ordering is strict: consumption is recorded before the settlement request
// is issued, and it is never rolled back, even when settlement fails.
func (c *Coordinator) FinishSpin(ctx context.Context, attemptID string, reportedIndex int) (*SpinOutcome, error) {
	c.mu.Lock()
	if c.spinPhase != SpinSpinning || c.current == nil || c.current.ID != attemptID {
		c.mu.Unlock()
		return nil, errors.New(errors.ErrInvalidRequest, "no matching spin to resolve")
	}
	attempt := c.current
	c.spinPhase = SpinResolving
	c.mu.Unlock()

	if reportedIndex != attempt.PrizeIndex {
		c.logger.Warn().
			Str("spin_id", attempt.ID).
			Int("reported", reportedIndex).
			Int("drawn", attempt.PrizeIndex).
			Msg("animation echoed a different index, using drawn index")
	}

	prize := c.table[attempt.PrizeIndex]
	left := c.store.RecordSpin(ctx, attempt.Identity, attempt.allowance)

	outcome := &SpinOutcome{
		AttemptID:  attempt.ID,
		PrizeIndex: attempt.PrizeIndex,
		Prize:      prize,
		Remaining:  left,
	}

	if !prize.IsReward() {
		outcome.Status = NoReward
		c.finishAttempt()
		c.logger.Info().Str("spin_id", attempt.ID).Msg("no reward")
		return outcome, nil
	}

	outcome.Status = RewardPending
	txHash, err := c.settlement.Settle(ctx, attempt.Identity, prize)
	if err != nil || txHash == "" {
		outcome.Status = RewardFailed
		c.finishAttempt()
		c.logger.Error().
			Err(err).
			Str("spin_id", attempt.ID).
			Str("prize", prize.Label).
			Msg("settlement failed, spin remains consumed")
		return outcome, errors.Wrap(err, errors.ErrSettlementFailed, "prize settlement failed")
	}

	outcome.Status = RewardSettled
	outcome.Committed = true
	outcome.TxHash = txHash
	c.finishAttempt()

	c.logger.Info().
		Str("spin_id", attempt.ID).
		Str("prize", prize.Label).
		Str("tx_hash", txHash).
		Msg("reward settled")

	if c.onSettled != nil {
		c.onSettled()
	}

	return outcome, nil
}

func (c *Coordinator) finishAttempt() {
	c.mu.Lock()
	c.spinPhase = SpinIdle
	c.current = nil
	c.mu.Unlock()
}

// cancellation phrases wallets put in their rejection errors
var rejectionPhrases = []string{"User rejected", "User cancelled"}

func isUserRejection(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, phrase := range rejectionPhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

// Purchase runs the spin-purchase sub-flow: submit the fixed-price payment,
// wait for confirmation, then credit the purchased spins. It returns the
// payment tx hash and the updated remaining count.
//
// A user declining to sign surfaces as ErrPaymentRejected with a friendlier
// message; every other failure is ErrPaymentFailed. Entitlement is only
// touched on confirmation.
func (c *Coordinator) Purchase(ctx context.Context, identity string) (string, int, error) {
	c.mu.Lock()
	if c.purchasePhase == PurchaseAwaitingSignature || c.purchasePhase == PurchaseAwaitingConfirmation {
		c.mu.Unlock()
		return "", 0, errors.New(errors.ErrPurchasePending, "a purchase is already in progress")
	}
	c.purchasePhase = PurchaseAwaitingSignature
	c.purchaseTx = ""
	c.mu.Unlock()

	txHash, err := c.payment.SubmitPayment(ctx, identity)
	if err != nil {
		c.setPurchasePhase(PurchaseRejected)
		if isUserRejection(err) {
			c.logger.Info().Str("address", identity).Msg("purchase rejected by user")
			return "", 0, errors.Wrap(err, errors.ErrPaymentRejected, "transaction rejected by user")
		}
		c.logger.Error().Err(err).Str("address", identity).Msg("payment submission failed")
		return "", 0, errors.Wrap(err, errors.ErrPaymentFailed, "error processing transaction")
	}

	c.mu.Lock()
	c.purchasePhase = PurchaseAwaitingConfirmation
	c.purchaseTx = txHash
	c.mu.Unlock()

	if err := c.receipts.WaitConfirmed(ctx, txHash); err != nil {
		c.setPurchasePhase(PurchaseRejected)
		c.logger.Error().Err(err).Str("tx_hash", txHash).Msg("payment confirmation failed")
		return txHash, 0, errors.Wrap(err, errors.ErrPaymentFailed, "payment transaction was not confirmed")
	}

	left := c.store.ApplyPurchaseCredit(ctx, identity, c.allowanceFor(ctx, identity), c.purchaseCredit)
	c.setPurchasePhase(PurchaseConfirmed)

	c.logger.Info().
		Str("address", identity).
		Str("tx_hash", txHash).
		Int("remaining", left).
		Msg("purchase confirmed")

	return txHash, left, nil
}

func (c *Coordinator) setPurchasePhase(phase PurchasePhase) {
	c.mu.Lock()
	c.purchasePhase = phase
	c.mu.Unlock()
}
