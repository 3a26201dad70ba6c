package wheel

import "context"

// ChainReader supplies the held-asset count backing the daily allowance.
// Implementations query the membership NFT contract; an unknown balance is
// mapped to zero by the caller, not treated as fatal.
type ChainReader interface {
	HeldAssetCount(ctx context.Context, address string) (int, error)
}

// SettlementBackend executes the on-chain payout for a won prize and
// returns the payout transaction hash. A response without a transaction
// reference is an error.
type SettlementBackend interface {
	Settle(ctx context.Context, address string, prize PrizeTableEntry) (txHash string, err error)
}

// WinnersSource fetches the recent-winners list, most-recent-first.
type WinnersSource interface {
	Fetch(ctx context.Context) ([]WinnerRecord, error)
}

// PaymentSubmitter submits the fixed-price spin-purchase payment to the
// fixed recipient. Signing is wallet-owned; a user declining to sign is
// reported as an error whose text carries the wallet's cancellation phrase.
type PaymentSubmitter interface {
	SubmitPayment(ctx context.Context, address string) (txHash string, err error)
}

// ReceiptWaiter blocks until the given transaction is mined, returning an
// error if it reverted or the wait timed out.
type ReceiptWaiter interface {
	WaitConfirmed(ctx context.Context, txHash string) error
}
