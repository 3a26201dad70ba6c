package provider

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/isrealsanci/wheel-app/config"
	"github.com/rs/zerolog"
)

// balanceOfABI is the single read the allowance needs from the membership
// NFT contract.
const balanceOfABI = `[{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"type":"function"}]`

// ChainProvider reads the membership NFT balance backing the daily spin
// allowance and waits for payment transaction receipts. It implements
// wheel.ChainReader and wheel.ReceiptWaiter.
type ChainProvider struct {
	client   *ethclient.Client
	contract common.Address
	nftABI   abi.ABI

	receiptInterval time.Duration
	receiptTimeout  time.Duration

	logger zerolog.Logger
}

// NewChainProvider dials the configured RPC endpoint
func NewChainProvider(cfg *config.Config, logger zerolog.Logger) (*ChainProvider, error) {
	client, err := ethclient.Dial(cfg.Chain.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial chain rpc: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(balanceOfABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse nft abi: %w", err)
	}

	return &ChainProvider{
		client:          client,
		contract:        common.HexToAddress(cfg.Chain.NFTContract),
		nftABI:          parsed,
		receiptInterval: cfg.Chain.ReceiptInterval,
		receiptTimeout:  cfg.Chain.ReceiptTimeout,
		logger:          logger.With().Str("component", "chain_provider").Logger(),
	}, nil
}

// HeldAssetCount returns the number of membership NFTs the address holds.
// Callers map an error to a zero count; the allowance never fails hard on
// an unreadable balance.
func (p *ChainProvider) HeldAssetCount(ctx context.Context, address string) (int, error) {
	data, err := p.nftABI.Pack("balanceOf", common.HexToAddress(address))
	if err != nil {
		return 0, fmt.Errorf("failed to pack balanceOf call: %w", err)
	}

	out, err := p.client.CallContract(ctx, ethereum.CallMsg{
		To:   &p.contract,
		Data: data,
	}, nil)
	if err != nil {
		return 0, fmt.Errorf("balanceOf call failed: %w", err)
	}

	results, err := p.nftABI.Unpack("balanceOf", out)
	if err != nil || len(results) != 1 {
		return 0, fmt.Errorf("failed to unpack balanceOf result: %w", err)
	}

	balance, ok := results[0].(*big.Int)
	if !ok {
		return 0, fmt.Errorf("unexpected balanceOf result type %T", results[0])
	}

	count := int(balance.Int64())
	p.logger.Debug().Str("address", address).Int("held", count).Msg("nft balance read")
	return count, nil
}

// WaitConfirmed polls for the transaction receipt until the transaction is
// mined or the timeout elapses. A reverted transaction is an error.
func (p *ChainProvider) WaitConfirmed(ctx context.Context, txHash string) error {
	hash := common.HexToHash(txHash)

	ctx, cancel := context.WithTimeout(ctx, p.receiptTimeout)
	defer cancel()

	ticker := time.NewTicker(p.receiptInterval)
	defer ticker.Stop()

	for {
		receipt, err := p.client.TransactionReceipt(ctx, hash)
		if err == nil {
			if receipt.Status != ethtypes.ReceiptStatusSuccessful {
				return fmt.Errorf("transaction %s reverted", txHash)
			}
			p.logger.Debug().Str("tx_hash", txHash).Msg("transaction confirmed")
			return nil
		}
		if err != ethereum.NotFound {
			p.logger.Warn().Err(err).Str("tx_hash", txHash).Msg("receipt poll failed, retrying")
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for transaction %s: %w", txHash, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Close releases the underlying RPC connection
func (p *ChainProvider) Close() {
	p.client.Close()
}
