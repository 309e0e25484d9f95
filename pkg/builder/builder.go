package builder

import (
	"context"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"solpay/pkg/types"
)

// RouteExpander turns a quoted route into serialized transaction bytes.
// Implemented by the aggregator client.
type RouteExpander interface {
	SwapTransaction(ctx context.Context, quote *types.Quote, payer, destinationTokenAccount string) ([]byte, uint64, error)
}

// BlockhashRPC is the slice of the ledger RPC the builder needs.
type BlockhashRPC interface {
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
}

// UnsignedTransaction is a ledger-ready transaction plus the block height
// after which its blockhash is no longer valid for inclusion.
type UnsignedTransaction struct {
	Tx                   *solana.Transaction
	LastValidBlockHeight uint64
}

// Builder assembles an executable transaction from an accepted quote.
// Each quote is consumed by exactly one build; a stale quote must be
// re-requested, never reused.
type Builder struct {
	aggregator RouteExpander
	rpcClient  BlockhashRPC
}

// New creates a transaction builder.
func New(aggregator RouteExpander, rpcClient BlockhashRPC) *Builder {
	return &Builder{
		aggregator: aggregator,
		rpcClient:  rpcClient,
	}
}

// Build validates the destination, expands the quote's route and stamps a
// fresh recent blockhash so the validity window starts at build time, not
// quote time. The payer is the fee payer.
func (b *Builder) Build(ctx context.Context, quote *types.Quote, payer solana.PublicKey, destinationAccount string) (*UnsignedTransaction, error) {
	if _, err := solana.PublicKeyFromBase58(destinationAccount); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidDestination, err)
	}

	raw, lastValid, err := b.aggregator.SwapTransaction(ctx, quote, payer.String(), destinationAccount)
	if err != nil {
		return nil, err
	}

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}

	recent, err := b.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent blockhash: %w", err)
	}
	tx.Message.RecentBlockhash = recent.Value.Blockhash
	if recent.Value.LastValidBlockHeight > 0 {
		lastValid = recent.Value.LastValidBlockHeight
	}

	return &UnsignedTransaction{
		Tx:                   tx,
		LastValidBlockHeight: lastValid,
	}, nil
}
