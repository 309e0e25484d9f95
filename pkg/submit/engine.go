// Package submit broadcasts signed transactions and tracks them to a
// terminal commitment state. It never mutates or re-signs a transaction:
// the same signed bytes are re-broadcast on transient failure, which the
// network deduplicates by transaction signature.
package submit

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"solpay/pkg/types"
)

const (
	// MaxBroadcastAttempts bounds re-broadcasts of the same signed bytes.
	MaxBroadcastAttempts = 5

	// BroadcastRetryDelay is the pause between broadcast attempts.
	BroadcastRetryDelay = 500 * time.Millisecond

	// PollInterval is how often commitment status is re-queried while
	// waiting for finality.
	PollInterval = 2 * time.Second
)

// LedgerRPC is the slice of the ledger RPC the engine needs.
type LedgerRPC interface {
	SendRawTransactionWithOpts(ctx context.Context, txBytes []byte, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
	GetBlockHeight(ctx context.Context, commitment rpc.CommitmentType) (uint64, error)
}

// Engine submits signed transactions and waits for finality.
type Engine struct {
	rpcClient           LedgerRPC
	skipPreflight       bool
	preflightCommitment rpc.CommitmentType
	pollInterval        time.Duration
	broadcastDelay      time.Duration
	log                 *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSkipPreflight disables the node-side simulation before broadcast.
func WithSkipPreflight(skip bool) Option {
	return func(e *Engine) { e.skipPreflight = skip }
}

// WithPreflightCommitment sets the commitment level the node simulates
// against before broadcast.
func WithPreflightCommitment(commitment rpc.CommitmentType) Option {
	return func(e *Engine) { e.preflightCommitment = commitment }
}

// WithPollInterval overrides the status polling interval.
func WithPollInterval(d time.Duration) Option {
	return func(e *Engine) { e.pollInterval = d }
}

// WithBroadcastDelay overrides the pause between broadcast attempts.
func WithBroadcastDelay(d time.Duration) Option {
	return func(e *Engine) { e.broadcastDelay = d }
}

// WithLogger attaches a structured logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New creates a submission engine on top of a ledger RPC client.
func New(rpcClient LedgerRPC, opts ...Option) *Engine {
	e := &Engine{
		rpcClient:           rpcClient,
		preflightCommitment: rpc.CommitmentConfirmed,
		pollInterval:        PollInterval,
		broadcastDelay:      BroadcastRetryDelay,
		log:                 zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Submit broadcasts the signed transaction with bounded retries of the
// exact same bytes. Re-submitting a transaction the network already has is
// harmless; it resolves to the same signature.
func (e *Engine) Submit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return solana.Signature{}, fmt.Errorf("serialize transaction: %w", err)
	}

	maxRetries := uint(MaxBroadcastAttempts)
	opts := rpc.TransactionOpts{
		SkipPreflight:       e.skipPreflight,
		PreflightCommitment: e.preflightCommitment,
		MaxRetries:          &maxRetries,
	}

	var sig solana.Signature
	err = retry.Do(
		func() error {
			var sendErr error
			sig, sendErr = e.rpcClient.SendRawTransactionWithOpts(ctx, raw, opts)
			if sendErr != nil {
				e.log.Warn("broadcast attempt failed", zap.Error(sendErr))
			}
			return sendErr
		},
		retry.Attempts(MaxBroadcastAttempts),
		retry.Delay(e.broadcastDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(error) bool { return ctx.Err() == nil }),
	)
	if err != nil {
		if ctx.Err() != nil {
			return solana.Signature{}, ctx.Err()
		}
		return solana.Signature{}, fmt.Errorf("%w: %v", types.ErrBroadcastFailed, err)
	}

	e.log.Info("transaction broadcast", zap.String("signature", sig.String()))
	return sig, nil
}

// AwaitFinality polls commitment status until the network reports the
// transaction finalized, failed, or its blockhash validity window lapsed.
// Cancelling the context stops polling; it cannot retract a transaction
// that is already in flight on the network.
func (e *Engine) AwaitFinality(ctx context.Context, sig solana.Signature, lastValidBlockHeight uint64) (types.CommitmentState, error) {
	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	for {
		state, detail, err := e.checkOnce(ctx, sig, lastValidBlockHeight)
		if err != nil {
			return types.CommitmentPending, err
		}

		switch state {
		case types.CommitmentFinalized:
			e.log.Info("transaction finalized", zap.String("signature", sig.String()))
			return state, nil
		case types.CommitmentFailed:
			return state, fmt.Errorf("%w: %s", types.ErrExecutionFailed, detail)
		case types.CommitmentExpired:
			return state, fmt.Errorf("%w: block height passed %d before finality", types.ErrExpired, lastValidBlockHeight)
		}

		select {
		case <-ctx.Done():
			return types.CommitmentPending, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Status returns the current commitment state of a transaction without
// waiting.
func (e *Engine) Status(ctx context.Context, sig solana.Signature) (types.CommitmentState, error) {
	state, _, err := e.checkOnce(ctx, sig, 0)
	return state, err
}

// checkOnce queries signature status and, when the transaction is still
// pending, whether its validity window has lapsed.
func (e *Engine) checkOnce(ctx context.Context, sig solana.Signature, lastValidBlockHeight uint64) (types.CommitmentState, string, error) {
	statuses, err := e.rpcClient.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return types.CommitmentPending, "", fmt.Errorf("failed to get signature status: %w", err)
	}

	var status *rpc.SignatureStatusesResult
	if statuses != nil && len(statuses.Value) > 0 {
		status = statuses.Value[0]
	}

	if status != nil {
		if status.Err != nil {
			return types.CommitmentFailed, fmt.Sprintf("%v", status.Err), nil
		}
		switch status.ConfirmationStatus {
		case rpc.ConfirmationStatusFinalized:
			return types.CommitmentFinalized, "", nil
		case rpc.ConfirmationStatusConfirmed:
			return types.CommitmentConfirmed, "", nil
		}
	}

	// Not finalized yet. An unknown signature past the validity window
	// will never land; a known one may still be making progress.
	if status == nil && lastValidBlockHeight > 0 {
		height, err := e.rpcClient.GetBlockHeight(ctx, rpc.CommitmentFinalized)
		if err != nil {
			return types.CommitmentPending, "", fmt.Errorf("failed to get block height: %w", err)
		}
		if height > lastValidBlockHeight {
			return types.CommitmentExpired, "", nil
		}
	}

	return types.CommitmentPending, "", nil
}
