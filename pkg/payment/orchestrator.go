// Package payment sequences the quote → build → sign → submit → confirm
// pipeline and owns its state machine. It is the single place where
// component failures become user-facing messages.
package payment

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"solpay/pkg/amount"
	"solpay/pkg/builder"
	"solpay/pkg/signer"
	"solpay/pkg/types"
)

// DefaultStageTimeout bounds the quote and build stages. The confirm
// stage is bounded by blockhash expiry instead.
const DefaultStageTimeout = 15 * time.Second

// QuoteAggregator is the exact-output pricing capability.
// Implemented by client.JupiterClient.
type QuoteAggregator interface {
	ExactOutQuote(ctx context.Context, outputMint, inputMint string, outputAmount uint64, slippageBps int) (*types.Quote, error)
}

// TransactionBuilder turns a quote into an unsigned transaction.
type TransactionBuilder interface {
	Build(ctx context.Context, quote *types.Quote, payer solana.PublicKey, destinationAccount string) (*builder.UnsignedTransaction, error)
}

// Submitter broadcasts a signed transaction and waits for finality.
type Submitter interface {
	Submit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	AwaitFinality(ctx context.Context, sig solana.Signature, lastValidBlockHeight uint64) (types.CommitmentState, error)
}

// Orchestrator runs the payment pipeline. A single pay run may be active
// at a time; a second one is rejected rather than superseding the first.
type Orchestrator struct {
	aggregator QuoteAggregator
	builder    TransactionBuilder
	signer     signer.Signer
	submitter  Submitter

	outputMint       string
	defaultInputMint string
	slippageBps      int
	stageTimeout     time.Duration

	onState func(types.PayState)
	log     *zap.Logger

	paying atomic.Bool
}

// Options for creating an Orchestrator.
type Options struct {
	Aggregator QuoteAggregator
	Builder    TransactionBuilder
	Signer     signer.Signer // may be nil: Pay fails with ErrSignerUnavailable
	Submitter  Submitter

	OutputMint       string
	DefaultInputMint string
	SlippageBps      int
	StageTimeout     time.Duration

	// OnState, when set, receives every pipeline state transition.
	OnState func(types.PayState)
	Logger  *zap.Logger
}

// New creates a payment orchestrator.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		aggregator:       opts.Aggregator,
		builder:          opts.Builder,
		signer:           opts.Signer,
		submitter:        opts.Submitter,
		outputMint:       opts.OutputMint,
		defaultInputMint: opts.DefaultInputMint,
		slippageBps:      opts.SlippageBps,
		stageTimeout:     opts.StageTimeout,
		onState:          opts.OnState,
		log:              opts.Logger,
	}
	if o.stageTimeout <= 0 {
		o.stageTimeout = DefaultStageTimeout
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	return o
}

// Estimate asks how much of inputMint the payer would spend to produce
// exactly outputAmount of the output asset. Purely informational; no
// transaction is built.
func (o *Orchestrator) Estimate(ctx context.Context, outputAmount uint64, inputMint string) (*types.Quote, error) {
	if err := amount.CheckPositive(outputAmount); err != nil {
		return nil, wrapUserError(err)
	}
	if inputMint == "" {
		inputMint = o.defaultInputMint
	}

	ctx, cancel := context.WithTimeout(ctx, o.stageTimeout)
	defer cancel()

	quote, err := o.aggregator.ExactOutQuote(ctx, o.outputMint, inputMint, outputAmount, o.slippageBps)
	if err != nil {
		return nil, wrapUserError(err)
	}
	return quote, nil
}

// Pay runs the full pipeline for one payment request and returns the
// finalized transaction's identifier. Partial progress is discarded on any
// failure; the caller retries from the start.
func (o *Orchestrator) Pay(ctx context.Context, req types.PaymentRequest) (*types.SubmissionResult, error) {
	if !o.paying.CompareAndSwap(false, true) {
		return nil, wrapUserError(types.ErrPaymentInFlight)
	}
	defer o.paying.Store(false)

	result, err := o.run(ctx, req)
	if err != nil {
		o.setState(types.StateFailed)
		o.log.Warn("payment failed", zap.Error(err))
		return nil, wrapUserError(err)
	}
	o.setState(types.StateSucceeded)
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, req types.PaymentRequest) (*types.SubmissionResult, error) {
	// Fail before any network call when the request can never succeed.
	if err := amount.CheckPositive(req.OutputAmount); err != nil {
		return nil, err
	}
	if _, err := solana.PublicKeyFromBase58(req.DestinationAccount); err != nil {
		return nil, types.ErrInvalidDestination
	}
	if o.signer == nil {
		return nil, types.ErrSignerUnavailable
	}

	inputMint := req.InputMint
	if inputMint == "" {
		inputMint = o.defaultInputMint
	}
	payer := o.signer.PublicKey()

	o.setState(types.StateQuoting)
	quote, err := o.fetchQuote(ctx, inputMint, req.OutputAmount)
	if err != nil {
		return nil, err
	}

	o.setState(types.StateBuilding)
	unsigned, err := o.buildTx(ctx, quote, payer, req.DestinationAccount)
	if errors.Is(err, types.ErrRouteExpired) {
		// The price moved between quote and build. One fresh quote is
		// worth trying before giving up.
		o.log.Info("route expired during build, re-quoting once")
		o.setState(types.StateQuoting)
		quote, err = o.fetchQuote(ctx, inputMint, req.OutputAmount)
		if err != nil {
			return nil, err
		}
		o.setState(types.StateBuilding)
		unsigned, err = o.buildTx(ctx, quote, payer, req.DestinationAccount)
	}
	if err != nil {
		return nil, err
	}

	o.setState(types.StateSigning)
	if err := signer.Sign(ctx, o.signer, unsigned.Tx); err != nil {
		return nil, err
	}

	o.setState(types.StateSubmitting)
	sig, err := o.submitter.Submit(ctx, unsigned.Tx)
	if err != nil {
		return nil, err
	}
	o.log.Info("payment submitted",
		zap.String("signature", sig.String()),
		zap.Uint64("input_amount", quote.InAmount),
		zap.Uint64("output_amount", quote.OutAmount))

	o.setState(types.StateConfirming)
	state, err := o.submitter.AwaitFinality(ctx, sig, unsigned.LastValidBlockHeight)
	if err != nil {
		return nil, err
	}

	return &types.SubmissionResult{
		TransactionID: sig.String(),
		State:         state,
	}, nil
}

func (o *Orchestrator) fetchQuote(ctx context.Context, inputMint string, outputAmount uint64) (*types.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, o.stageTimeout)
	defer cancel()
	return o.aggregator.ExactOutQuote(ctx, o.outputMint, inputMint, outputAmount, o.slippageBps)
}

func (o *Orchestrator) buildTx(ctx context.Context, quote *types.Quote, payer solana.PublicKey, destination string) (*builder.UnsignedTransaction, error) {
	ctx, cancel := context.WithTimeout(ctx, o.stageTimeout)
	defer cancel()
	return o.builder.Build(ctx, quote, payer, destination)
}

func (o *Orchestrator) setState(state types.PayState) {
	if o.onState != nil {
		o.onState(state)
	}
}
