package cmd

import (
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"solpay/config"
	"solpay/pkg/builder"
	"solpay/pkg/client"
	"solpay/pkg/payment"
	"solpay/pkg/signer"
	"solpay/pkg/submit"
	"solpay/pkg/types"
)

// pipeline bundles the wired-up components a command needs.
type pipeline struct {
	orchestrator *payment.Orchestrator
	engine       *submit.Engine
	rpcClient    *rpc.Client
	aggregator   *client.JupiterClient
	signer       signer.Signer
}

// newPipeline wires the payment pipeline from configuration. The signer is
// nil when no key is configured; estimate and status still work, pay fails
// with a clear message.
func newPipeline(cfg *config.Config, verbose bool, onState func(types.PayState)) (*pipeline, error) {
	log := zap.NewNop()
	if verbose {
		var err error
		log, err = zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
	}

	aggregator := client.NewJupiterClient(cfg.AggregatorBaseURL, cfg.RequestTimeout)
	rpcClient := rpc.New(cfg.RPCUrl)

	var sgn signer.Signer
	switch {
	case cfg.KeypairPath != "":
		s, err := signer.NewLocalSigner(cfg.KeypairPath)
		if err != nil {
			return nil, err
		}
		sgn = s
	case cfg.PrivateKey != "":
		s, err := signer.NewLocalSignerFromBase58(cfg.PrivateKey)
		if err != nil {
			return nil, err
		}
		sgn = s
	}

	engine := submit.New(rpcClient,
		submit.WithSkipPreflight(cfg.SkipPreflight),
		submit.WithPreflightCommitment(commitmentFromString(cfg.Commitment)),
		submit.WithLogger(log),
	)

	orchestrator := payment.New(payment.Options{
		Aggregator:       aggregator,
		Builder:          builder.New(aggregator, rpcClient),
		Signer:           sgn,
		Submitter:        engine,
		OutputMint:       cfg.OutputMint,
		DefaultInputMint: cfg.DefaultInputMint,
		SlippageBps:      cfg.SlippageBps,
		StageTimeout:     cfg.RequestTimeout,
		OnState:          onState,
		Logger:           log,
	})

	return &pipeline{
		orchestrator: orchestrator,
		engine:       engine,
		rpcClient:    rpcClient,
		aggregator:   aggregator,
		signer:       sgn,
	}, nil
}

// commitmentFromString maps a configured commitment level to the RPC type.
func commitmentFromString(commitment string) rpc.CommitmentType {
	switch commitment {
	case "processed":
		return rpc.CommitmentProcessed
	case "confirmed":
		return rpc.CommitmentConfirmed
	default:
		return rpc.CommitmentFinalized
	}
}

// mustPublicKey parses a Base58 account address or exits with an error.
func mustPublicKey(address string) solana.PublicKey {
	key, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid account address %q: %v\n", address, err)
		os.Exit(1)
	}
	return key
}
