package types

import "encoding/json"

// Quote is an exact-output price quote from the aggregator.
// The Route field carries the aggregator's full quote response verbatim;
// it is opaque to this system and is handed back unchanged when the route
// is expanded into a transaction. A quote backs exactly one transaction.
type Quote struct {
	InputMint  string
	OutputMint string
	// Amounts are atomic integers in each asset's smallest unit.
	InAmount  uint64
	OutAmount uint64
	Route     json.RawMessage
}

// PaymentRequest is the user's intent for a single pipeline run.
// It is never persisted.
type PaymentRequest struct {
	// OutputAmount is the desired merchant-side amount in the output
	// asset's smallest unit.
	OutputAmount uint64
	// InputMint is the asset the payer spends. Empty means the configured
	// default.
	InputMint string
	// DestinationAccount is the merchant's token account address for the
	// output asset.
	DestinationAccount string
}

// CommitmentState is the lifecycle of a broadcast transaction as reported
// by the network.
type CommitmentState string

const (
	CommitmentPending   CommitmentState = "pending"
	CommitmentConfirmed CommitmentState = "confirmed"
	CommitmentFinalized CommitmentState = "finalized"
	CommitmentExpired   CommitmentState = "expired"
	CommitmentFailed    CommitmentState = "failed"
)

// Terminal reports whether the state can no longer change.
func (c CommitmentState) Terminal() bool {
	switch c {
	case CommitmentFinalized, CommitmentExpired, CommitmentFailed:
		return true
	default:
		return false
	}
}

// SubmissionResult describes a broadcast transaction. The state is only
// ever updated by re-querying the network.
type SubmissionResult struct {
	TransactionID string
	State         CommitmentState
}

// PayState is one step of the payment pipeline, reported to the caller for
// progress display. Each run moves strictly forward through these.
type PayState string

const (
	StateIdle       PayState = "idle"
	StateQuoting    PayState = "quoting"
	StateBuilding   PayState = "building"
	StateSigning    PayState = "signing"
	StateSubmitting PayState = "submitting"
	StateConfirming PayState = "confirming"
	StateSucceeded  PayState = "succeeded"
	StateFailed     PayState = "failed"
)
