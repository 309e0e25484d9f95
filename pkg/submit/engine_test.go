package submit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solpay/pkg/types"
)

// stubLedger plays back canned RPC responses.
type stubLedger struct {
	sig         solana.Signature
	sendErrs    []error // per-call; nil entry means success
	sendCalls   int
	statusSeq   [][]*rpc.SignatureStatusesResult // per-call; last entry repeats
	statusCalls int
	blockHeight uint64
}

func (s *stubLedger) SendRawTransactionWithOpts(_ context.Context, _ []byte, _ rpc.TransactionOpts) (solana.Signature, error) {
	i := s.sendCalls
	s.sendCalls++
	if i < len(s.sendErrs) && s.sendErrs[i] != nil {
		return solana.Signature{}, s.sendErrs[i]
	}
	return s.sig, nil
}

func (s *stubLedger) GetSignatureStatuses(_ context.Context, _ bool, _ ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	var value []*rpc.SignatureStatusesResult
	if len(s.statusSeq) > 0 {
		i := s.statusCalls
		if i >= len(s.statusSeq) {
			i = len(s.statusSeq) - 1
		}
		value = s.statusSeq[i]
	}
	s.statusCalls++
	return &rpc.GetSignatureStatusesResult{Value: value}, nil
}

func (s *stubLedger) GetBlockHeight(_ context.Context, _ rpc.CommitmentType) (uint64, error) {
	return s.blockHeight, nil
}

func signedTransfer(t *testing.T) *solana.Transaction {
	t.Helper()

	wallet := solana.NewWallet()
	ix := system.NewTransferInstruction(1_000, wallet.PublicKey(), solana.NewWallet().PublicKey()).Build()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		solana.Hash(solana.NewWallet().PublicKey()),
		solana.TransactionPayer(wallet.PublicKey()),
	)
	require.NoError(t, err)

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(wallet.PublicKey()) {
			return &wallet.PrivateKey
		}
		return nil
	})
	require.NoError(t, err)
	return tx
}

func testSignature() solana.Signature {
	var sig solana.Signature
	sig[0] = 0x42
	return sig
}

func statusOf(conf rpc.ConfirmationStatusType, txErr interface{}) []*rpc.SignatureStatusesResult {
	return []*rpc.SignatureStatusesResult{{ConfirmationStatus: conf, Err: txErr}}
}

func TestSubmit(t *testing.T) {
	ledger := &stubLedger{sig: testSignature()}
	e := New(ledger)

	sig, err := e.Submit(context.Background(), signedTransfer(t))
	require.NoError(t, err)
	assert.Equal(t, testSignature(), sig)
	assert.Equal(t, 1, ledger.sendCalls)
}

func TestSubmit_RetriesTransientFailure(t *testing.T) {
	ledger := &stubLedger{
		sig:      testSignature(),
		sendErrs: []error{errors.New("connection reset"), errors.New("timeout"), nil},
	}
	e := New(ledger, WithBroadcastDelay(time.Millisecond))

	sig, err := e.Submit(context.Background(), signedTransfer(t))
	require.NoError(t, err)
	assert.Equal(t, testSignature(), sig)
	assert.Equal(t, 3, ledger.sendCalls)
}

func TestSubmit_BoundedRetries(t *testing.T) {
	errs := make([]error, MaxBroadcastAttempts+3)
	for i := range errs {
		errs[i] = errors.New("node unreachable")
	}
	ledger := &stubLedger{sendErrs: errs}
	e := New(ledger, WithBroadcastDelay(time.Millisecond))

	_, err := e.Submit(context.Background(), signedTransfer(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrBroadcastFailed))
	assert.Equal(t, MaxBroadcastAttempts, ledger.sendCalls)
}

func TestSubmit_SameBytesSameSignature(t *testing.T) {
	ledger := &stubLedger{sig: testSignature()}
	e := New(ledger)
	tx := signedTransfer(t)

	first, err := e.Submit(context.Background(), tx)
	require.NoError(t, err)
	second, err := e.Submit(context.Background(), tx)
	require.NoError(t, err)

	// Re-submitting identical signed bytes resolves to the same
	// transaction identifier; the network deduplicates, nothing is
	// spent twice.
	assert.Equal(t, first, second)
}

func TestAwaitFinality(t *testing.T) {
	ledger := &stubLedger{
		statusSeq: [][]*rpc.SignatureStatusesResult{
			nil,
			statusOf(rpc.ConfirmationStatusConfirmed, nil),
			statusOf(rpc.ConfirmationStatusFinalized, nil),
		},
	}
	e := New(ledger, WithPollInterval(time.Millisecond))

	state, err := e.AwaitFinality(context.Background(), testSignature(), 500)
	require.NoError(t, err)
	assert.Equal(t, types.CommitmentFinalized, state)
}

func TestAwaitFinality_ExecutionFailed(t *testing.T) {
	ledger := &stubLedger{
		statusSeq: [][]*rpc.SignatureStatusesResult{
			statusOf(rpc.ConfirmationStatusConfirmed, map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}}),
		},
	}
	e := New(ledger, WithPollInterval(time.Millisecond))

	state, err := e.AwaitFinality(context.Background(), testSignature(), 500)
	require.Error(t, err)
	assert.Equal(t, types.CommitmentFailed, state)
	assert.True(t, errors.Is(err, types.ErrExecutionFailed))
}

func TestAwaitFinality_Expired(t *testing.T) {
	ledger := &stubLedger{blockHeight: 501}
	e := New(ledger, WithPollInterval(time.Millisecond))

	state, err := e.AwaitFinality(context.Background(), testSignature(), 500)
	require.Error(t, err)
	assert.Equal(t, types.CommitmentExpired, state)
	assert.True(t, errors.Is(err, types.ErrExpired))
}

func TestAwaitFinality_Cancellable(t *testing.T) {
	// Forever pending, window not yet lapsed.
	ledger := &stubLedger{blockHeight: 100}
	e := New(ledger, WithPollInterval(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := e.AwaitFinality(ctx, testSignature(), 500)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestStatus(t *testing.T) {
	ledger := &stubLedger{
		statusSeq: [][]*rpc.SignatureStatusesResult{
			statusOf(rpc.ConfirmationStatusConfirmed, nil),
		},
	}
	e := New(ledger)

	state, err := e.Status(context.Background(), testSignature())
	require.NoError(t, err)
	assert.Equal(t, types.CommitmentConfirmed, state)
}
