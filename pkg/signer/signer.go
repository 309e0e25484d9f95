// Package signer holds the signing capability boundary. The pipeline hands
// an unsigned transaction across this boundary and gets signatures back;
// key material never crosses in the other direction.
package signer

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"solpay/pkg/types"
)

// Signer is the externally supplied signing capability. Implementations
// attach signatures in place; a signed transaction must not be re-signed.
type Signer interface {
	// PublicKey returns the fee-payer identity this signer controls.
	PublicKey() solana.PublicKey

	// SignTransaction signs the transaction's message. Implementations
	// backed by an interactive wallet return types.ErrUserRejected when
	// the user declines.
	SignTransaction(ctx context.Context, tx *solana.Transaction) error
}

// Sign runs the capability against an unsigned transaction, mapping an
// absent capability to ErrSignerUnavailable and any decline to
// ErrUserRejected.
func Sign(ctx context.Context, s Signer, tx *solana.Transaction) error {
	if s == nil {
		return types.ErrSignerUnavailable
	}
	if err := s.SignTransaction(ctx, tx); err != nil {
		return fmt.Errorf("%w: %v", types.ErrUserRejected, err)
	}
	return nil
}

// LocalSigner signs with a locally held keypair. Used by the CLI; a
// browser-wallet deployment supplies its own Signer instead.
type LocalSigner struct {
	privateKey solana.PrivateKey
	publicKey  solana.PublicKey
}

// NewLocalSigner loads a keypair from a solana-keygen JSON file.
func NewLocalSigner(keypairPath string) (*LocalSigner, error) {
	privateKey, err := solana.PrivateKeyFromSolanaKeygenFile(keypairPath)
	if err != nil {
		return nil, fmt.Errorf("load keypair: %w", err)
	}
	return &LocalSigner{privateKey: privateKey, publicKey: privateKey.PublicKey()}, nil
}

// NewLocalSignerFromBase58 builds a signer from a Base58-encoded private key.
func NewLocalSignerFromBase58(key string) (*LocalSigner, error) {
	privateKey, err := solana.PrivateKeyFromBase58(key)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return &LocalSigner{privateKey: privateKey, publicKey: privateKey.PublicKey()}, nil
}

// PublicKey returns the signer's public identity.
func (s *LocalSigner) PublicKey() solana.PublicKey {
	return s.publicKey
}

// SignTransaction signs the transaction for the key this signer controls.
func (s *LocalSigner) SignTransaction(_ context.Context, tx *solana.Transaction) error {
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.publicKey) {
			return &s.privateKey
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	return nil
}
