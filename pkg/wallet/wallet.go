// Package wallet provides read-only views of a payer's token holdings.
package wallet

import (
	"context"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
)

// TokenRPC is the slice of the ledger RPC this package needs.
type TokenRPC interface {
	GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey, conf *rpc.GetTokenAccountsConfig, opts *rpc.GetTokenAccountsOpts) (*rpc.GetTokenAccountsResult, error)
	GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error)
}

// TokenBalance is one SPL token holding of a wallet.
type TokenBalance struct {
	Mint         solana.PublicKey
	TokenAccount solana.PublicKey
	Amount       uint64
	Decimals     uint8
}

// Service enumerates token accounts for display purposes.
type Service struct {
	rpcClient TokenRPC
}

// NewService creates a wallet read service.
func NewService(rpcClient TokenRPC) *Service {
	return &Service{rpcClient: rpcClient}
}

// ListBalances returns all SPL token balances held by owner.
func (s *Service) ListBalances(ctx context.Context, owner solana.PublicKey) ([]TokenBalance, error) {
	out, err := s.rpcClient.GetTokenAccountsByOwner(
		ctx,
		owner,
		&rpc.GetTokenAccountsConfig{ProgramId: solana.TokenProgramID.ToPointer()},
		&rpc.GetTokenAccountsOpts{Encoding: solana.EncodingBase64},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get token accounts: %w", err)
	}

	balances := make([]TokenBalance, 0, len(out.Value))
	for _, acc := range out.Value {
		var ta token.Account
		data := acc.Account.Data.GetBinary()
		if err := bin.NewBinDecoder(data).Decode(&ta); err != nil {
			// Skip accounts that are not standard token accounts.
			continue
		}

		decimals, err := s.MintDecimals(ctx, ta.Mint)
		if err != nil {
			return nil, err
		}

		balances = append(balances, TokenBalance{
			Mint:         ta.Mint,
			TokenAccount: acc.Pubkey,
			Amount:       ta.Amount,
			Decimals:     decimals,
		})
	}

	return balances, nil
}

// MintDecimals reads the decimals of a token mint.
// The decimals field sits at byte offset 44 of the mint account data.
func (s *Service) MintDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error) {
	accountInfo, err := s.rpcClient.GetAccountInfo(ctx, mint)
	if err != nil {
		return 0, fmt.Errorf("failed to get mint account info: %w", err)
	}
	if accountInfo.Value == nil {
		return 0, fmt.Errorf("mint account %s not found", mint)
	}

	data := accountInfo.Value.Data.GetBinary()
	if len(data) < 45 {
		return 0, fmt.Errorf("invalid mint account data for %s", mint)
	}

	return data[44], nil
}
