package wallet

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTokenRPC struct {
	tokenAccounts []*rpc.TokenAccount
	accounts      map[solana.PublicKey]*rpc.Account
}

func (s *stubTokenRPC) GetTokenAccountsByOwner(_ context.Context, _ solana.PublicKey, _ *rpc.GetTokenAccountsConfig, _ *rpc.GetTokenAccountsOpts) (*rpc.GetTokenAccountsResult, error) {
	return &rpc.GetTokenAccountsResult{Value: s.tokenAccounts}, nil
}

func (s *stubTokenRPC) GetAccountInfo(_ context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	return &rpc.GetAccountInfoResult{Value: s.accounts[account]}, nil
}

// accountData wraps raw bytes the way the RPC delivers them with base64
// encoding requested.
func accountData(t *testing.T, raw []byte) *rpc.DataBytesOrJSON {
	t.Helper()

	payload, err := json.Marshal([]string{base64.StdEncoding.EncodeToString(raw), "base64"})
	require.NoError(t, err)

	data := new(rpc.DataBytesOrJSON)
	require.NoError(t, json.Unmarshal(payload, data))
	return data
}

// mintData builds mint account bytes with the given decimals.
func mintData(decimals uint8) []byte {
	data := make([]byte, 82)
	data[44] = decimals
	return data
}

func tokenAccountData(t *testing.T, mint, owner solana.PublicKey, amt uint64) []byte {
	t.Helper()

	ta := token.Account{Mint: mint, Owner: owner, Amount: amt}
	buf := new(bytes.Buffer)
	require.NoError(t, bin.NewBinEncoder(buf).Encode(ta))
	return buf.Bytes()
}

func TestMintDecimals(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	stub := &stubTokenRPC{
		accounts: map[solana.PublicKey]*rpc.Account{
			mint: {Data: accountData(t, mintData(6))},
		},
	}

	decimals, err := NewService(stub).MintDecimals(context.Background(), mint)
	require.NoError(t, err)
	assert.Equal(t, uint8(6), decimals)
}

func TestMintDecimals_NotFound(t *testing.T) {
	stub := &stubTokenRPC{accounts: map[solana.PublicKey]*rpc.Account{}}

	_, err := NewService(stub).MintDecimals(context.Background(), solana.NewWallet().PublicKey())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMintDecimals_TruncatedData(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	stub := &stubTokenRPC{
		accounts: map[solana.PublicKey]*rpc.Account{
			mint: {Data: accountData(t, make([]byte, 10))},
		},
	}

	_, err := NewService(stub).MintDecimals(context.Background(), mint)
	require.Error(t, err)
}

func TestListBalances(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	holding := solana.NewWallet().PublicKey()
	junk := solana.NewWallet().PublicKey()

	stub := &stubTokenRPC{
		tokenAccounts: []*rpc.TokenAccount{
			{
				Pubkey:  holding,
				Account: rpc.Account{Data: accountData(t, tokenAccountData(t, mint, owner, 5_000_000))},
			},
			{
				// Too short to be a token account; listing skips it.
				Pubkey:  junk,
				Account: rpc.Account{Data: accountData(t, []byte{0x01, 0x02})},
			},
		},
		accounts: map[solana.PublicKey]*rpc.Account{
			mint: {Data: accountData(t, mintData(6))},
		},
	}

	balances, err := NewService(stub).ListBalances(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, balances, 1)

	assert.Equal(t, mint, balances[0].Mint)
	assert.Equal(t, holding, balances[0].TokenAccount)
	assert.Equal(t, uint64(5_000_000), balances[0].Amount)
	assert.Equal(t, uint8(6), balances[0].Decimals)
}
