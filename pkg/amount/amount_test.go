package amount

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solpay/pkg/types"
)

func TestToAtomic(t *testing.T) {
	tests := []struct {
		name     string
		ui       string
		decimals int32
		want     uint64
		wantErr  error
	}{
		{name: "one usdc", ui: "1.0", decimals: 6, want: 1_000_000},
		{name: "fractional usdc", ui: "25.50", decimals: 6, want: 25_500_000},
		{name: "one sol", ui: "1", decimals: 9, want: 1_000_000_000},
		{name: "smallest unit", ui: "0.000001", decimals: 6, want: 1},
		{name: "zero", ui: "0", decimals: 6, wantErr: types.ErrInvalidAmount},
		{name: "negative", ui: "-1", decimals: 6, wantErr: types.ErrInvalidAmount},
		{name: "not a number", ui: "abc", decimals: 6, wantErr: types.ErrInvalidAmount},
		{name: "empty", ui: "", decimals: 6, wantErr: types.ErrInvalidAmount},
		{name: "too precise", ui: "0.0000001", decimals: 6, wantErr: types.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToAtomic(tt.ui, tt.decimals)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat(t *testing.T) {
	// 7,000,000 lamports of a 9-decimal asset displays as 0.007000.
	assert.Equal(t, "0.007000", Format(7_000_000, 9))
	assert.Equal(t, "1.000000", Format(1_000_000, 6))
	assert.Equal(t, "0.000001", Format(1, 6))
}

func TestRoundTrip(t *testing.T) {
	atomic, err := ToAtomic("0.007", 9)
	require.NoError(t, err)
	assert.Equal(t, uint64(7_000_000), atomic)
	assert.Equal(t, "0.007", FromAtomic(atomic, 9).String())
}

func TestCheckPositive(t *testing.T) {
	require.NoError(t, CheckPositive(1))
	err := CheckPositive(0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrInvalidAmount))
}
