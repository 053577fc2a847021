package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shkulipa/auction-contract/auction"
)

const (
	buyer    = auction.AccountID("buyer")
	seller   = auction.AccountID("seller")
	treasury = auction.AccountID("treasury")
)

func TestDepositAndBalance(t *testing.T) {
	l := New()

	require.NoError(t, l.Deposit(buyer, 500))
	require.NoError(t, l.Deposit(buyer, 250))
	assert.Equal(t, auction.Amount(750), l.Balance(buyer))
	assert.Equal(t, auction.Amount(0), l.Balance(seller))

	assert.ErrorIs(t, l.Deposit(buyer, -1), ErrNegativeAmount)
}

func TestSettle_AppliesAllEntries(t *testing.T) {
	ctx := context.Background()
	l := New()
	require.NoError(t, l.Deposit(buyer, 1000))

	// A full buy-shaped batch: payment in escrow, seller paid, refund out.
	err := l.Settle(ctx, []auction.Entry{
		{From: buyer, To: treasury, Amount: 1000},
		{From: treasury, To: seller, Amount: 810},
		{From: treasury, To: buyer, Amount: 100},
	})
	require.NoError(t, err)

	assert.Equal(t, auction.Amount(100), l.Balance(buyer))
	assert.Equal(t, auction.Amount(810), l.Balance(seller))
	assert.Equal(t, auction.Amount(90), l.Balance(treasury))

	txs := l.Transactions()
	require.Len(t, txs, 1)
	assert.NotEmpty(t, txs[0].ID)
	assert.Len(t, txs[0].Entries, 3)
}

func TestSettle_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	l := New()
	require.NoError(t, l.Deposit(buyer, 100))
	require.NoError(t, l.Deposit(treasury, 50))

	// Second entry overdraws the treasury; the first must not stick.
	err := l.Settle(ctx, []auction.Entry{
		{From: buyer, To: treasury, Amount: 100},
		{From: treasury, To: seller, Amount: 200},
	})
	require.ErrorIs(t, err, ErrInsufficientBalance)

	assert.Equal(t, auction.Amount(100), l.Balance(buyer))
	assert.Equal(t, auction.Amount(50), l.Balance(treasury))
	assert.Equal(t, auction.Amount(0), l.Balance(seller))
	assert.Empty(t, l.Transactions())
}

func TestSettle_LaterEntriesSpendEarlierCredits(t *testing.T) {
	// The escrow account starts empty but fronts the seller payout from
	// the payment received earlier in the same batch.
	ctx := context.Background()
	l := New()
	require.NoError(t, l.Deposit(buyer, 300))

	err := l.Settle(ctx, []auction.Entry{
		{From: buyer, To: treasury, Amount: 300},
		{From: treasury, To: seller, Amount: 270},
		{From: treasury, To: buyer, Amount: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, auction.Amount(30), l.Balance(treasury))
}

func TestSettle_RejectsNegativeEntries(t *testing.T) {
	l := New()
	require.NoError(t, l.Deposit(buyer, 100))

	err := l.Settle(context.Background(), []auction.Entry{
		{From: buyer, To: seller, Amount: -10},
	})
	require.ErrorIs(t, err, ErrNegativeAmount)
	assert.Equal(t, auction.Amount(100), l.Balance(buyer))
}

func TestSettle_InsufficientOpeningBalance(t *testing.T) {
	l := New()

	err := l.Settle(context.Background(), []auction.Entry{
		{From: buyer, To: seller, Amount: 1},
	})
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}
