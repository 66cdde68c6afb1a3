package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aimage-backend/fault"
	"aimage-backend/models"
)

func TestBuyCoins(t *testing.T) {
	ledger := newMemLedger()
	ledger.setBalance(1, 0)
	l := NewCoinLogic(ledger, 1)

	coins, err := l.BuyCoins(1, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(50), coins)

	entries := ledger.entriesFor(1)
	require.Len(t, entries, 1)
	assert.Equal(t, models.TxKindPurchase, entries[0].Kind)
	assert.Equal(t, int64(50), entries[0].Amount)
}

func TestBuyCoinsInvalidAmount(t *testing.T) {
	ledger := newMemLedger()
	ledger.setBalance(1, 0)
	l := NewCoinLogic(ledger, 1)

	_, err := l.BuyCoins(1, 0)
	assert.Equal(t, fault.ErrInvalidAmount, err)
	_, err = l.BuyCoins(1, -5)
	assert.Equal(t, fault.ErrInvalidAmount, err)
	assert.Empty(t, ledger.entriesFor(1))
}

func TestEarnCoinsDefaultReward(t *testing.T) {
	ledger := newMemLedger()
	ledger.setBalance(1, 0)
	l := NewCoinLogic(ledger, 1)

	coins, err := l.EarnCoins(1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), coins)

	entries := ledger.entriesFor(1)
	require.Len(t, entries, 1)
	assert.Equal(t, models.TxKindEarned, entries[0].Kind)
}

func TestDeductCoins(t *testing.T) {
	ledger := newMemLedger()
	ledger.setBalance(1, 30)
	l := NewCoinLogic(ledger, 1)

	coins, err := l.DeductCoins(1, 10, "promo expiry")
	require.NoError(t, err)
	assert.Equal(t, int64(20), coins)

	entries := ledger.entriesFor(1)
	require.Len(t, entries, 1)
	assert.Equal(t, models.TxKindSpend, entries[0].Kind)
	assert.Equal(t, int64(-10), entries[0].Amount)
}

func TestCoinHistoryNewestFirst(t *testing.T) {
	ledger := newMemLedger()
	ledger.setBalance(1, 0)
	l := NewCoinLogic(ledger, 1)

	_, err := l.BuyCoins(1, 20)
	require.NoError(t, err)
	_, err = l.EarnCoins(1, 0)
	require.NoError(t, err)
	_, err = l.DeductCoins(1, 5, "cleanup")
	require.NoError(t, err)

	entries, total, err := l.GetHistory(1, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, entries, 2)
	assert.Equal(t, models.TxKindSpend, entries[0].Kind)
	assert.Equal(t, models.TxKindEarned, entries[1].Kind)

	entries, _, err = l.GetHistory(1, 2, 2)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.TxKindPurchase, entries[0].Kind)
}

func TestDeductCoinsInsufficient(t *testing.T) {
	ledger := newMemLedger()
	ledger.setBalance(1, 5)
	l := NewCoinLogic(ledger, 1)

	_, err := l.DeductCoins(1, 10, "")
	assert.Equal(t, fault.ErrInsufficientCoins, err)

	balance, _ := ledger.GetBalance(1)
	assert.Equal(t, int64(5), balance)
	assert.Empty(t, ledger.entriesFor(1))
}
