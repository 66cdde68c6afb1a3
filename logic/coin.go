package logic

import (
	"fmt"

	"aimage-backend/fault"
	"aimage-backend/models"
)

// CoinLogic handles coin purchase, reward and deduction flows
type CoinLogic struct {
	ledger   LedgerStore
	adReward int64
}

func NewCoinLogic(ledger LedgerStore, adReward int64) *CoinLogic {
	return &CoinLogic{ledger: ledger, adReward: adReward}
}

// BuyCoins credits purchased coins and returns the new balance
func (l *CoinLogic) BuyCoins(userID uint64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fault.ErrInvalidAmount
	}
	detail := fmt.Sprintf("Purchased %d coins", amount)
	return l.ledger.Credit(userID, amount, models.TxKindPurchase, detail)
}

// EarnCoins credits the ad-view reward; amount 0 means the configured
// default reward
func (l *CoinLogic) EarnCoins(userID uint64, amount int64) (int64, error) {
	if amount < 0 {
		return 0, fault.ErrInvalidAmount
	}
	if amount == 0 {
		amount = l.adReward
	}
	detail := fmt.Sprintf("Earned %d coins from ad view", amount)
	return l.ledger.Credit(userID, amount, models.TxKindEarned, detail)
}

// DeductCoins removes coins for an explicit reason
func (l *CoinLogic) DeductCoins(userID uint64, amount int64, reason string) (int64, error) {
	if amount <= 0 {
		return 0, fault.ErrInvalidAmount
	}
	if reason == "" {
		reason = "Image generation"
	}
	detail := fmt.Sprintf("Deducted %d coins for %s", amount, reason)
	return l.ledger.Debit(userID, amount, detail)
}

// GetBalance returns the user's current coin balance
func (l *CoinLogic) GetBalance(userID uint64) (int64, error) {
	return l.ledger.GetBalance(userID)
}

// GetHistory returns a page of the user's ledger entries
func (l *CoinLogic) GetHistory(userID uint64, page, limit int) ([]models.CoinTransaction, int64, error) {
	return l.ledger.ListEntries(userID, page, limit)
}
