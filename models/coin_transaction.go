package models

import "time"

// Ledger entry kinds. Entries are append-only; the user's coin balance
// is the projection maintained in the same transaction that appends.
const (
	TxKindPurchase = "credit-purchase"
	TxKindEarned   = "credit-earned"
	TxKindSpend    = "debit-spend"
)

// CoinTransaction is one immutable ledger entry
type CoinTransaction struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64    `gorm:"not null;index:idx_coin_tx_user_created,priority:1" json:"user_id"`
	Kind      string    `gorm:"not null" json:"kind"`
	Amount    int64     `gorm:"not null" json:"amount"` // signed delta, negative for spends
	Detail    string    `json:"detail"`
	CreatedAt time.Time `gorm:"index:idx_coin_tx_user_created,priority:2" json:"created_at"`
}
