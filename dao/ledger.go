package dao

import (
	"errors"

	"gorm.io/gorm"

	"aimage-backend/fault"
	"aimage-backend/models"
)

// LedgerDAO handles coin balance reads and balance-affecting writes.
// Every mutation appends an immutable CoinTransaction entry in the same
// database transaction that moves the balance; entries are never
// updated or deleted.
type LedgerDAO struct {
	db *gorm.DB
}

func NewLedgerDAO(db *gorm.DB) *LedgerDAO {
	return &LedgerDAO{db: db}
}

// GetBalance returns the user's current coin balance
func (d *LedgerDAO) GetBalance(userID uint64) (int64, error) {
	var user models.User
	if err := d.db.Select("coins").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fault.ErrUserNotFound
		}
		return 0, err
	}
	return user.Coins, nil
}

// Reserve is the advisory precheck that balance covers amount. The
// balance can change before commit under concurrency, so the final
// enforcement is the conditional update in Debit/CommitGeneration.
func (d *LedgerDAO) Reserve(userID uint64, amount int64) (bool, error) {
	balance, err := d.GetBalance(userID)
	if err != nil {
		return false, err
	}
	return balance >= amount, nil
}

// Credit adds coins and appends the matching ledger entry atomically
func (d *LedgerDAO) Credit(userID uint64, amount int64, kind, detail string) (int64, error) {
	var remaining int64
	err := d.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("coins", gorm.Expr("coins + ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fault.ErrUserNotFound
		}
		entry := &models.CoinTransaction{
			UserID: userID,
			Kind:   kind,
			Amount: amount,
			Detail: detail,
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Select("coins").Where("id = ?", userID).Scan(&remaining).Error
	})
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

// Debit removes coins under a re-verified balance check. The
// conditional update serializes concurrent spends on the row lock: a
// spend that lost the race sees zero rows affected and fails with
// insufficient coins, leaving no partial state.
func (d *LedgerDAO) Debit(userID uint64, amount int64, detail string) (int64, error) {
	var remaining int64
	err := d.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ? AND coins >= ?", userID, amount).
			Updates(map[string]interface{}{
				"coins":       gorm.Expr("coins - ?", amount),
				"coins_spent": gorm.Expr("coins_spent + ?", amount),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return fault.ErrUserNotFound
			}
			return fault.ErrInsufficientCoins
		}
		entry := &models.CoinTransaction{
			UserID: userID,
			Kind:   models.TxKindSpend,
			Amount: -amount,
			Detail: detail,
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Select("coins").Where("id = ?", userID).Scan(&remaining).Error
	})
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

// ListEntries returns a page of the user's ledger entries, newest first
func (d *LedgerDAO) ListEntries(userID uint64, page, limit int) ([]models.CoinTransaction, int64, error) {
	var entries []models.CoinTransaction
	var total int64
	if err := d.db.Model(&models.CoinTransaction{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := d.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
