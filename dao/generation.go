package dao

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"aimage-backend/fault"
	"aimage-backend/models"
)

// GenerationDAO performs the atomic commit of a generation: debit,
// ledger entry, and artifact metadata land in one database transaction
// or not at all.
type GenerationDAO struct {
	db *gorm.DB
}

func NewGenerationDAO(db *gorm.DB) *GenerationDAO {
	return &GenerationDAO{db: db}
}

// CommitGeneration re-verifies the balance under the row write lock,
// debits cost, appends the debit-spend ledger entry and creates the
// image metadata records. Zero rows affected on the conditional update
// means a concurrent spend won the race since the precheck; the whole
// transaction rolls back with insufficient coins and the caller must
// compensate any blobs it wrote.
func (d *GenerationDAO) CommitGeneration(ctx context.Context, userID uint64, cost int64, detail string, images []*models.Image) (int64, error) {
	var remaining int64
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ? AND coins >= ?", userID, cost).
			Updates(map[string]interface{}{
				"coins":       gorm.Expr("coins - ?", cost),
				"coins_spent": gorm.Expr("coins_spent + ?", cost),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fault.ErrInsufficientCoins
		}

		entry := &models.CoinTransaction{
			UserID: userID,
			Kind:   models.TxKindSpend,
			Amount: -cost,
			Detail: detail,
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}

		for _, img := range images {
			if err := tx.Create(img).Error; err != nil {
				return fmt.Errorf("failed to create image record: %w", err)
			}
		}

		return tx.Model(&models.User{}).Select("coins").Where("id = ?", userID).Scan(&remaining).Error
	})
	if err != nil {
		return 0, err
	}
	return remaining, nil
}
