package dao

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"aimage-backend/fault"
	"aimage-backend/models"
)

// ImageDAO handles artifact metadata storage
type ImageDAO struct {
	db *gorm.DB
}

func NewImageDAO(db *gorm.DB) *ImageDAO {
	return &ImageDAO{db: db}
}

// GetUserImage retrieves one of the user's images by id
func (d *ImageDAO) GetUserImage(userID uint64, id uuid.UUID) (*models.Image, error) {
	var img models.Image
	err := d.db.Where("id = ? AND user_id = ?", id, userID).First(&img).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fault.ErrArtifactNotFound
		}
		return nil, err
	}
	return &img, nil
}

// ListImages returns a page of the user's images, newest first
func (d *ImageDAO) ListImages(userID uint64, page, limit int) ([]models.Image, int64, error) {
	var images []models.Image
	var total int64
	if err := d.db.Model(&models.Image{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := d.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&images).Error
	if err != nil {
		return nil, 0, err
	}
	return images, total, nil
}

// ConsumeImage flips the download state from available to consumed and
// returns the record. The conditional update makes the transition
// winner-takes-all: a second caller sees zero rows affected and gets a
// gone error, an unknown id gets not found.
func (d *ImageDAO) ConsumeImage(id uuid.UUID) (*models.Image, error) {
	var img models.Image
	err := d.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Image{}).
			Where("id = ? AND download_state = ?", id, models.DownloadAvailable).
			Update("download_state", models.DownloadConsumed)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Image{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return fault.ErrArtifactNotFound
			}
			return fault.ErrArtifactConsumed
		}
		return tx.Where("id = ?", id).First(&img).Error
	})
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// DeleteImage removes one of the user's image records and returns it so
// the caller can clean up the blob
func (d *ImageDAO) DeleteImage(userID uint64, id uuid.UUID) (*models.Image, error) {
	img, err := d.GetUserImage(userID, id)
	if err != nil {
		return nil, err
	}
	if err := d.db.Delete(&models.Image{}, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return img, nil
}
