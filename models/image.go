package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Download lifecycle of a generated image. The consumed transition is
// committed before streaming begins, so a reference yields its payload
// at most once even if the client disconnects mid-stream.
const (
	DownloadAvailable = "available"
	DownloadConsumed  = "consumed"
)

// GenerationParams are the provider parameters recorded for audit/replay
type GenerationParams struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Samples        int     `json:"samples"`
	CfgScale       float64 `json:"cfg_scale"`
	Steps          int     `json:"steps"`
	Seed           int64   `json:"seed"`
	StylePreset    string  `json:"style_preset"`
	Engine         string  `json:"engine"`
}

// Image is the metadata record for one generated artifact
type Image struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uint64         `gorm:"not null;index:idx_images_user_created,priority:1" json:"user_id"`
	Params        datatypes.JSON `gorm:"type:jsonb" json:"params"`
	CoinsUsed     int64          `gorm:"not null" json:"coins_used"`
	StorageRef    string         `gorm:"not null" json:"-"`
	DownloadState string         `gorm:"not null;default:available" json:"download_state"`
	CreatedAt     time.Time      `gorm:"index:idx_images_user_created,priority:2" json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
