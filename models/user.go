package models

import (
	"time"
)

// User represents an account with a coin balance
type User struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Coins        int64     `gorm:"not null;default:0" json:"coins"` // Current coin balance, never negative
	CoinsSpent   int64     `gorm:"not null;default:0" json:"coins_spent"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
