package logic

import (
	"context"

	"github.com/google/uuid"

	"aimage-backend/models"
	"aimage-backend/pkg"
)

// Store interfaces consumed by the logic layer. The gorm DAOs satisfy
// them in production; tests substitute in-memory implementations.

type LedgerStore interface {
	GetBalance(userID uint64) (int64, error)
	Reserve(userID uint64, amount int64) (bool, error)
	Credit(userID uint64, amount int64, kind, detail string) (int64, error)
	Debit(userID uint64, amount int64, detail string) (int64, error)
	ListEntries(userID uint64, page, limit int) ([]models.CoinTransaction, int64, error)
}

type GenerationStore interface {
	CommitGeneration(ctx context.Context, userID uint64, cost int64, detail string, images []*models.Image) (int64, error)
}

type ImageStore interface {
	GetUserImage(userID uint64, id uuid.UUID) (*models.Image, error)
	ListImages(userID uint64, page, limit int) ([]models.Image, int64, error)
	ConsumeImage(id uuid.UUID) (*models.Image, error)
	DeleteImage(userID uint64, id uuid.UUID) (*models.Image, error)
}

type UserStore interface {
	CreateUser(email, passwordHash string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint64) (*models.User, error)
	UpdateUser(id uint64, email string) (*models.User, error)
}

// ImageGenerator is the retrying provider client boundary
type ImageGenerator interface {
	Generate(ctx context.Context, req pkg.GenerateRequest) ([]pkg.Artifact, error)
}
