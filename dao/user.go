package dao

import (
	"errors"

	"gorm.io/gorm"

	"aimage-backend/fault"
	"aimage-backend/models"
)

// UserDAO handles user-related database operations
type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{db: db}
}

// CreateUser creates a new user
func (d *UserDAO) CreateUser(email, passwordHash string) (*models.User, error) {
	user := &models.User{Email: email, PasswordHash: passwordHash}
	if err := d.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email
func (d *UserDAO) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := d.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fault.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateUser applies the allowed profile changes and returns the
// updated record. Only the email may change; an empty email is a no-op.
func (d *UserDAO) UpdateUser(id uint64, email string) (*models.User, error) {
	user, err := d.GetUserByID(id)
	if err != nil {
		return nil, err
	}
	if email != "" && email != user.Email {
		if err := d.db.Model(user).Update("email", email).Error; err != nil {
			return nil, err
		}
		user.Email = email
	}
	return user, nil
}

// GetUserByID retrieves a user by id
func (d *UserDAO) GetUserByID(id uint64) (*models.User, error) {
	var user models.User
	if err := d.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fault.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
