package logic

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"

	"aimage-backend/config"
	"aimage-backend/fault"
	"aimage-backend/models"
)

// UserLogic handles user-related business logic
type UserLogic struct {
	userDAO UserStore
}

func NewUserLogic(userDAO UserStore) *UserLogic {
	return &UserLogic{userDAO: userDAO}
}

// GetUser retrieves user info
func (l *UserLogic) GetUser(userID uint64) (*models.User, error) {
	return l.userDAO.GetUserByID(userID)
}

// UpdateUser applies profile changes; only the email may be updated
func (l *UserLogic) UpdateUser(userID uint64, email string) (*models.User, error) {
	return l.userDAO.UpdateUser(userID, email)
}

// Register creates a new user with a hashed password
func (l *UserLogic) Register(email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return l.userDAO.CreateUser(email, string(hash))
}

// Login verifies credentials and issues a JWT
func (l *UserLogic) Login(email, password string) (*models.User, string, time.Time, error) {
	user, err := l.userDAO.GetUserByEmail(email)
	if err != nil {
		if fault.IsErrNotFound(err) {
			return nil, "", time.Time{}, fault.ErrWrongCredentials
		}
		return nil, "", time.Time{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", time.Time{}, fault.ErrWrongCredentials
	}

	token, expireAt, err := l.generateJWT(user.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	return user, token, expireAt, nil
}

func (l *UserLogic) generateJWT(userID uint64) (string, time.Time, error) {
	expireAt := time.Now().Add(time.Duration(config.GlobalConfig.Auth.ExpHour) * time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     expireAt.Unix(),
	})
	tokenString, err := token.SignedString([]byte(config.GlobalConfig.Auth.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expireAt, nil
}
