package controller

import (
	"errors"
	"net/http"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
)

func extractUserID(c *gin.Context) (uint64, error) {
	userClaims, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return 0, errors.New("user not found in context")
	}

	claims, ok := userClaims.(jwt.MapClaims)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user claims"})
		return 0, errors.New("invalid user claims")
	}

	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user_id not found in token"})
		return 0, errors.New("user_id not found in token")
	}

	return uint64(userID), nil
}
