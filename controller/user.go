package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aimage-backend/logic"
)

// UserController handles HTTP requests
type UserController struct {
	userLogic *logic.UserLogic
}

func NewUserController(logic *logic.UserLogic) *UserController {
	return &UserController{userLogic: logic}
}

// Register handles POST /auth/register
func (c *UserController) Register(ctx *gin.Context) {
	type Request struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	var req Request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := c.userLogic.Register(req.Email, req.Password)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, user)
}

// Login handles POST /auth/login
func (c *UserController) Login(ctx *gin.Context) {
	type Request struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	var req Request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, expireAt, err := c.userLogic.Login(req.Email, req.Password)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user":      user,
		"token":     token,
		"expire_at": expireAt,
	})
}

// UpdateUser handles PUT /user
func (c *UserController) UpdateUser(ctx *gin.Context) {
	type Request struct {
		Email string `json:"email" binding:"omitempty,email"`
	}
	var req Request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := extractUserID(ctx)
	if err != nil {
		return
	}

	user, err := c.userLogic.UpdateUser(userID, req.Email)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, user)
}

// GetUser handles GET /user
func (c *UserController) GetUser(ctx *gin.Context) {
	userID, err := extractUserID(ctx)
	if err != nil {
		return
	}

	user, err := c.userLogic.GetUser(userID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, user)
}
