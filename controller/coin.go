package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"aimage-backend/logic"
)

// CoinController handles HTTP requests
type CoinController struct {
	coinLogic *logic.CoinLogic
}

func NewCoinController(logic *logic.CoinLogic) *CoinController {
	return &CoinController{coinLogic: logic}
}

// BuyCoins handles POST /coin/buy
func (c *CoinController) BuyCoins(ctx *gin.Context) {
	type Request struct {
		Amount int64 `json:"amount" binding:"required"`
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

	coins, err := c.coinLogic.BuyCoins(userID, req.Amount)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"coins": coins})
}

// EarnCoins handles POST /coin/earn
func (c *CoinController) EarnCoins(ctx *gin.Context) {
	type Request struct {
		Amount int64 `json:"amount"`
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

	coins, err := c.coinLogic.EarnCoins(userID, req.Amount)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"coins": coins})
}

// DeductCoins handles POST /coin/deduct
func (c *CoinController) DeductCoins(ctx *gin.Context) {
	type Request struct {
		Amount int64  `json:"amount" binding:"required"`
		Reason string `json:"reason"`
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

	coins, err := c.coinLogic.DeductCoins(userID, req.Amount, req.Reason)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"coins": coins})
}

// GetBalance handles GET /coin/balance
func (c *CoinController) GetBalance(ctx *gin.Context) {
	userID, err := extractUserID(ctx)
	if err != nil {
		return
	}

	coins, err := c.coinLogic.GetBalance(userID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"coins": coins})
}

// GetHistory handles GET /coin/history
func (c *CoinController) GetHistory(ctx *gin.Context) {
	userID, err := extractUserID(ctx)
	if err != nil {
		return
	}

	page, limit := paginationParams(ctx)
	entries, total, err := c.coinLogic.GetHistory(userID, page, limit)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"transactions": entries,
		"total":        total,
		"page":         page,
	})
}

func paginationParams(ctx *gin.Context) (int, int) {
	page, err := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}
