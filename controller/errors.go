package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aimage-backend/fault"
)

// abortWithError maps a fault class to an HTTP status plus a stable
// machine-readable kind so clients can decide whether to resubmit
func abortWithError(ctx *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case fault.IsErrInvalid(err):
		status = http.StatusBadRequest
	case fault.IsErrFunds(err):
		status = http.StatusPaymentRequired
	case fault.IsErrNotFound(err):
		status = http.StatusNotFound
	case fault.IsErrGone(err):
		status = http.StatusGone
	case fault.IsErrRateLimit(err):
		status = http.StatusTooManyRequests
	case fault.IsErrProvider(err):
		if err == fault.ErrProviderRejected {
			status = http.StatusUnprocessableEntity
		} else {
			status = http.StatusBadGateway
		}
	}

	ctx.JSON(status, gin.H{
		"error":     err.Error(),
		"kind":      fault.Kind(err),
		"retryable": fault.Retryable(err),
	})
}
