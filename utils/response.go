package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSONResponse defines the uniform structure for API responses.
type JSONResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Respond writes a JSON response with the given status code.
func Respond(ctx *gin.Context, status int, code int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success returns a standard success response.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, http.StatusOK, 0, "success", data)
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, code, message, nil)
}

// ValidationError reports malformed input (400).
func ValidationError(ctx *gin.Context, code int, message string) {
	Error(ctx, http.StatusBadRequest, code, message)
}

// NotFoundError reports an absent referenced record (404).
func NotFoundError(ctx *gin.Context, code int, message string) {
	Error(ctx, http.StatusNotFound, code, message)
}

// AuthorizationError reports a non-admin attempting an admin-only operation (403).
func AuthorizationError(ctx *gin.Context, code int, message string) {
	Error(ctx, http.StatusForbidden, code, message)
}
