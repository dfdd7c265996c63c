package util

import (
	"errors"
	"net/http"

	"wellbeing_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.Error(err))
	InternalServerError(c)
}

// HandleError maps the error taxonomy onto HTTP statuses. The violated rule
// travels in the message so policy failures stay visible to callers.
func HandleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrAuthorization):
		Error(c, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrNotFound):
		Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrStoreBusy), errors.Is(err, ErrStoreUnavailable):
		Error(c, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, ErrRetentionIntegrity):
		Error(c, http.StatusInternalServerError, err.Error())
	default:
		LogInternalError(c, err)
	}
}
