package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/service"
)

// APIError API 错误
type APIError struct {
	Code    int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	return e.Message
}

// ErrorHandlerMiddleware 错误处理中间件
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()

			var apiErr *APIError
			if errors.As(err, &apiErr) {
				Error(c, apiErr.Code, apiErr.Message, apiErr.Detail)
			} else {
				Error(c, http.StatusInternalServerError, "internal server error", err.Error())
			}
		}
	}
}

// WrapError 包装错误
func WrapError(err error, code int, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Detail:  err.Error(),
	}
}

// serviceError 将服务层错误映射为 HTTP 响应
// 未找到与越权访问统一返回 404,不暴露资源是否存在
func serviceError(c *gin.Context, err error, resource string, operation string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		Error(c, http.StatusNotFound, resource+" not found", err.Error())
	case errors.Is(err, service.ErrInvalidDecision), errors.Is(err, service.ErrInvalidStatus), errors.Is(err, service.ErrValidation):
		Error(c, http.StatusBadRequest, "invalid request", err.Error())
	case errors.Is(err, service.ErrAlreadyDecided), errors.Is(err, service.ErrStatusConflict):
		Error(c, http.StatusConflict, "conflict", err.Error())
	default:
		Error(c, http.StatusInternalServerError, "failed to "+operation, err.Error())
	}
}
