package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// productionMode 生产模式下错误详情不回传给客户端
var productionMode bool

// SetProductionMode 设置生产模式
func SetProductionMode(enabled bool) {
	productionMode = enabled
}

// Response 统一响应格式
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse 错误响应格式
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"` // 错误详情,生产模式下省略
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 带自定义消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string, detail string) {
	statusCode := http.StatusInternalServerError
	if code >= 400 && code < 600 {
		statusCode = code
	}

	if productionMode {
		detail = ""
	}

	c.JSON(statusCode, ErrorResponse{
		Success: false,
		Message: message,
		Detail:  detail,
	})
}
