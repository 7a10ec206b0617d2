package service

import "errors"

// 服务层错误
// 控制器按此映射响应状态: 未找到与越权一律 404,避免跨租户泄露存在性
var (
	ErrNotFound        = errors.New("resource not found")
	ErrAlreadyDecided  = errors.New("approval has already been decided")
	ErrInvalidDecision = errors.New("decision must be approved or rejected")
	ErrInvalidStatus   = errors.New("invalid status value")
	ErrStatusConflict  = errors.New("alert is not in a state that allows this update")
	ErrValidation      = errors.New("validation failed")
)
