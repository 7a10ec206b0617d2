package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/model"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/repository"
)

// contextKey 上下文键类型,避免与其他包的字符串键冲突
type contextKey string

const (
	requestIDKey contextKey = "request_id"
	clientIPKey  contextKey = "client_ip"
)

// WithRequestMeta 将请求标识与来源 IP 附加到上下文
// 中间件在请求入口调用,审计日志从这里取值落库
func WithRequestMeta(ctx context.Context, requestID string, clientIP string) context.Context {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	return context.WithValue(ctx, clientIPKey, clientIP)
}

// AuditLogService 审计日志服务
type AuditLogService interface {
	RecordAction(ctx context.Context, businessID string, userID string, action string, resourceType string, resourceID string, details interface{}) error
}

// auditLogService 审计日志服务实现
type auditLogService struct {
	auditRepo repository.AuditLogRepository
}

// NewAuditLogService 创建审计日志服务
func NewAuditLogService(auditRepo repository.AuditLogRepository) AuditLogService {
	return &auditLogService{
		auditRepo: auditRepo,
	}
}

// RecordAction 记录操作审计日志
func (s *auditLogService) RecordAction(
	ctx context.Context,
	businessID string,
	userID string,
	action string,
	resourceType string,
	resourceID string,
	details interface{},
) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return err
	}

	requestID, _ := ctx.Value(requestIDKey).(string)
	ip, _ := ctx.Value(clientIPKey).(string)

	auditLog := &model.AuditLogModel{
		ID:           uuid.New().String(),
		BusinessID:   businessID,
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		RequestID:    requestID,
		IP:           ip,
		Details:      detailsJSON,
		CreatedAt:    time.Now(),
	}
	return s.auditRepo.Save(auditLog)
}
