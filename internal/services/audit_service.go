package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/school-system/promotion/internal/models"
	"go.uber.org/zap"
)

type AuditStore interface {
	CreateAuditLog(ctx context.Context, entry *models.AuditLog) error
	ListAuditLogs(ctx context.Context, resourceType string, limit int) ([]models.AuditLog, error)
}

type AuditService struct {
	store AuditStore
	log   *zap.Logger
}

func NewAuditService(store AuditStore, log *zap.Logger) *AuditService {
	return &AuditService{store: store, log: log}
}

func (s *AuditService) Log(ctx context.Context, actor, action, resourceType string, resourceID uuid.UUID, before, after models.JSONB, ip string) error {
	entry := &models.AuditLog{
		Actor:        actor,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Before:       before,
		After:        after,
		IP:           ip,
	}
	if err := s.store.CreateAuditLog(ctx, entry); err != nil {
		s.log.Error("audit log write failed",
			zap.String("action", action),
			zap.String("resource_type", resourceType),
			zap.Stringer("resource_id", resourceID),
			zap.Error(err))
		return err
	}
	return nil
}

// Recent returns the newest audit entries, optionally for one resource type.
func (s *AuditService) Recent(ctx context.Context, resourceType string, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.store.ListAuditLogs(ctx, resourceType, limit)
}
