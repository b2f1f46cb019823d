package services

import (
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"fintrack/internal/logger"
	"fintrack/internal/models"
)

// Audit actions recorded by the handlers.
const (
	AuditActionImport        = "IMPORT_BACKUP"
	AuditActionDeleteAccount = "DELETE_ACCOUNT"
	AuditActionDeleteRecord  = "DELETE_RECORD"
	AuditActionSetRate       = "SET_MANUAL_RATE"
)

type auditService struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db, log: logger.Named("audit")}
}

// Log writes one audit row. It never fails the caller: a row that cannot be
// stored is reported on the logger instead.
func (s *auditService) Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any) {
	entry := models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		IPAddress:    ipAddress,
		Changes:      s.encodeChanges(action, changes),
	}
	if resourceID != "" {
		entry.ResourceID = &resourceID
	}

	if err := s.db.Create(&entry).Error; err != nil {
		s.log.Errorw("audit entry dropped",
			"error", err,
			"user_id", userID,
			"action", action,
			"resource", resourceType+"/"+resourceID,
		)
	}
}

func (s *auditService) encodeChanges(action string, changes map[string]any) string {
	if len(changes) == 0 {
		return ""
	}
	data, err := json.Marshal(changes)
	if err != nil {
		s.log.Warnw("audit changes not serializable", "action", action, "error", err)
		return "{}"
	}
	return string(data)
}
