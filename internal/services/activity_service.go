package services

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/taskboxhq/taskbox/internal/models"
	apperrors "github.com/taskboxhq/taskbox/pkg/errors"
)

// ActivityEntry describes a single audit record to be written.
type ActivityEntry struct {
	UserID    *uint
	Action    string
	Resource  string
	Result    string
	IPAddress string
	UserAgent string
	Metadata  map[string]interface{}
}

// ActivityService records and queries the audit trail. Writes happen on the
// deferred task path, so failures are logged rather than surfaced to clients.
type ActivityService struct {
	db *gorm.DB
}

// NewActivityService builds an ActivityService backed by the given database handle.
func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{db: db}
}

// Log persists one audit record.
func (s *ActivityService) Log(ctx context.Context, entry ActivityEntry) error {
	ctx = ensureContext(ctx)

	if entry.Action == "" {
		return apperrors.NewValidation("Invalid input data",
			apperrors.FieldError{Field: "action", Message: "action is required"})
	}

	record := models.ActivityLog{
		UserID:    entry.UserID,
		Action:    entry.Action,
		Resource:  entry.Resource,
		Result:    entry.Result,
		IPAddress: entry.IPAddress,
		UserAgent: entry.UserAgent,
	}

	if len(entry.Metadata) > 0 {
		raw, err := json.Marshal(entry.Metadata)
		if err != nil {
			return apperrors.Wrap(err, "encode metadata")
		}
		record.Metadata = datatypes.JSON(raw)
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return apperrors.Wrap(err, "write activity log")
	}

	return nil
}

// List returns the most recent audit records, newest first.
func (s *ActivityService) List(ctx context.Context, page, size int) ([]models.ActivityLog, int64, error) {
	ctx = ensureContext(ctx)

	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.ActivityLog{}).Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "count activity logs")
	}

	var logs []models.ActivityLog
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&logs).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "list activity logs")
	}

	return logs, total, nil
}
