package moderation

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusshelf/campusshelf-backend/pkg/db/models"
)

// Repository defines persistence for the moderation audit log.
type Repository interface {
	CreateLog(ctx context.Context, entry *models.ModerationLog) error
	RecentLogs(ctx context.Context, limit int) ([]models.ModerationLog, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a moderation repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateLog(ctx context.Context, entry *models.ModerationLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) RecentLogs(ctx context.Context, limit int) ([]models.ModerationLog, error) {
	if limit <= 0 {
		limit = 10
	}
	var logs []models.ModerationLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
