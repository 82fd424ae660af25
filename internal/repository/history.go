package repository

import (
	"github.com/user/movieplatform/internal/model"
	"gorm.io/gorm"
)

type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// ListByMedia 某个媒体的变更历史，新的在前
func (r *HistoryRepository) ListByMedia(mediaID int) ([]*model.MediaHistory, error) {
	var entries []*model.MediaHistory
	err := r.db.Where("media_id = ?", mediaID).
		Order("changed_at DESC, id DESC").
		Find(&entries).Error
	return entries, err
}

// CountByMedia 某个媒体的历史条数
func (r *HistoryRepository) CountByMedia(mediaID int) (int64, error) {
	var count int64
	err := r.db.Model(&model.MediaHistory{}).Where("media_id = ?", mediaID).Count(&count).Error
	return count, err
}
