package repository

import (
	"errors"
	"strings"

	"github.com/user/movieplatform/internal/model"
	"gorm.io/gorm"
)

type RatingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Create 创建评分
func (r *RatingRepository) Create(rating *model.Rating) error {
	return r.db.Omit("Media", "User").Create(rating).Error
}

// FindByID 根据 ID 查找评分，预加载媒体及其国家
func (r *RatingRepository) FindByID(id int) (*model.Rating, error) {
	var rating model.Rating
	err := r.db.Preload("User").Preload("Media").Preload("Media.Country").Preload("Media.Genres").
		First(&rating, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// ListByMedia 某个媒体的全部评论。按创建时间排序保证分页稳定，
// 一次性预加载用户，遍历展示星级时不再逐行查询
func (r *RatingRepository) ListByMedia(mediaID int) ([]*model.Rating, error) {
	var ratings []*model.Rating
	err := r.db.Preload("User").
		Where("media_id = ?", mediaID).
		Order("created_at DESC, id DESC").
		Find(&ratings).Error
	return ratings, err
}

// List 分页列表
func (r *RatingRepository) List(page, pageSize int) ([]*model.Rating, int64, error) {
	var total int64
	if err := r.db.Model(&model.Rating{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	var ratings []*model.Rating
	err := r.db.Preload("User").Preload("Media").Preload("Media.Country").Preload("Media.Genres").
		Order("id DESC").
		Limit(pageSize).Offset((page - 1) * pageSize).
		Find(&ratings).Error
	return ratings, total, err
}

// UpdateValue 更新评分值
func (r *RatingRepository) UpdateValue(id, value int) error {
	var rating model.Rating
	if err := r.db.First(&rating, id).Error; err != nil {
		return err
	}
	rating.Rating = value
	return r.db.Omit("Media", "User").Save(&rating).Error
}

// Delete 删除评分
func (r *RatingRepository) Delete(id int) error {
	return r.db.Delete(&model.Rating{}, id).Error
}

// OutsideRange 组合查询：评分落在 [lo, hi] 之外，且媒体国家精确匹配，
// 且媒体标题包含子串（忽略大小写）
func (r *RatingRepository) OutsideRange(lo, hi int, country, titleContains string) ([]*model.Rating, error) {
	var ratings []*model.Rating
	err := r.db.Model(&model.Rating{}).
		Joins("JOIN media ON media.id = ratings.media_id").
		Joins("JOIN countries ON countries.id = media.country_id").
		Where("ratings.rating NOT BETWEEN ? AND ?", lo, hi).
		Where("countries.name = ?", country).
		Where("LOWER(media.title) LIKE ?", "%"+strings.ToLower(titleContains)+"%").
		Preload("User").Preload("Media").Preload("Media.Country").
		Find(&ratings).Error
	return ratings, err
}

// DeleteOrphans 删除所有没有关联媒体的评分。
// 按谓词整批删除，重复执行天然幂等：没有孤儿时影响 0 行
func (r *RatingRepository) DeleteOrphans() (int64, error) {
	result := r.db.Where("media_id IS NULL").Delete(&model.Rating{})
	return result.RowsAffected, result.Error
}
