package repository

import (
	"errors"
	"strings"

	"github.com/user/movieplatform/internal/model"
	"gorm.io/gorm"
)

type GenreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) *GenreRepository {
	return &GenreRepository{db: db}
}

// Create 创建流派
func (r *GenreRepository) Create(genre *model.Genre) error {
	return r.db.Create(genre).Error
}

// FindByID 根据 ID 查找流派
func (r *GenreRepository) FindByID(id int) (*model.Genre, error) {
	var genre model.Genre
	err := r.db.First(&genre, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &genre, nil
}

// List 获取流派列表，支持按名称搜索
func (r *GenreRepository) List(search string) ([]*model.Genre, error) {
	var genres []*model.Genre
	query := r.db.Order("name ASC")
	if search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	err := query.Find(&genres).Error
	return genres, err
}

// FindByIDs 根据 ID 集合查找流派
func (r *GenreRepository) FindByIDs(ids []int) ([]*model.Genre, error) {
	if len(ids) == 0 {
		return []*model.Genre{}, nil
	}
	var genres []*model.Genre
	err := r.db.Where("id IN ?", ids).Find(&genres).Error
	return genres, err
}

// Update 更新流派名称
func (r *GenreRepository) Update(genre *model.Genre) error {
	return r.db.Save(genre).Error
}

// Delete 删除流派（关联关系一并清除）
func (r *GenreRepository) Delete(id int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM media_genres WHERE genre_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Genre{}, id).Error
	})
}
