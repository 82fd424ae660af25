package repository

import (
	"errors"
	"strings"

	"github.com/user/movieplatform/internal/model"
	"gorm.io/gorm"
)

type CountryRepository struct {
	db *gorm.DB
}

func NewCountryRepository(db *gorm.DB) *CountryRepository {
	return &CountryRepository{db: db}
}

// Create 创建国家
func (r *CountryRepository) Create(country *model.Country) error {
	return r.db.Create(country).Error
}

// FindByID 根据 ID 查找国家
func (r *CountryRepository) FindByID(id int) (*model.Country, error) {
	var country model.Country
	err := r.db.First(&country, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &country, nil
}

// FindByName 根据名称查找国家
func (r *CountryRepository) FindByName(name string) (*model.Country, error) {
	var country model.Country
	err := r.db.Where("name = ?", name).First(&country).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &country, nil
}

// List 获取国家列表，支持按名称搜索
func (r *CountryRepository) List(search string) ([]*model.Country, error) {
	var countries []*model.Country
	query := r.db.Order("name ASC")
	if search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	err := query.Find(&countries).Error
	return countries, err
}

// Update 更新国家
func (r *CountryRepository) Update(country *model.Country) error {
	return r.db.Save(country).Error
}

// Delete 删除国家。级联删除依赖的媒体及其评分，放弃数据是设计使然
func (r *CountryRepository) Delete(id int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var mediaIDs []int
		if err := tx.Model(&model.Media{}).Where("country_id = ?", id).
			Pluck("id", &mediaIDs).Error; err != nil {
			return err
		}

		if len(mediaIDs) > 0 {
			if err := tx.Where("media_id IN ?", mediaIDs).Delete(&model.Rating{}).Error; err != nil {
				return err
			}
			if err := tx.Exec("DELETE FROM media_genres WHERE media_id IN ?", mediaIDs).Error; err != nil {
				return err
			}
			if err := tx.Where("media_id IN ?", mediaIDs).Delete(&model.MediaHistory{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&model.Media{}, mediaIDs).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&model.Country{}, id).Error
	})
}
