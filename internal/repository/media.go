package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/user/movieplatform/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MediaRepository struct {
	db *gorm.DB
}

func NewMediaRepository(db *gorm.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// MediaListParams 列表查询参数
type MediaListParams struct {
	Type        model.MediaType
	Search      string     // 标题模糊搜索
	CountryID   int        // 按国家过滤，0 表示不过滤
	ReleaseFrom *time.Time // 上映日期范围
	ReleaseTo   *time.Time
	Sort        string // title / release_date / rating
	Desc        bool
	OnlyVisible bool // 只返回已发布的条目
	Page        int
	PageSize    int
}

// Create 创建媒体
func (r *MediaRepository) Create(media *model.Media) error {
	return r.db.Omit("Country").Create(media).Error
}

// Update 更新媒体。更新前把旧值快照追加到历史表，同一事务内完成
func (r *MediaRepository) Update(media *model.Media) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var prior model.Media
		if err := tx.First(&prior, media.ID).Error; err != nil {
			return err
		}
		if err := tx.Create(prior.Snapshot()).Error; err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(media).Error; err != nil {
			return err
		}
		if media.Genres != nil {
			if err := tx.Model(media).Association("Genres").Replace(media.Genres); err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID 根据 ID 查找媒体，预加载国家和流派
func (r *MediaRepository) FindByID(id int) (*model.Media, error) {
	var media model.Media
	err := r.db.Preload("Country").Preload("Genres").First(&media, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &media, nil
}

// FindByIDAndType 根据 ID 和类型查找媒体
func (r *MediaRepository) FindByIDAndType(id int, mediaType model.MediaType) (*model.Media, error) {
	var media model.Media
	err := r.db.Preload("Country").Preload("Genres").
		Where("type = ?", mediaType).
		First(&media, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &media, nil
}

// List 分页列表。支持标题搜索、国家和上映日期过滤、排序
func (r *MediaRepository) List(p MediaListParams) ([]*model.Media, int64, error) {
	query := r.db.Model(&model.Media{})

	if p.Type != "" {
		query = query.Where("type = ?", p.Type)
	}
	if p.OnlyVisible {
		query = query.Where("is_published = ?", true)
	}
	if p.Search != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(p.Search)+"%")
	}
	if p.CountryID > 0 {
		query = query.Where("country_id = ?", p.CountryID)
	}
	if p.ReleaseFrom != nil {
		query = query.Where("release_date >= ?", *p.ReleaseFrom)
	}
	if p.ReleaseTo != nil {
		query = query.Where("release_date <= ?", *p.ReleaseTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	dir := "ASC"
	if p.Desc {
		dir = "DESC"
	}
	switch p.Sort {
	case "title":
		query = query.Order("title " + dir)
	case "rating":
		// 平均分排序，无评分按 0 处理
		query = query.Order("COALESCE((SELECT AVG(ratings.rating) FROM ratings WHERE ratings.media_id = media.id), 0) " + dir)
	default:
		query = query.Order("release_date " + dir)
	}

	if p.PageSize > 0 {
		if p.Page < 1 {
			p.Page = 1
		}
		query = query.Limit(p.PageSize).Offset((p.Page - 1) * p.PageSize)
	}

	var items []*model.Media
	err := query.Preload("Country").Preload("Genres").Find(&items).Error
	return items, total, err
}

// HighRated 平均评分严格大于阈值的媒体。
// 内连接保证零评分的条目不参与（没有评分就没有均值，直接排除）
func (r *MediaRepository) HighRated(mediaType model.MediaType, threshold float64) ([]*model.Media, error) {
	var items []*model.Media
	err := r.db.Model(&model.Media{}).
		Joins("JOIN ratings ON ratings.media_id = media.id").
		Where("media.type = ?", mediaType).
		Group("media.id").
		Having("AVG(ratings.rating) > ?", threshold).
		Preload("Country").Preload("Genres").
		Find(&items).Error
	return items, err
}

// AverageRating 单个媒体的平均评分，无评分返回 nil
func (r *MediaRepository) AverageRating(mediaID int) (*float64, error) {
	var avg *float64
	err := r.db.Model(&model.Rating{}).
		Where("media_id = ?", mediaID).
		Select("AVG(rating)").
		Scan(&avg).Error
	return avg, err
}

// MoviesByLengthAndCountry 组合查询：
// (时长 < maxLength 且国家 != excludeCountry) 或 国家未设置。
// 布尔组合必须保持原样，不能改写
func (r *MediaRepository) MoviesByLengthAndCountry(maxLength int, excludeCountry string) ([]*model.Media, error) {
	var items []*model.Media
	err := r.db.Model(&model.Media{}).
		Joins("LEFT JOIN countries ON countries.id = media.country_id").
		Where("media.type = ?", model.MediaTypeMovie).
		Where("(media.length < ? AND countries.name <> ?) OR media.country_id IS NULL", maxLength, excludeCountry).
		Preload("Country").Preload("Genres").
		Find(&items).Error
	return items, err
}

// TVShowsBySeasonsAndCountry 组合查询：季数 > minSeasons 且国家精确匹配
func (r *MediaRepository) TVShowsBySeasonsAndCountry(minSeasons int, country string) ([]*model.Media, error) {
	var items []*model.Media
	err := r.db.Model(&model.Media{}).
		Joins("JOIN countries ON countries.id = media.country_id").
		Where("media.type = ?", model.MediaTypeTVShow).
		Where("media.seasons_count > ?", minSeasons).
		Where("countries.name = ?", country).
		Preload("Country").Preload("Genres").
		Find(&items).Error
	return items, err
}

// TVShowsBySeasons 季数大于 minSeasons 的剧集（导出用）
func (r *MediaRepository) TVShowsBySeasons(minSeasons int) ([]*model.Media, error) {
	var items []*model.Media
	err := r.db.Model(&model.Media{}).
		Where("type = ?", model.MediaTypeTVShow).
		Where("seasons_count > ?", minSeasons).
		Preload("Country").Preload("Genres").
		Find(&items).Error
	return items, err
}

// CountByType 按类型统计媒体数量
func (r *MediaRepository) CountByType(mediaType model.MediaType) (int64, error) {
	var count int64
	err := r.db.Model(&model.Media{}).Where("type = ?", mediaType).Count(&count).Error
	return count, err
}

// Delete 删除媒体，级联删除评分、流派关联和历史
func (r *MediaRepository) Delete(id int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("media_id = ?", id).Delete(&model.Rating{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM media_genres WHERE media_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("media_id = ?", id).Delete(&model.MediaHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Media{}, id).Error
	})
}
