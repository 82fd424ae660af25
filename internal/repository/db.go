package repository

import (
	"fmt"

	"github.com/user/movieplatform/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB 初始化数据库连接
func InitDB(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("无法连接数据库: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库 ping 失败: %w", err)
	}

	// 设置连接池
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return db, nil
}

// AutoMigrate 自动建表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Country{},
		&model.Genre{},
		&model.Media{},
		&model.MediaHistory{},
		&model.Rating{},
	)
}

// defaultCountries 建库后预置的国家清单
var defaultCountries = []string{
	"Australia", "France", "USA", "UK", "India", "China", "Russia", "Japan", "Germany",
	"Italy", "Spain", "Canada", "South Korea", "Brazil", "Mexico", "Turkey", "Sweden", "Denmark",
	"Norway", "Finland", "Belgium", "Netherlands", "Poland", "Czechia", "Slovakia", "Ukraine", "Belarus",
}

// SeedCountries 建表后填充国家表，已有数据时不动
func SeedCountries(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Country{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, name := range defaultCountries {
		if err := db.Create(&model.Country{Name: name}).Error; err != nil {
			return fmt.Errorf("预置国家 %s 失败: %w", name, err)
		}
	}
	return nil
}

// Repositories 仓库集合
type Repositories struct {
	DB      *gorm.DB
	User    *UserRepository
	Genre   *GenreRepository
	Country *CountryRepository
	Media   *MediaRepository
	Rating  *RatingRepository
	History *HistoryRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		DB:      db,
		User:    NewUserRepository(db),
		Genre:   NewGenreRepository(db),
		Country: NewCountryRepository(db),
		Media:   NewMediaRepository(db),
		Rating:  NewRatingRepository(db),
		History: NewHistoryRepository(db),
	}
}
