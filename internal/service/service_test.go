package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/user/movieplatform/internal/model"
	"github.com/user/movieplatform/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testRepos 内存数据库上的仓库集合
func testRepos(t *testing.T) *repository.Repositories {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, repository.AutoMigrate(db))
	return repository.NewRepositories(db)
}

func intPtr(v int) *int { return &v }

func movieDate() time.Time {
	return time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
}

func seedMovie(t *testing.T, repos *repository.Repositories, title string, length int, published bool) *model.Media {
	t.Helper()
	country := seedCountry(t, repos, title+" Country")
	media := &model.Media{
		Type:        model.MediaTypeMovie,
		Title:       title,
		ReleaseDate: time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC),
		CountryID:   &country.ID,
		IsPublished: published,
		Length:      &length,
	}
	require.NoError(t, repos.Media.Create(media))
	return media
}

func seedTVShow(t *testing.T, repos *repository.Repositories, title string, seasons int) *model.Media {
	t.Helper()
	country := seedCountry(t, repos, title+" Country")
	media := &model.Media{
		Type:         model.MediaTypeTVShow,
		Title:        title,
		ReleaseDate:  time.Date(2015, 3, 1, 0, 0, 0, 0, time.UTC),
		CountryID:    &country.ID,
		IsPublished:  true,
		SeasonsCount: &seasons,
	}
	require.NoError(t, repos.Media.Create(media))
	return media
}

func seedCountry(t *testing.T, repos *repository.Repositories, name string) *model.Country {
	t.Helper()
	country := &model.Country{Name: name}
	require.NoError(t, repos.Country.Create(country))
	return country
}

func seedRating(t *testing.T, repos *repository.Repositories, mediaID int, value int) *model.Rating {
	t.Helper()
	rating := &model.Rating{Rating: value, MediaID: &mediaID}
	require.NoError(t, repos.Rating.Create(rating))
	return rating
}
