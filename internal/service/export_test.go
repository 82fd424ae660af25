package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/movieplatform/internal/model"
)

func TestExportMovies(t *testing.T) {
	repos := testRepos(t)
	exporter := NewExporter(repos)

	country := seedCountry(t, repos, "France")
	genre := &model.Genre{Name: "Sci-Fi"}
	require.NoError(t, repos.Genre.Create(genre))

	movie := &model.Media{
		Type:        model.MediaTypeMovie,
		Title:       "Dune",
		ReleaseDate: time.Date(2021, 10, 22, 0, 0, 0, 0, time.UTC),
		CountryID:   &country.ID,
		Genres:      []*model.Genre{genre},
		IsPublished: true,
		Length:      intPtr(155),
	}
	require.NoError(t, repos.Media.Create(movie))

	// 未发布的条目不参与导出
	seedMovie(t, repos, "Hidden Film", 90, false)

	t.Run("json", func(t *testing.T) {
		file, err := exporter.ExportMovies("json")
		require.NoError(t, err)
		assert.Equal(t, "movies.json", file.Filename)
		assert.Equal(t, "application/json", file.ContentType)

		var records []map[string]string
		require.NoError(t, json.Unmarshal(file.Content, &records))
		require.Len(t, records, 1)
		assert.Equal(t, "电影：Dune", records[0]["标题"])
		assert.Equal(t, "22-10-2021", records[0]["上映日期"])
		assert.Equal(t, "Sci-Fi", records[0]["流派"])
		assert.Equal(t, "France", records[0]["国家"])
		assert.Equal(t, "02:35", records[0]["时长"])
	})

	t.Run("csv", func(t *testing.T) {
		file, err := exporter.ExportMovies("csv")
		require.NoError(t, err)
		assert.Equal(t, "movies.csv", file.Filename)

		rows, err := csv.NewReader(bytes.NewReader(file.Content)).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, []string{"标题", "上映日期", "流派", "国家", "时长"}, rows[0])
		assert.Equal(t, "电影：Dune", rows[1][0])
	})

	t.Run("xlsx", func(t *testing.T) {
		file, err := exporter.ExportMovies("xlsx")
		require.NoError(t, err)
		assert.Equal(t, "movies.xlsx", file.Filename)
		assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", file.ContentType)
		assert.NotEmpty(t, file.Content)
	})

	t.Run("空格式默认 json", func(t *testing.T) {
		file, err := exporter.ExportMovies("")
		require.NoError(t, err)
		assert.Equal(t, "movies.json", file.Filename)
	})

	t.Run("未知格式报错", func(t *testing.T) {
		_, err := exporter.ExportMovies("pdf")
		assert.Error(t, err)
	})
}

func TestExportTVShows(t *testing.T) {
	repos := testRepos(t)
	exporter := NewExporter(repos)

	seedTVShow(t, repos, "Long Runner", 8)
	seedTVShow(t, repos, "Boundary Show", 6) // 等于阈值，严格大于不成立
	seedTVShow(t, repos, "Short Runner", 2)

	file, err := exporter.ExportTVShows("json")
	require.NoError(t, err)
	assert.Equal(t, "tvshows.json", file.Filename)

	var records []map[string]string
	require.NoError(t, json.Unmarshal(file.Content, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "剧集：Long Runner", records[0]["标题"])
	assert.Equal(t, "8", records[0]["季数"])
}
