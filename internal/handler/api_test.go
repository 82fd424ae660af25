package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/movieplatform/internal/config"
	"github.com/user/movieplatform/internal/model"
	"github.com/user/movieplatform/internal/repository"
	"github.com/user/movieplatform/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestAPI 内存数据库 + 只挂 API 路由的 gin 引擎
func newTestAPI(t *testing.T) (*gin.Engine, *Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.InitCache()
	t.Cleanup(utils.CacheClear)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, repository.AutoMigrate(db))

	h := NewHandler(repository.NewRepositories(db), &config.Config{
		SiteName: "MoviePlatform",
		SiteUrl:  "http://localhost:5005",
	})

	r := gin.New()
	api := r.Group("/api/v1")
	{
		api.GET("/genres/", h.APIGenreList)
		api.POST("/genres/", h.APIGenreCreate)
		api.GET("/genres/:id/", h.APIGenreDetail)

		api.GET("/countries/", h.APICountryList)
		api.POST("/countries/", h.APICountryCreate)
		api.PUT("/countries/:id/", h.APICountryUpdate)
		api.DELETE("/countries/:id/", h.APICountryDelete)

		api.GET("/movies/", h.APIMovieList)
		api.POST("/movies/", h.APIMovieCreate)
		api.GET("/movies/high_rated/", h.APIMovieHighRated)
		api.GET("/movies/:id/", h.APIMovieDetail)
		api.PUT("/movies/:id/", h.APIMovieUpdate)
		api.DELETE("/movies/:id/", h.APIMovieDelete)
		api.POST("/movies/:id/add_rating/", h.APIMovieAddRating)

		api.GET("/tvshows/", h.APITVShowList)
		api.POST("/tvshows/", h.APITVShowCreate)
		api.GET("/tvshows/:id/", h.APITVShowDetail)
		api.POST("/tvshows/:id/add_rating/", h.APITVShowAddRating)

		api.GET("/ratings/", h.APIRatingList)
		api.POST("/ratings/", h.APIRatingCreate)
		api.GET("/ratings/:id/", h.APIRatingDetail)
		api.PUT("/ratings/:id/", h.APIRatingUpdate)

		api.GET("/complex-query-first/", h.APIComplexQueryFirst)
		api.GET("/complex-query-second/", h.APIComplexQuerySecond)
	}
	return r, h
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func apiCreateCountry(t *testing.T, h *Handler, name string) *model.Country {
	t.Helper()
	country := &model.Country{Name: name}
	require.NoError(t, h.Repos.Country.Create(country))
	return country
}

func apiCreateMovie(t *testing.T, h *Handler, title string, length, countryID int) *model.Media {
	t.Helper()
	media := &model.Media{
		Type:        model.MediaTypeMovie,
		Title:       title,
		ReleaseDate: time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC),
		CountryID:   &countryID,
		IsPublished: true,
		Length:      &length,
	}
	require.NoError(t, h.Repos.Media.Create(media))
	return media
}

func TestAPIMovieCreateAndDetail(t *testing.T) {
	r, h := newTestAPI(t)
	country := apiCreateCountry(t, h, "France")
	genre := &model.Genre{Name: "Sci-Fi"}
	require.NoError(t, h.Repos.Genre.Create(genre))

	body := fmt.Sprintf(`{
		"title": "Dune",
		"release_date": "2021-10-22",
		"country_id": %d,
		"genre_ids": [%d],
		"length": 155
	}`, country.ID, genre.ID)

	w := doJSON(t, r, http.MethodPost, "/api/v1/movies/", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created MediaResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Dune", created.Title)
	assert.Equal(t, "2021-10-22", created.ReleaseDate)
	require.NotNil(t, created.Length)
	assert.Equal(t, 155, *created.Length)
	assert.Nil(t, created.SeasonsCount)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/movies/%d/", created.ID), "")
	require.Equal(t, http.StatusOK, w.Code)

	var detail MediaResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "Dune", detail.Title)
	require.NotNil(t, detail.Country)
	assert.Equal(t, "France", detail.Country.Name)
	require.Len(t, detail.Genres, 1)
}

func TestAPIMovieCreateValidation(t *testing.T) {
	r, h := newTestAPI(t)
	country := apiCreateCountry(t, h, "Japan")

	t.Run("日期格式错误", func(t *testing.T) {
		body := fmt.Sprintf(`{"title": "Bad Date", "release_date": "22/10/2021", "country_id": %d}`, country.ID)
		w := doJSON(t, r, http.MethodPost, "/api/v1/movies/", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("上映日期超出范围", func(t *testing.T) {
		body := fmt.Sprintf(`{"title": "Ancient", "release_date": "1899-12-31", "country_id": %d}`, country.ID)
		w := doJSON(t, r, http.MethodPost, "/api/v1/movies/", body)
		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "ReleaseDate", resp["field"])
	})

	t.Run("缺少国家", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/v1/movies/", `{"title": "No Country", "release_date": "2020-01-01"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAPIMovieListPagination(t *testing.T) {
	r, h := newTestAPI(t)
	country := apiCreateCountry(t, h, "USA")
	for i := 0; i < 12; i++ {
		apiCreateMovie(t, h, fmt.Sprintf("Movie %02d", i), 100, country.ID)
	}

	w := doJSON(t, r, http.MethodGet, "/api/v1/movies/", "")
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Count    int64             `json:"count"`
		Page     int               `json:"page"`
		PageSize int               `json:"page_size"`
		Results  []json.RawMessage `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.EqualValues(t, 12, page.Count)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.PageSize)
	assert.Len(t, page.Results, 10)

	w = doJSON(t, r, http.MethodGet, "/api/v1/movies/?page=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Results, 2)
}

func TestAPIAddRating(t *testing.T) {
	r, h := newTestAPI(t)
	country := apiCreateCountry(t, h, "USA")
	movie := apiCreateMovie(t, h, "Rated Movie", 100, country.ID)

	t.Run("正常添加", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/movies/%d/add_rating/", movie.ID), `{"rating": 5}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp RatingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 5, resp.Rating)
		require.NotNil(t, resp.Media)
		assert.Equal(t, "Rated Movie", resp.Media.Title)
	})

	t.Run("缺少评分值返回 400 且不落库", func(t *testing.T) {
		before, _, err := h.Repos.Rating.List(1, 100)
		require.NoError(t, err)

		w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/movies/%d/add_rating/", movie.ID), `{}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error": "Rating value is required"}`, w.Body.String())

		after, _, err := h.Repos.Rating.List(1, 100)
		require.NoError(t, err)
		assert.Len(t, after, len(before))
	})

	t.Run("空请求体同样 400", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/movies/%d/add_rating/", movie.ID), "")
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error": "Rating value is required"}`, w.Body.String())
	})

	t.Run("越界评分返回 400", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/movies/%d/add_rating/", movie.ID), `{"rating": 6}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("媒体不存在返回 404", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/v1/movies/99999/add_rating/", `{"rating": 5}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAPIRatingZeroRejected(t *testing.T) {
	r, h := newTestAPI(t)
	country := apiCreateCountry(t, h, "USA")
	movie := apiCreateMovie(t, h, "Zero Test", 100, country.ID)

	t.Run("创建时显式传 0 返回 400 且不落库", func(t *testing.T) {
		body := fmt.Sprintf(`{"rating": 0, "media_id": %d}`, movie.ID)
		w := doJSON(t, r, http.MethodPost, "/api/v1/ratings/", body)
		require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		assert.JSONEq(t, `{"error": "Rating value is required"}`, w.Body.String())

		ratings, _, err := h.Repos.Rating.List(1, 100)
		require.NoError(t, err)
		assert.Empty(t, ratings)
	})

	t.Run("更新时显式传 0 返回 400 且原值不变", func(t *testing.T) {
		existing := &model.Rating{Rating: 3, MediaID: &movie.ID}
		require.NoError(t, h.Repos.Rating.Create(existing))

		w := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/v1/ratings/%d/", existing.ID), `{"rating": 0}`)
		require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		assert.JSONEq(t, `{"error": "Rating value is required"}`, w.Body.String())

		stored, err := h.Repos.Rating.FindByID(existing.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, 3, stored.Rating)
	})
}

func TestAPIHighRated(t *testing.T) {
	r, h := newTestAPI(t)
	country := apiCreateCountry(t, h, "USA")

	good := apiCreateMovie(t, h, "Great Movie", 100, country.ID)
	for _, v := range []int{5, 5, 4} {
		require.NoError(t, h.Repos.Rating.Create(&model.Rating{Rating: v, MediaID: &good.ID}))
	}

	mediocre := apiCreateMovie(t, h, "Okay Movie", 100, country.ID)
	for _, v := range []int{4, 4} {
		require.NoError(t, h.Repos.Rating.Create(&model.Rating{Rating: v, MediaID: &mediocre.ID}))
	}

	w := doJSON(t, r, http.MethodGet, "/api/v1/movies/high_rated/", "")
	require.Equal(t, http.StatusOK, w.Code)

	var items []MediaResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Great Movie", items[0].Title)

	// 阈值可调
	w = doJSON(t, r, http.MethodGet, "/api/v1/movies/high_rated/?threshold=3.5", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	assert.Len(t, items, 2)
}

func TestAPITVShowCreateAndAddRating(t *testing.T) {
	r, h := newTestAPI(t)
	country := apiCreateCountry(t, h, "UK")

	body := fmt.Sprintf(`{
		"title": "The Crown",
		"release_date": "2016-11-04",
		"country_id": %d,
		"seasons_count": 6
	}`, country.ID)

	w := doJSON(t, r, http.MethodPost, "/api/v1/tvshows/", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created MediaResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotNil(t, created.SeasonsCount)
	assert.Equal(t, 6, *created.SeasonsCount)
	assert.Nil(t, created.Length)

	// 电影接口按 ID 也找不到这个剧集
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/movies/%d/", created.ID), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/tvshows/%d/add_rating/", created.ID), `{"rating": 4}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestAPIRatingWithBrokenMedia(t *testing.T) {
	r, h := newTestAPI(t)

	// 孤儿评分：媒体字段序列化为 null
	orphan := &model.Rating{Rating: 3}
	require.NoError(t, h.Repos.Rating.Create(orphan))

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/ratings/%d/", orphan.ID), "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp["media"])
}

func TestAPIGenreCRUD(t *testing.T) {
	r, _ := newTestAPI(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/genres/", `{"name": "Thriller"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var created GenreResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Thriller", created.Name)

	// 名称太短被校验拦下
	w = doJSON(t, r, http.MethodPost, "/api/v1/genres/", `{"name": "T"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/genres/", "")
	require.Equal(t, http.StatusOK, w.Code)

	var list []GenreResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestAPICountryUpdate(t *testing.T) {
	r, h := newTestAPI(t)
	country := apiCreateCountry(t, h, "Burma")

	w := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/v1/countries/%d/", country.ID), `{"name": "Myanmar"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var updated CountryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Myanmar", updated.Name)

	w = doJSON(t, r, http.MethodPut, "/api/v1/countries/99999/", `{"name": "Nowhere"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPICountryDeleteCascades(t *testing.T) {
	r, h := newTestAPI(t)
	country := apiCreateCountry(t, h, "Atlantis")
	movie := apiCreateMovie(t, h, "Sunken City", 100, country.ID)

	w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/countries/%d/", country.ID), "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/movies/%d/", movie.ID), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPIComplexQueries(t *testing.T) {
	r, h := newTestAPI(t)
	usa := apiCreateCountry(t, h, "USA")
	france := apiCreateCountry(t, h, "France")

	apiCreateMovie(t, h, "Short French", 90, france.ID)
	apiCreateMovie(t, h, "Short American", 90, usa.ID)
	casablanca := apiCreateMovie(t, h, "Casablanca", 102, usa.ID)
	require.NoError(t, h.Repos.Rating.Create(&model.Rating{Rating: 5, MediaID: &casablanca.ID}))

	w := doJSON(t, r, http.MethodGet, "/api/v1/complex-query-first/", "")
	require.Equal(t, http.StatusOK, w.Code)

	var movies []MediaResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &movies))
	require.Len(t, movies, 1)
	assert.Equal(t, "Short French", movies[0].Title)

	w = doJSON(t, r, http.MethodGet, "/api/v1/complex-query-second/", "")
	require.Equal(t, http.StatusOK, w.Code)

	var ratings []RatingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ratings))
	require.Len(t, ratings, 1)
	assert.Equal(t, 5, ratings[0].Rating)
}
