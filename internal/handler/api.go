package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/user/movieplatform/internal/middleware"
	"github.com/user/movieplatform/internal/model"
	"github.com/user/movieplatform/internal/repository"
	"github.com/user/movieplatform/internal/utils"
)

// API 列表页大小
const apiPageSize = 10

// 组合查询接口的默认参数（沿用最初的演示取值）
const (
	defaultMaxLength      = 120
	defaultExcludeCountry = "USA"
	defaultMinSeasons     = 5
	defaultRangeLo        = 1
	defaultRangeHi        = 2
	defaultQueryCountry   = "USA"
	defaultTitleContains  = "a"
)

// apiError 把内部错误映射到 API 响应：校验错误 400，其余 500
func apiError(c *gin.Context, err error) {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message, "field": ve.Field})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "服务器内部错误"})
}

func pageParam(c *gin.Context) int {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	return page
}

// ==================== 流派 ====================

func (h *Handler) APIGenreList(c *gin.Context) {
	genres, err := h.Repos.Genre.List(c.Query("search"))
	if err != nil {
		apiError(c, err)
		return
	}

	out := make([]GenreResponse, 0, len(genres))
	for _, g := range genres {
		out = append(out, newGenreResponse(g))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) APIGenreDetail(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	genre, err := h.Repos.Genre.FindByID(id)
	if err != nil {
		apiError(c, err)
		return
	}
	if genre == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "流派不存在"})
		return
	}
	c.JSON(http.StatusOK, newGenreResponse(genre))
}

func (h *Handler) APIGenreCreate(c *gin.Context) {
	var payload struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求体格式错误"})
		return
	}

	genre := &model.Genre{Name: payload.Name}
	if err := h.Repos.Genre.Create(genre); err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newGenreResponse(genre))
}

func (h *Handler) APIGenreUpdate(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	genre, err := h.Repos.Genre.FindByID(id)
	if err != nil {
		apiError(c, err)
		return
	}
	if genre == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "流派不存在"})
		return
	}

	var payload struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求体格式错误"})
		return
	}

	genre.Name = payload.Name
	if err := h.Repos.Genre.Update(genre); err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, newGenreResponse(genre))
}

func (h *Handler) APIGenreDelete(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	if err := h.Repos.Genre.Delete(id); err != nil {
		apiError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ==================== 国家 ====================

func (h *Handler) APICountryList(c *gin.Context) {
	countries, err := h.Repos.Country.List(c.Query("search"))
	if err != nil {
		apiError(c, err)
		return
	}

	out := make([]*CountryResponse, 0, len(countries))
	for _, country := range countries {
		out = append(out, newCountryResponse(country))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) APICountryDetail(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	country, err := h.Repos.Country.FindByID(id)
	if err != nil {
		apiError(c, err)
		return
	}
	if country == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "国家不存在"})
		return
	}
	c.JSON(http.StatusOK, newCountryResponse(country))
}

func (h *Handler) APICountryCreate(c *gin.Context) {
	var payload struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求体格式错误"})
		return
	}

	country := &model.Country{Name: payload.Name}
	if err := h.Repos.Country.Create(country); err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newCountryResponse(country))
}

func (h *Handler) APICountryUpdate(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	country, err := h.Repos.Country.FindByID(id)
	if err != nil {
		apiError(c, err)
		return
	}
	if country == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "国家不存在"})
		return
	}

	var payload struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求体格式错误"})
		return
	}

	country.Name = payload.Name
	if err := h.Repos.Country.Update(country); err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCountryResponse(country))
}

// APICountryDelete 删除国家。依赖的媒体和评分级联删除，不阻塞
func (h *Handler) APICountryDelete(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	if err := h.Repos.Country.Delete(id); err != nil {
		apiError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ==================== 媒体（电影/剧集共用，按类型分发）====================

// mediaPayload 媒体创建/更新请求体
type mediaPayload struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Poster       string `json:"poster"`
	ReleaseDate  string `json:"release_date"` // 2006-01-02
	CountryID    *int   `json:"country_id"`
	GenreIDs     []int  `json:"genre_ids"`
	IsPublished  *bool  `json:"is_published"`
	Length       *int   `json:"length"`
	SeasonsCount *int   `json:"seasons_count"`
}

func (h *Handler) apiMediaList(c *gin.Context, mediaType model.MediaType) {
	params := repository.MediaListParams{
		Type:     mediaType,
		Search:   c.Query("search"),
		Sort:     c.Query("sort"),
		Desc:     c.Query("order") == "desc",
		Page:     pageParam(c),
		PageSize: apiPageSize,
	}
	if countryID, err := strconv.Atoi(c.Query("country")); err == nil {
		params.CountryID = countryID
	}
	if from, err := time.Parse("2006-01-02", c.Query("release_date_from")); err == nil {
		params.ReleaseFrom = &from
	}
	if to, err := time.Parse("2006-01-02", c.Query("release_date_to")); err == nil {
		params.ReleaseTo = &to
	}

	items, total, err := h.Catalog.MediaPage(params, middleware.GetUserID(c))
	if err != nil {
		apiError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.PageData{
		Count:    total,
		Page:     params.Page,
		PageSize: apiPageSize,
		Results:  newMediaResponses(items),
	})
}

func (h *Handler) apiMediaDetail(c *gin.Context, mediaType model.MediaType) {
	id, _ := strconv.Atoi(c.Param("id"))
	media, err := h.Repos.Media.FindByIDAndType(id, mediaType)
	if err != nil {
		apiError(c, err)
		return
	}
	if media == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "媒体不存在"})
		return
	}

	resp := newMediaResponse(media)
	if avg, err := h.Repos.Media.AverageRating(media.ID); err == nil {
		resp.AverageRating = avg
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) apiMediaCreate(c *gin.Context, mediaType model.MediaType) {
	var payload mediaPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求体格式错误"})
		return
	}

	media, err := h.mediaFromPayload(&payload, mediaType)
	if err != nil {
		apiError(c, err)
		return
	}

	if err := h.Repos.Media.Create(media); err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newMediaResponse(media))
}

func (h *Handler) apiMediaUpdate(c *gin.Context, mediaType model.MediaType) {
	id, _ := strconv.Atoi(c.Param("id"))
	existing, err := h.Repos.Media.FindByIDAndType(id, mediaType)
	if err != nil {
		apiError(c, err)
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "媒体不存在"})
		return
	}

	var payload mediaPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求体格式错误"})
		return
	}

	media, err := h.mediaFromPayload(&payload, mediaType)
	if err != nil {
		apiError(c, err)
		return
	}
	media.ID = existing.ID
	media.CreatedAt = existing.CreatedAt

	if err := h.Repos.Media.Update(media); err != nil {
		apiError(c, err)
		return
	}

	updated, err := h.Repos.Media.FindByID(media.ID)
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, newMediaResponse(updated))
}

func (h *Handler) apiMediaDelete(c *gin.Context, mediaType model.MediaType) {
	id, _ := strconv.Atoi(c.Param("id"))
	media, err := h.Repos.Media.FindByIDAndType(id, mediaType)
	if err != nil {
		apiError(c, err)
		return
	}
	if media == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "媒体不存在"})
		return
	}
	if err := h.Repos.Media.Delete(media.ID); err != nil {
		apiError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// apiMediaHighRated 平均分严格大于阈值的媒体，默认阈值 4.0
func (h *Handler) apiMediaHighRated(c *gin.Context, mediaType model.MediaType) {
	threshold := 4.0
	if t, err := strconv.ParseFloat(c.Query("threshold"), 64); err == nil {
		threshold = t
	}

	items, err := h.Catalog.HighRated(mediaType, threshold)
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, newMediaResponses(items))
}

// apiMediaAddRating 给指定媒体添加评分。
// 请求体缺少评分值时返回 400，不创建任何行
func (h *Handler) apiMediaAddRating(c *gin.Context, mediaType model.MediaType) {
	id, _ := strconv.Atoi(c.Param("id"))
	media, err := h.Repos.Media.FindByIDAndType(id, mediaType)
	if err != nil {
		apiError(c, err)
		return
	}
	if media == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "媒体不存在"})
		return
	}

	var payload struct {
		Rating *int `json:"rating"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil || payload.Rating == nil || *payload.Rating == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rating value is required"})
		return
	}

	rating := &model.Rating{
		UserID:  middleware.GetUserIDPtr(c),
		Rating:  *payload.Rating,
		MediaID: &media.ID,
	}
	if err := h.Repos.Rating.Create(rating); err != nil {
		apiError(c, err)
		return
	}

	rating.Media = media
	c.JSON(http.StatusCreated, newRatingResponse(rating))
}

// mediaFromPayload 把请求体转换成模型，解析日期并装载流派
func (h *Handler) mediaFromPayload(p *mediaPayload, mediaType model.MediaType) (*model.Media, error) {
	releaseDate, err := time.Parse("2006-01-02", p.ReleaseDate)
	if err != nil {
		return nil, &model.ValidationError{Field: "ReleaseDate", Message: "上映日期格式应为 YYYY-MM-DD"}
	}

	genres, err := h.Repos.Genre.FindByIDs(p.GenreIDs)
	if err != nil {
		return nil, err
	}

	media := &model.Media{
		Type:        mediaType,
		Title:       p.Title,
		Description: p.Description,
		Poster:      p.Poster,
		ReleaseDate: releaseDate,
		CountryID:   p.CountryID,
		Genres:      genres,
		IsPublished: true,
	}
	if p.IsPublished != nil {
		media.IsPublished = *p.IsPublished
	}

	switch mediaType {
	case model.MediaTypeMovie:
		media.Length = p.Length
	case model.MediaTypeTVShow:
		media.SeasonsCount = p.SeasonsCount
	}

	return media, nil
}

// ==================== 电影 ====================

func (h *Handler) APIMovieList(c *gin.Context)      { h.apiMediaList(c, model.MediaTypeMovie) }
func (h *Handler) APIMovieDetail(c *gin.Context)    { h.apiMediaDetail(c, model.MediaTypeMovie) }
func (h *Handler) APIMovieCreate(c *gin.Context)    { h.apiMediaCreate(c, model.MediaTypeMovie) }
func (h *Handler) APIMovieUpdate(c *gin.Context)    { h.apiMediaUpdate(c, model.MediaTypeMovie) }
func (h *Handler) APIMovieDelete(c *gin.Context)    { h.apiMediaDelete(c, model.MediaTypeMovie) }
func (h *Handler) APIMovieHighRated(c *gin.Context) { h.apiMediaHighRated(c, model.MediaTypeMovie) }
func (h *Handler) APIMovieAddRating(c *gin.Context) { h.apiMediaAddRating(c, model.MediaTypeMovie) }

// ==================== 剧集 ====================

func (h *Handler) APITVShowList(c *gin.Context)   { h.apiMediaList(c, model.MediaTypeTVShow) }
func (h *Handler) APITVShowDetail(c *gin.Context) { h.apiMediaDetail(c, model.MediaTypeTVShow) }
func (h *Handler) APITVShowCreate(c *gin.Context) { h.apiMediaCreate(c, model.MediaTypeTVShow) }
func (h *Handler) APITVShowUpdate(c *gin.Context) { h.apiMediaUpdate(c, model.MediaTypeTVShow) }
func (h *Handler) APITVShowDelete(c *gin.Context) { h.apiMediaDelete(c, model.MediaTypeTVShow) }
func (h *Handler) APITVShowHighRated(c *gin.Context) {
	h.apiMediaHighRated(c, model.MediaTypeTVShow)
}
func (h *Handler) APITVShowAddRating(c *gin.Context) {
	h.apiMediaAddRating(c, model.MediaTypeTVShow)
}

// ==================== 评分 ====================

func (h *Handler) APIRatingList(c *gin.Context) {
	page := pageParam(c)
	ratings, total, err := h.Repos.Rating.List(page, apiPageSize)
	if err != nil {
		apiError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.PageData{
		Count:    total,
		Page:     page,
		PageSize: apiPageSize,
		Results:  newRatingResponses(ratings),
	})
}

func (h *Handler) APIRatingDetail(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	rating, err := h.Repos.Rating.FindByID(id)
	if err != nil {
		apiError(c, err)
		return
	}
	if rating == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "评分不存在"})
		return
	}
	c.JSON(http.StatusOK, newRatingResponse(rating))
}

func (h *Handler) APIRatingCreate(c *gin.Context) {
	var payload struct {
		Rating  *int `json:"rating"`
		MediaID *int `json:"media_id"`
	}
	// 显式传 0 与缺字段同样拒绝，不落到模型默认值
	if err := c.ShouldBindJSON(&payload); err != nil || payload.Rating == nil || *payload.Rating == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rating value is required"})
		return
	}

	if payload.MediaID != nil {
		media, err := h.Repos.Media.FindByID(*payload.MediaID)
		if err != nil {
			apiError(c, err)
			return
		}
		if media == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "指定的媒体不存在"})
			return
		}
	}

	rating := &model.Rating{
		UserID:  middleware.GetUserIDPtr(c),
		Rating:  *payload.Rating,
		MediaID: payload.MediaID,
	}
	if err := h.Repos.Rating.Create(rating); err != nil {
		apiError(c, err)
		return
	}

	created, err := h.Repos.Rating.FindByID(rating.ID)
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newRatingResponse(created))
}

func (h *Handler) APIRatingUpdate(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	rating, err := h.Repos.Rating.FindByID(id)
	if err != nil {
		apiError(c, err)
		return
	}
	if rating == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "评分不存在"})
		return
	}

	var payload struct {
		Rating *int `json:"rating"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil || payload.Rating == nil || *payload.Rating == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rating value is required"})
		return
	}

	if err := h.Repos.Rating.UpdateValue(id, *payload.Rating); err != nil {
		apiError(c, err)
		return
	}

	updated, err := h.Repos.Rating.FindByID(id)
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, newRatingResponse(updated))
}

func (h *Handler) APIRatingDelete(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	rating, err := h.Repos.Rating.FindByID(id)
	if err != nil {
		apiError(c, err)
		return
	}
	if rating == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "评分不存在"})
		return
	}
	if err := h.Repos.Rating.Delete(id); err != nil {
		apiError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ==================== 组合查询演示接口 ====================

// APIComplexQueryFirst 电影按时长与国家排除的组合过滤
func (h *Handler) APIComplexQueryFirst(c *gin.Context) {
	maxLength := defaultMaxLength
	if v, err := strconv.Atoi(c.Query("max_length")); err == nil {
		maxLength = v
	}
	excludeCountry := c.DefaultQuery("exclude_country", defaultExcludeCountry)

	items, err := h.Catalog.MoviesByLengthAndCountry(maxLength, excludeCountry)
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, newMediaResponses(items))
}

// APIComplexQuerySecond 评分按区间外、国家与标题的组合过滤
func (h *Handler) APIComplexQuerySecond(c *gin.Context) {
	lo, hi := defaultRangeLo, defaultRangeHi
	if v, err := strconv.Atoi(c.Query("range_lo")); err == nil {
		lo = v
	}
	if v, err := strconv.Atoi(c.Query("range_hi")); err == nil {
		hi = v
	}
	country := c.DefaultQuery("country", defaultQueryCountry)
	title := c.DefaultQuery("title", defaultTitleContains)

	ratings, err := h.Catalog.RatingsOutsideRange(lo, hi, country, title)
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, newRatingResponses(ratings))
}
