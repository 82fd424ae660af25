package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/user/movieplatform/internal/config"
	"github.com/user/movieplatform/internal/middleware"
	"github.com/user/movieplatform/internal/model"
	"github.com/user/movieplatform/internal/repository"
	"github.com/user/movieplatform/internal/service"
)

// 页面列表每页条数
const webPageSize = 5

// 首页精选条数
const highlightCount = 3

// Handler HTTP 处理器
type Handler struct {
	Repos    *repository.Repositories
	Config   *config.Config
	Catalog  *service.CatalogService
	Exporter *service.Exporter
}

// NewHandler 创建处理器
func NewHandler(repos *repository.Repositories, cfg *config.Config) *Handler {
	return &Handler{
		Repos:    repos,
		Config:   cfg,
		Catalog:  service.NewCatalogService(repos),
		Exporter: service.NewExporter(repos),
	}
}

// RenderData 统一封装公共渲染数据
func (h *Handler) RenderData(c *gin.Context, data gin.H) gin.H {
	res := gin.H{
		"SiteName": h.Config.SiteName,
		"SiteUrl":  h.Config.SiteUrl,
		"Path":     c.Request.URL.Path,
	}

	// 注入用户信息
	session := sessions.Default(c)
	if userinfo := session.Get("userinfo"); userinfo != nil {
		if su, ok := userinfo.(model.SessionUser); ok {
			res["UserInfo"] = su
		}
	}

	for k, v := range data {
		res[k] = v
	}

	return res
}

// reviewView 评论展示数据，星级槽位预先算好，模板里直接 range
type reviewView struct {
	Rating     *model.Rating
	FullStars  []struct{}
	EmptyStars []struct{}
}

func starViews(ratings []*model.Rating) []reviewView {
	views := make([]reviewView, 0, len(ratings))
	for _, r := range ratings {
		full := r.Rating
		if full < 0 {
			full = 0
		}
		if full > 5 {
			full = 5
		}
		views = append(views, reviewView{
			Rating:     r,
			FullStars:  make([]struct{}, full),
			EmptyStars: make([]struct{}, 5-full),
		})
	}
	return views
}

// ==================== 公开页面 ====================

// Home 首页：分页的电影与剧集列表、精选高分条目、搜索
func (h *Handler) Home(c *gin.Context) {
	search := c.Query("search")
	moviesPage, _ := strconv.Atoi(c.DefaultQuery("movies_page", "1"))
	tvshowsPage, _ := strconv.Atoi(c.DefaultQuery("tvshows_page", "1"))
	userID := middleware.GetUserID(c)

	movies, movieTotal, err := h.Catalog.MediaPage(repository.MediaListParams{
		Type:        model.MediaTypeMovie,
		Search:      search,
		OnlyVisible: true,
		Page:        moviesPage,
		PageSize:    webPageSize,
	}, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "500.html", h.RenderData(c, gin.H{
			"Title": "出错了 - " + h.Config.SiteName,
		}))
		return
	}

	tvshows, tvshowTotal, err := h.Catalog.MediaPage(repository.MediaListParams{
		Type:        model.MediaTypeTVShow,
		Search:      search,
		OnlyVisible: true,
		Page:        tvshowsPage,
		PageSize:    webPageSize,
	}, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "500.html", h.RenderData(c, gin.H{
			"Title": "出错了 - " + h.Config.SiteName,
		}))
		return
	}

	highMovies, _ := h.Catalog.HighRated(model.MediaTypeMovie, 4.0)
	highTVShows, _ := h.Catalog.HighRated(model.MediaTypeTVShow, 4.0)
	if len(highMovies) > highlightCount {
		highMovies = highMovies[:highlightCount]
	}
	if len(highTVShows) > highlightCount {
		highTVShows = highTVShows[:highlightCount]
	}

	c.HTML(http.StatusOK, "home.html", h.RenderData(c, gin.H{
		"Title":        h.Config.SiteName + " - 电影与剧集目录",
		"Search":       search,
		"Movies":       movies,
		"MovieTotal":   movieTotal,
		"MoviesPage":   moviesPage,
		"TVShows":      tvshows,
		"TVShowTotal":  tvshowTotal,
		"TVShowsPage":  tvshowsPage,
		"HighMovies":   highMovies,
		"HighTVShows":  highTVShows,
		"HasNextPage":  int64(moviesPage*webPageSize) < movieTotal,
		"HasNextShows": int64(tvshowsPage*webPageSize) < tvshowTotal,
	}))
}

// mediaDetailPage 媒体详情页公共逻辑
func (h *Handler) mediaDetailPage(c *gin.Context, mediaType model.MediaType, page string) {
	id, _ := strconv.Atoi(c.Param("id"))

	media, err := h.Repos.Media.FindByIDAndType(id, mediaType)
	if err != nil || media == nil {
		c.HTML(http.StatusNotFound, "404.html", h.RenderData(c, gin.H{
			"Title": "未找到 - " + h.Config.SiteName,
		}))
		return
	}

	reviews, _ := h.Repos.Rating.ListByMedia(media.ID)

	data := gin.H{
		"Title":   media.String() + " - " + h.Config.SiteName,
		"Media":   media,
		"Reviews": starViews(reviews),
		"Error":   c.Query("error"),
	}
	if avg, err := h.Repos.Media.AverageRating(media.ID); err == nil && avg != nil {
		data["AverageRating"] = *avg
	}

	c.HTML(http.StatusOK, page, h.RenderData(c, data))
}

// Movie 电影详情页
func (h *Handler) Movie(c *gin.Context) {
	h.mediaDetailPage(c, model.MediaTypeMovie, "movie.html")
}

// TVShow 剧集详情页
func (h *Handler) TVShow(c *gin.Context) {
	h.mediaDetailPage(c, model.MediaTypeTVShow, "tvshow.html")
}

// submitRating 详情页提交评分（1-5）
func (h *Handler) submitRating(c *gin.Context, mediaType model.MediaType, redirectPrefix string) {
	id, _ := strconv.Atoi(c.Param("id"))

	media, err := h.Repos.Media.FindByIDAndType(id, mediaType)
	if err != nil || media == nil {
		c.HTML(http.StatusNotFound, "404.html", h.RenderData(c, gin.H{
			"Title": "未找到 - " + h.Config.SiteName,
		}))
		return
	}

	value, err := strconv.Atoi(c.PostForm("rating"))
	if err != nil || value < 1 || value > 5 {
		c.Redirect(http.StatusFound, redirectPrefix+strconv.Itoa(media.ID)+"?error=评分必须在 1 到 5 之间")
		return
	}

	rating := &model.Rating{
		UserID:  middleware.GetUserIDPtr(c),
		Rating:  value,
		MediaID: &media.ID,
	}
	if err := h.Repos.Rating.Create(rating); err != nil {
		c.Redirect(http.StatusFound, redirectPrefix+strconv.Itoa(media.ID)+"?error=评分提交失败")
		return
	}

	// 记录最近浏览
	session := sessions.Default(c)
	session.Set("last_viewed_media", media.ID)
	session.Save()

	c.Redirect(http.StatusFound, redirectPrefix+strconv.Itoa(media.ID))
}

// SubmitMovieRating 电影评分提交
func (h *Handler) SubmitMovieRating(c *gin.Context) {
	h.submitRating(c, model.MediaTypeMovie, "/movie/")
}

// SubmitTVShowRating 剧集评分提交
func (h *Handler) SubmitTVShowRating(c *gin.Context) {
	h.submitRating(c, model.MediaTypeTVShow, "/tvshow/")
}

// ComplexQueries 组合查询页：短片非美国电影、多季美国剧集、区间外评分
func (h *Handler) ComplexQueries(c *gin.Context) {
	movies, err := h.Catalog.MoviesByLengthAndCountry(defaultMaxLength, defaultExcludeCountry)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "500.html", h.RenderData(c, gin.H{
			"Title": "出错了 - " + h.Config.SiteName,
		}))
		return
	}

	tvshows, err := h.Catalog.TVShowsBySeasonsAndCountry(defaultMinSeasons, defaultQueryCountry)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "500.html", h.RenderData(c, gin.H{
			"Title": "出错了 - " + h.Config.SiteName,
		}))
		return
	}

	ratings, err := h.Catalog.RatingsOutsideRange(defaultRangeLo, defaultRangeHi, defaultQueryCountry, defaultTitleContains)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "500.html", h.RenderData(c, gin.H{
			"Title": "出错了 - " + h.Config.SiteName,
		}))
		return
	}

	c.HTML(http.StatusOK, "complex_queries.html", h.RenderData(c, gin.H{
		"Title":   "组合查询 - " + h.Config.SiteName,
		"Movies":  movies,
		"TVShows": tvshows,
		"Reviews": starViews(ratings),
	}))
}

// ==================== 媒体维护页面 ====================

// MediaList 全部媒体列表页
func (h *Handler) MediaList(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	items, total, err := h.Catalog.MediaPage(repository.MediaListParams{
		Search:   c.Query("search"),
		Page:     page,
		PageSize: webPageSize,
	}, middleware.GetUserID(c))
	if err != nil {
		c.HTML(http.StatusInternalServerError, "500.html", h.RenderData(c, gin.H{
			"Title": "出错了 - " + h.Config.SiteName,
		}))
		return
	}

	c.HTML(http.StatusOK, "media_list.html", h.RenderData(c, gin.H{
		"Title":       "全部媒体 - " + h.Config.SiteName,
		"Items":       items,
		"Total":       total,
		"Page":        page,
		"HasNextPage": int64(page*webPageSize) < total,
	}))
}

// MediaDetail 媒体详情页（不区分类型）
func (h *Handler) MediaDetail(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	media, err := h.Repos.Media.FindByID(id)
	if err != nil || media == nil {
		c.HTML(http.StatusNotFound, "404.html", h.RenderData(c, gin.H{
			"Title": "未找到 - " + h.Config.SiteName,
		}))
		return
	}

	reviews, _ := h.Repos.Rating.ListByMedia(media.ID)
	history, _ := h.Repos.History.ListByMedia(media.ID)

	c.HTML(http.StatusOK, "media_detail.html", h.RenderData(c, gin.H{
		"Title":   media.String() + " - " + h.Config.SiteName,
		"Media":   media,
		"Reviews": starViews(reviews),
		"History": history,
	}))
}

// addMediaForm 渲染创建表单
func (h *Handler) addMediaForm(c *gin.Context, page, title string, formErr string) {
	countries, _ := h.Repos.Country.List("")
	genres, _ := h.Repos.Genre.List("")

	c.HTML(http.StatusOK, page, h.RenderData(c, gin.H{
		"Title":     title + " - " + h.Config.SiteName,
		"Countries": countries,
		"Genres":    genres,
		"Error":     formErr,
	}))
}

// AddMoviePage 添加电影表单页
func (h *Handler) AddMoviePage(c *gin.Context) {
	h.addMediaForm(c, "add_movie.html", "添加电影", "")
}

// AddTVShowPage 添加剧集表单页
func (h *Handler) AddTVShowPage(c *gin.Context) {
	h.addMediaForm(c, "add_tvshow.html", "添加剧集", "")
}

// addMedia 表单提交公共逻辑
func (h *Handler) addMedia(c *gin.Context, mediaType model.MediaType, page, title string) {
	releaseDate, err := time.Parse("2006-01-02", c.PostForm("release_date"))
	if err != nil {
		h.addMediaForm(c, page, title, "上映日期格式应为 YYYY-MM-DD")
		return
	}

	var countryID *int
	if id, err := strconv.Atoi(c.PostForm("country_id")); err == nil {
		countryID = &id
	}

	var genreIDs []int
	for _, raw := range c.PostFormArray("genres") {
		if id, err := strconv.Atoi(raw); err == nil {
			genreIDs = append(genreIDs, id)
		}
	}
	genres, err := h.Repos.Genre.FindByIDs(genreIDs)
	if err != nil {
		h.addMediaForm(c, page, title, "加载流派失败")
		return
	}

	media := &model.Media{
		Type:        mediaType,
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Poster:      c.PostForm("poster"),
		ReleaseDate: releaseDate,
		CountryID:   countryID,
		Genres:      genres,
		// 浏览器只在勾选时提交该键，未勾选时整个键缺失
		IsPublished: c.PostForm("is_published") == "on",
	}

	switch mediaType {
	case model.MediaTypeMovie:
		if length, err := strconv.Atoi(c.PostForm("length")); err == nil {
			media.Length = &length
		}
	case model.MediaTypeTVShow:
		if seasons, err := strconv.Atoi(c.PostForm("seasons_count")); err == nil {
			media.SeasonsCount = &seasons
		}
	}

	if err := h.Repos.Media.Create(media); err != nil {
		msg := "保存失败，请重试"
		if model.IsValidationError(err) {
			msg = err.Error()
		}
		h.addMediaForm(c, page, title, msg)
		return
	}

	if mediaType == model.MediaTypeMovie {
		c.Redirect(http.StatusFound, "/movie/"+strconv.Itoa(media.ID))
		return
	}
	c.Redirect(http.StatusFound, "/tvshow/"+strconv.Itoa(media.ID))
}

// AddMediaPage 通用添加表单页，类型由下拉框选择
func (h *Handler) AddMediaPage(c *gin.Context) {
	h.addMediaForm(c, "add_media.html", "添加媒体", "")
}

// AddMedia 通用添加提交
func (h *Handler) AddMedia(c *gin.Context) {
	mediaType := model.MediaType(c.PostForm("type"))
	if mediaType != model.MediaTypeMovie && mediaType != model.MediaTypeTVShow {
		h.addMediaForm(c, "add_media.html", "添加媒体", "媒体类型必须是 movie 或 tvshow")
		return
	}
	h.addMedia(c, mediaType, "add_media.html", "添加媒体")
}

// AddMovie 添加电影
func (h *Handler) AddMovie(c *gin.Context) {
	h.addMedia(c, model.MediaTypeMovie, "add_movie.html", "添加电影")
}

// AddTVShow 添加剧集
func (h *Handler) AddTVShow(c *gin.Context) {
	h.addMedia(c, model.MediaTypeTVShow, "add_tvshow.html", "添加剧集")
}

// ==================== 评分维护页面 ====================

// findMediaRating 解析路径里的媒体和评分，校验归属关系
func (h *Handler) findMediaRating(c *gin.Context) (*model.Media, *model.Rating, bool) {
	mediaID, _ := strconv.Atoi(c.Param("id"))
	ratingID, _ := strconv.Atoi(c.Param("rating"))

	media, err := h.Repos.Media.FindByID(mediaID)
	if err != nil || media == nil {
		return nil, nil, false
	}

	rating, err := h.Repos.Rating.FindByID(ratingID)
	if err != nil || rating == nil || rating.MediaID == nil || *rating.MediaID != media.ID {
		return nil, nil, false
	}

	return media, rating, true
}

// RateEditPage 评分编辑表单页
func (h *Handler) RateEditPage(c *gin.Context) {
	media, rating, ok := h.findMediaRating(c)
	if !ok {
		c.HTML(http.StatusNotFound, "404.html", h.RenderData(c, gin.H{
			"Title": "未找到 - " + h.Config.SiteName,
		}))
		return
	}

	c.HTML(http.StatusOK, "rate_edit.html", h.RenderData(c, gin.H{
		"Title":  "编辑评分 - " + h.Config.SiteName,
		"Media":  media,
		"Rating": rating,
	}))
}

// RateEdit 评分编辑提交
func (h *Handler) RateEdit(c *gin.Context) {
	media, rating, ok := h.findMediaRating(c)
	if !ok {
		c.HTML(http.StatusNotFound, "404.html", h.RenderData(c, gin.H{
			"Title": "未找到 - " + h.Config.SiteName,
		}))
		return
	}

	value, err := strconv.Atoi(c.PostForm("rating"))
	if err != nil {
		c.HTML(http.StatusOK, "rate_edit.html", h.RenderData(c, gin.H{
			"Title":  "编辑评分 - " + h.Config.SiteName,
			"Media":  media,
			"Rating": rating,
			"Error":  "评分必须是数字",
		}))
		return
	}

	if err := h.Repos.Rating.UpdateValue(rating.ID, value); err != nil {
		msg := "保存失败，请重试"
		if model.IsValidationError(err) {
			msg = err.Error()
		}
		c.HTML(http.StatusOK, "rate_edit.html", h.RenderData(c, gin.H{
			"Title":  "编辑评分 - " + h.Config.SiteName,
			"Media":  media,
			"Rating": rating,
			"Error":  msg,
		}))
		return
	}

	c.Redirect(http.StatusFound, "/media/"+strconv.Itoa(media.ID))
}

// RateDelete 评分删除
func (h *Handler) RateDelete(c *gin.Context) {
	media, rating, ok := h.findMediaRating(c)
	if !ok {
		c.HTML(http.StatusNotFound, "404.html", h.RenderData(c, gin.H{
			"Title": "未找到 - " + h.Config.SiteName,
		}))
		return
	}

	if err := h.Repos.Rating.Delete(rating.ID); err != nil {
		c.Redirect(http.StatusFound, "/media/"+strconv.Itoa(media.ID))
		return
	}

	c.Redirect(http.StatusFound, "/media/"+strconv.Itoa(media.ID))
}
