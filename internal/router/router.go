package router

import (
	"html/template"
	"net/http"
	"path/filepath"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"
	"github.com/user/movieplatform/internal/handler"
	"github.com/user/movieplatform/internal/middleware"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ==================== 公开页面 ====================
	public := r.Group("/")
	public.Use(middleware.OptionalAuth(h.Config.AppSecret))
	{
		public.GET("/", h.Home)
		public.GET("/movie/:id", h.Movie)
		public.POST("/movie/:id", h.SubmitMovieRating)
		public.GET("/tvshow/:id", h.TVShow)
		public.POST("/tvshow/:id", h.SubmitTVShowRating)
		public.GET("/media", h.MediaList)
		public.GET("/media/:id", h.MediaDetail)
		public.GET("/complex_queries", h.ComplexQueries)
	}

	// ==================== 认证页面 ====================
	auth := r.Group("/auth")
	auth.Use(middleware.OptionalAuth(h.Config.AppSecret))
	{
		auth.GET("/login", h.LoginPage)
		auth.POST("/login", h.Login)
		auth.GET("/register", h.RegisterPage)
		auth.POST("/register", h.Register)
		auth.POST("/logout", h.Logout)
	}

	// ==================== 需要登录的维护页面 ====================
	manage := r.Group("/")
	manage.Use(middleware.RequireAuth(h.Config.AppSecret))
	{
		manage.GET("/add_media", h.AddMediaPage)
		manage.POST("/add_media", h.AddMedia)
		manage.GET("/add_movie", h.AddMoviePage)
		manage.POST("/add_movie", h.AddMovie)
		manage.GET("/add_tvshow", h.AddTVShowPage)
		manage.POST("/add_tvshow", h.AddTVShow)
		manage.GET("/media/:id/rate/:rating/edit", h.RateEditPage)
		manage.POST("/media/:id/rate/:rating/edit", h.RateEdit)
		manage.POST("/media/:id/rate/:rating/delete", h.RateDelete)
	}

	// ==================== REST API ====================
	api := r.Group("/api/v1")
	api.Use(middleware.OptionalAuth(h.Config.AppSecret))
	{
		api.GET("/genres/", h.APIGenreList)
		api.GET("/genres/:id/", h.APIGenreDetail)

		api.GET("/countries/", h.APICountryList)
		api.GET("/countries/:id/", h.APICountryDetail)

		api.GET("/movies/", h.APIMovieList)
		api.GET("/movies/high_rated/", h.APIMovieHighRated)
		api.GET("/movies/:id/", h.APIMovieDetail)
		api.POST("/movies/:id/add_rating/", h.APIMovieAddRating)

		api.GET("/tvshows/", h.APITVShowList)
		api.GET("/tvshows/high_rated/", h.APITVShowHighRated)
		api.GET("/tvshows/:id/", h.APITVShowDetail)
		api.POST("/tvshows/:id/add_rating/", h.APITVShowAddRating)

		api.GET("/ratings/", h.APIRatingList)
		api.GET("/ratings/:id/", h.APIRatingDetail)
		api.POST("/ratings/", h.APIRatingCreate)
		api.PUT("/ratings/:id/", h.APIRatingUpdate)
		api.DELETE("/ratings/:id/", h.APIRatingDelete)

		api.GET("/complex-query-first/", h.APIComplexQueryFirst)
		api.GET("/complex-query-second/", h.APIComplexQuerySecond)
	}

	// 写操作需要登录
	apiAuth := r.Group("/api/v1")
	apiAuth.Use(middleware.RequireAuth(h.Config.AppSecret))
	{
		apiAuth.POST("/genres/", h.APIGenreCreate)
		apiAuth.PUT("/genres/:id/", h.APIGenreUpdate)
		apiAuth.DELETE("/genres/:id/", h.APIGenreDelete)

		apiAuth.POST("/countries/", h.APICountryCreate)
		apiAuth.PUT("/countries/:id/", h.APICountryUpdate)
		apiAuth.DELETE("/countries/:id/", h.APICountryDelete)

		apiAuth.POST("/movies/", h.APIMovieCreate)
		apiAuth.PUT("/movies/:id/", h.APIMovieUpdate)
		apiAuth.DELETE("/movies/:id/", h.APIMovieDelete)

		apiAuth.POST("/tvshows/", h.APITVShowCreate)
		apiAuth.PUT("/tvshows/:id/", h.APITVShowUpdate)
		apiAuth.DELETE("/tvshows/:id/", h.APITVShowDelete)
	}

	// ==================== 管理后台 ====================
	admin := r.Group("/admin")
	admin.Use(middleware.RequireAuth(h.Config.AppSecret))
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("", h.AdminDashboard)
		admin.GET("/export/movies", h.AdminExportMovies)
		admin.GET("/export/tvshows", h.AdminExportTVShows)
	}
}

// LoadTemplates 使用 multitemplate 加载模板，解决模板继承问题
func LoadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	partials, err := filepath.Glob(templatesDir + "/partials/*.html")
	if err != nil {
		panic(err)
	}

	// 组装模板文件列表
	assemble := func(view string) []string {
		files := make([]string, 0)
		files = append(files, layouts...)
		files = append(files, partials...)
		files = append(files, view)
		return files
	}

	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
	}

	pages := []string{
		"home", "movie", "tvshow",
		"media_list", "media_detail", "complex_queries",
		"add_media", "add_movie", "add_tvshow", "rate_edit",
		"login", "register",
		"admin_dashboard",
		"404", "500",
	}

	for _, page := range pages {
		viewPath := templatesDir + "/pages/" + page + ".html"
		r.AddFromFilesFuncs(page+".html", funcMap, assemble(viewPath)...)
	}

	return r
}
