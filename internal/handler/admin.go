package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/movieplatform/internal/model"
	"github.com/user/movieplatform/internal/service"
	"github.com/user/movieplatform/internal/utils"
)

// ==================== 管理后台 ====================

// AdminDashboard 后台首页
func (h *Handler) AdminDashboard(c *gin.Context) {
	movieCount, _ := h.Repos.Media.CountByType(model.MediaTypeMovie)
	tvshowCount, _ := h.Repos.Media.CountByType(model.MediaTypeTVShow)
	userCount, _ := h.Repos.User.Count()

	c.HTML(http.StatusOK, "admin_dashboard.html", h.RenderData(c, gin.H{
		"Title":       "管理后台 - " + h.Config.SiteName,
		"MovieCount":  movieCount,
		"TVShowCount": tvshowCount,
		"UserCount":   userCount,
	}))
}

// exportFile 输出导出文件
func exportFile(c *gin.Context, file *service.ExportFile, err error) {
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

// AdminExportMovies 导出电影集合，?format=json|csv|xlsx
func (h *Handler) AdminExportMovies(c *gin.Context) {
	file, err := h.Exporter.ExportMovies(c.DefaultQuery("format", "json"))
	exportFile(c, file, err)
}

// AdminExportTVShows 导出剧集集合，?format=json|csv|xlsx
func (h *Handler) AdminExportTVShows(c *gin.Context) {
	file, err := h.Exporter.ExportTVShows(c.DefaultQuery("format", "json"))
	exportFile(c, file, err)
}
