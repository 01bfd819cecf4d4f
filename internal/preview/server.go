// Package preview 提供本地预览 HTTP 服务：
// 把编辑器当前文档渲染成 HTML，并暴露健康检查与 Prometheus 指标。
package preview

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aiInterview/internal/draft"
	"aiInterview/internal/metrics"
	"aiInterview/internal/render"
	"aiInterview/internal/resume"
	"aiInterview/internal/template"
)

// DocumentSource 是预览服务读取编辑器状态的最小接口。
type DocumentSource interface {
	Loaded() bool
	Title() string
	Snapshot() (*resume.Layout, *template.Template)
}

// NewRouter 构建预览服务的 Gin 路由引擎。
func NewRouter(logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		CorrelationIDMiddleware(),
		SlogLoggerMiddleware(logger),
		metrics.GinMiddleware(),
		gin.Recovery(),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// RegisterRoutes 挂载预览与草稿端点。drafts 允许为 nil。
func RegisterRoutes(router *gin.Engine, source DocumentSource, drafts *draft.Store) {
	router.GET("/preview", func(c *gin.Context) {
		if !source.Loaded() {
			Error(c, http.StatusNotFound, "no resume loaded")
			return
		}
		layout, tpl := source.Snapshot()
		html, err := render.Document(source.Title(), layout, tpl)
		if err != nil {
			LoggerFromContext(c).Error("preview render failed", slog.Any("error", err))
			Error(c, http.StatusInternalServerError, "render failed")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
	})

	if drafts == nil {
		return
	}
	router.GET("/drafts", func(c *gin.Context) {
		snaps, err := drafts.All(c.Request.Context())
		if err != nil {
			LoggerFromContext(c).Error("draft list failed", slog.Any("error", err))
			Error(c, http.StatusInternalServerError, "draft list failed")
			return
		}
		c.JSON(http.StatusOK, snaps)
	})
}
