package router

import (
	"comments-go/internal/api/handler"

	"github.com/gin-gonic/gin"
)

// Handlers 路由依赖的全部处理器
type Handlers struct {
	Comment *handler.CommentHandler
	Search  *handler.SearchHandler
	Captcha *handler.CaptchaHandler
	Admin   *handler.IndexAdminHandler
	Stream  *handler.StreamHandler
}

// Setup 注册所有业务路由
func Setup(r *gin.Engine, h *Handlers, adminMiddleware gin.HandlerFunc) {
	api := r.Group("/api")

	// --- 评论模块 ---
	comments := api.Group("/comments")
	{
		comments.GET("", h.Comment.List)
		comments.POST("", h.Comment.Create)
		comments.POST("/preview", h.Comment.Preview)
		comments.GET("/search", h.Search.Search)
	}

	api.GET("/captcha", h.Captcha.Issue)

	// --- 搜索索引管理 ---
	admin := api.Group("/admin/search", adminMiddleware)
	{
		admin.POST("/index", h.Admin.CreateIndex)
		admin.POST("/sync", h.Admin.Sync)
	}

	// --- 实时推送 ---
	r.GET("/ws/comments", h.Stream.Comments)
}
