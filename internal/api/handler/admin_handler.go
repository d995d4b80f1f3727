package handler

import (
	"comments-go/internal/api/dto"
	"comments-go/internal/api/response"
	"comments-go/internal/service"
	"comments-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type IndexAdminHandler struct {
	adminService *service.IndexAdminService
}

func NewIndexAdminHandler(adminService *service.IndexAdminService) *IndexAdminHandler {
	return &IndexAdminHandler{adminService: adminService}
}

// CreateIndex 创建评论索引
// @Summary 创建评论索引
// @Description 创建带版本号的物理索引并切换别名，force=true 时先删除旧索引
// @Tags 搜索管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.IndexCreateRequest false "选项"
// @Success 200 {object} response.Response "创建成功"
// @Failure 401 {object} response.ErrorResponse "未认证"
// @Failure 403 {object} response.ErrorResponse "无权限"
// @Failure 500 {object} response.ErrorResponse "创建失败"
// @Router /admin/search/index [post]
func (h *IndexAdminHandler) CreateIndex(c *gin.Context) {
	var req dto.IndexCreateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ValidationFailed(c, "请求参数无效", dto.FieldErrors(err))
			return
		}
	}

	if err := h.adminService.CreateIndex(c.Request.Context(), req.Force); err != nil {
		logger.Error("Failed to create comments index", zap.Error(err))
		response.InternalError(c, "创建索引失败: "+err.Error())
		return
	}

	response.OK(c, "创建索引成功", nil)
}

// Sync 回填评论索引
// @Summary 回填评论索引
// @Description 按 id 区间分批把评论写入索引
// @Tags 搜索管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.IndexSyncRequest false "回填范围"
// @Success 200 {object} response.Response{data=service.SyncResult} "同步完成"
// @Failure 401 {object} response.ErrorResponse "未认证"
// @Failure 403 {object} response.ErrorResponse "无权限"
// @Failure 500 {object} response.ErrorResponse "同步失败"
// @Router /admin/search/sync [post]
func (h *IndexAdminHandler) Sync(c *gin.Context) {
	var req dto.IndexSyncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ValidationFailed(c, "请求参数无效", dto.FieldErrors(err))
			return
		}
	}

	res, err := h.adminService.Sync(c.Request.Context(), req.Chunk, req.FromID, req.ToID)
	if err != nil {
		logger.Error("Failed to sync comments index", zap.Error(err))
		response.InternalError(c, "同步索引失败: "+err.Error())
		return
	}

	response.OK(c, "同步完成", res)
}
