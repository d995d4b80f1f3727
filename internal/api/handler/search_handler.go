package handler

import (
	"errors"

	"comments-go/internal/api/dto"
	"comments-go/internal/api/response"
	"comments-go/internal/service"
	"comments-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SearchHandler struct {
	searchService *service.SearchService
	attachmentURL dto.AttachmentURLFunc
}

func NewSearchHandler(searchService *service.SearchService, attachmentURL dto.AttachmentURLFunc) *SearchHandler {
	return &SearchHandler{searchService: searchService, attachmentURL: attachmentURL}
}

// Search 搜索评论
// @Summary 搜索评论
// @Description 按评论内容、用户名、邮箱搜索，结果按创建时间倒序，带高亮
// @Tags 搜索
// @Produce json
// @Param q query string true "搜索关键词（2-200 个字符）"
// @Param page query int false "页码" default(1)
// @Param per_page query int false "每页数量（1-50）" default(20)
// @Success 200 {object} response.Response{data=dto.CommentSearchData} "搜索成功"
// @Failure 422 {object} response.ErrorResponse "请求参数无效"
// @Failure 503 {object} response.ErrorResponse "搜索服务降级"
// @Router /comments/search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	var q dto.CommentSearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ValidationFailed(c, "请求参数无效", dto.FieldErrors(err))
		return
	}

	res, err := h.searchService.Search(c.Request.Context(), q.Q, q.Page, q.PerPage)
	if err != nil {
		if errors.Is(err, service.ErrSearchUnavailable) {
			response.SearchDegraded(c, err.Error())
			return
		}
		logger.Error("Failed to search comments", zap.Error(err))
		response.ServiceUnavailable(c, "搜索服务暂不可用")
		return
	}

	items := make([]dto.CommentInfo, 0, len(res.Items))
	for i := range res.Items {
		info := dto.ToCommentInfo(&res.Items[i].Comment, h.attachmentURL)
		info.Highlight = res.Items[i].Highlight
		items = append(items, info)
	}

	query := res.Query
	response.OK(c, "搜索成功", dto.CommentSearchData{
		Items: items,
		Meta: dto.PageMeta{
			Query:       &query,
			CurrentPage: res.CurrentPage,
			PerPage:     res.PerPage,
			Total:       res.Total,
			LastPage:    res.LastPage,
		},
	})
}
