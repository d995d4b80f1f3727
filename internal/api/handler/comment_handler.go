package handler

import (
	"errors"
	"net/http"

	"comments-go/internal/api/dto"
	"comments-go/internal/api/response"
	"comments-go/internal/service"
	"comments-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CommentHandler struct {
	list          *service.CommentListService
	comments      *service.CommentService
	attachmentURL dto.AttachmentURLFunc
}

func NewCommentHandler(list *service.CommentListService, comments *service.CommentService, attachmentURL dto.AttachmentURLFunc) *CommentHandler {
	return &CommentHandler{list: list, comments: comments, attachmentURL: attachmentURL}
}

// List 评论树
// @Summary 评论列表
// @Description 分页返回顶级评论，以及这些评论的全部后代（按层序平铺）
// @Tags 评论
// @Produce json
// @Param page query int false "页码" default(1)
// @Param sort query string false "排序字段: user_name, email, created_at" default(created_at)
// @Param direction query string false "排序方向: asc, desc" default(desc)
// @Success 200 {object} response.Response{data=dto.CommentListData} "获取成功"
// @Failure 422 {object} response.ErrorResponse "请求参数无效"
// @Failure 503 {object} response.ErrorResponse "服务暂不可用"
// @Router /comments [get]
func (h *CommentHandler) List(c *gin.Context) {
	var q dto.CommentListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ValidationFailed(c, "请求参数无效", dto.FieldErrors(err))
		return
	}

	tree, err := h.list.List(c.Request.Context(), q.Page, q.Sort, q.Direction)
	if err != nil {
		logger.Error("Failed to list comments", zap.Error(err))
		response.ServiceUnavailable(c, "评论服务暂不可用")
		return
	}

	response.OK(c, "获取评论列表成功", dto.CommentListData{
		Roots:           dto.ToCommentInfos(tree.Roots.Items, h.attachmentURL),
		DescendantsFlat: dto.ToCommentInfos(tree.DescendantsFlat, h.attachmentURL),
		Meta: dto.PageMeta{
			CurrentPage: tree.Roots.CurrentPage,
			PerPage:     tree.Roots.PerPage,
			Total:       tree.Roots.Total,
			LastPage:    tree.Roots.LastPage,
		},
	})
}

// Create 发表评论
// @Summary 发表评论
// @Description 校验验证码后保存评论，可附带 jpg/png/gif 图片或 txt 文本
// @Tags 评论
// @Accept multipart/form-data
// @Produce json
// @Param parent_id formData int false "父评论ID"
// @Param user_name formData string true "用户名（字母数字）"
// @Param email formData string true "邮箱"
// @Param home_page formData string false "主页"
// @Param text formData string true "评论内容"
// @Param captcha_token formData string true "验证码令牌"
// @Param captcha_answer formData string true "验证码答案"
// @Param file formData file false "附件"
// @Success 201 {object} response.Response{data=dto.CommentCreatedData} "发表成功"
// @Failure 422 {object} response.ErrorResponse "请求参数无效"
// @Failure 500 {object} response.ErrorResponse "服务器错误"
// @Router /comments [post]
func (h *CommentHandler) Create(c *gin.Context) {
	var form dto.CommentCreateForm
	if err := c.ShouldBind(&form); err != nil {
		response.ValidationFailed(c, "请求参数无效", dto.FieldErrors(err))
		return
	}

	in := &service.CreateCommentInput{
		ParentID:      form.ParentID,
		UserName:      form.UserName,
		Email:         form.Email,
		Text:          form.Text,
		CaptchaToken:  form.CaptchaToken,
		CaptchaAnswer: form.CaptchaAnswer,
		IP:            c.ClientIP(),
		UserAgent:     c.Request.UserAgent(),
	}
	if form.HomePage != "" {
		in.HomePage = &form.HomePage
	}

	fileHeader, err := c.FormFile("file")
	switch {
	case err == nil:
		f, err := fileHeader.Open()
		if err != nil {
			response.ValidationFailed(c, "附件无法读取", map[string]string{"file": "unreadable"})
			return
		}
		defer f.Close()
		in.File = &service.Upload{Filename: fileHeader.Filename, Size: fileHeader.Size, Reader: f}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		response.ValidationFailed(c, "附件无法读取", map[string]string{"file": "unreadable"})
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), in)
	if err != nil {
		handleCreateError(c, err)
		return
	}

	response.Created(c, "发表评论成功", dto.CommentCreatedData{ID: comment.ID})
}

// Preview 预览评论
// @Summary 预览评论
// @Description 返回清洗后的 HTML，不保存
// @Tags 评论
// @Accept json
// @Produce json
// @Param request body dto.CommentPreviewRequest true "评论内容"
// @Success 200 {object} response.Response{data=dto.CommentPreviewData} "预览成功"
// @Failure 422 {object} response.ErrorResponse "请求参数无效"
// @Router /comments/preview [post]
func (h *CommentHandler) Preview(c *gin.Context) {
	var req dto.CommentPreviewRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ValidationFailed(c, "请求参数无效", dto.FieldErrors(err))
		return
	}

	response.OK(c, "预览成功", dto.CommentPreviewData{HTML: h.comments.Preview(req.Text)})
}

func handleCreateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCaptchaInvalid), errors.Is(err, service.ErrCaptchaIncorrect):
		response.ValidationFailed(c, err.Error(), map[string]string{"captcha_answer": "invalid"})
	case errors.Is(err, service.ErrParentNotFound):
		response.ValidationFailed(c, err.Error(), map[string]string{"parent_id": "exists"})
	case errors.Is(err, service.ErrUnsupportedAttachment),
		errors.Is(err, service.ErrAttachmentTooLarge),
		errors.Is(err, service.ErrInvalidImage):
		response.ValidationFailed(c, err.Error(), map[string]string{"file": "invalid"})
	default:
		logger.Error("Failed to create comment", zap.Error(err))
		response.InternalError(c, "发表评论失败")
	}
}
