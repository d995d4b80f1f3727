package handler

import (
	"comments-go/internal/api/dto"
	"comments-go/internal/api/response"
	"comments-go/internal/service"
	"comments-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CaptchaHandler struct {
	captchaService *service.CaptchaService
}

func NewCaptchaHandler(captchaService *service.CaptchaService) *CaptchaHandler {
	return &CaptchaHandler{captchaService: captchaService}
}

// Issue 获取验证码
// @Summary 获取验证码
// @Description 返回一次性文本验证码，发表评论时提交 token 与答案
// @Tags 评论
// @Produce json
// @Success 200 {object} response.Response{data=dto.CaptchaData} "获取成功"
// @Failure 500 {object} response.ErrorResponse "服务器错误"
// @Router /captcha [get]
func (h *CaptchaHandler) Issue(c *gin.Context) {
	ch, err := h.captchaService.Issue(c.Request.Context())
	if err != nil {
		logger.Error("Failed to issue captcha", zap.Error(err))
		response.InternalError(c, "获取验证码失败")
		return
	}

	response.OK(c, "获取验证码成功", dto.CaptchaData{Token: ch.Token, Challenge: ch.Challenge})
}
