package dto

// CaptchaData 验证码
type CaptchaData struct {
	Token     string `json:"token"`
	Challenge string `json:"challenge"`
}
