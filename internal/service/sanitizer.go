package service

import (
	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer 评论文本白名单清洗：仅允许 a[href|title]、code、i、strong
type Sanitizer struct {
	policy *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	p := bluemonday.NewPolicy()
	p.AllowElements("code", "i", "strong")
	p.AllowAttrs("href", "title").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")
	p.RequireParseableURLs(true)
	p.RequireNoFollowOnLinks(true)
	return &Sanitizer{policy: p}
}

// Sanitize 返回可安全渲染的 HTML
func (s *Sanitizer) Sanitize(text string) string {
	return s.policy.Sanitize(text)
}
