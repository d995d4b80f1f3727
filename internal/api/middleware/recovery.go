package middleware

import (
	"errors"
	"net"
	"os"
	"strings"

	"comments-go/internal/api/response"
	"comments-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery 捕获 panic；客户端已断开时只记录日志，不再写响应
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			if brokenPipe(rec) {
				logger.Warn("Client connection closed",
					zap.Any("error", rec),
					zap.String("path", c.Request.URL.Path),
				)
				c.Abort()
				return
			}

			logger.Error("Panic recovered",
				zap.Any("error", rec),
				zap.String("method", c.Request.Method),
				zap.String("route", c.FullPath()),
				zap.String("path", c.Request.URL.Path),
				zap.Stack("stack"),
			)

			if !c.Writer.Written() {
				response.InternalError(c, "服务器内部错误")
			}
			c.Abort()
		}()

		c.Next()
	}
}

func brokenPipe(rec interface{}) bool {
	err, ok := rec.(error)
	if !ok {
		return false
	}
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	var sysErr *os.SyscallError
	if !errors.As(opErr, &sysErr) {
		return false
	}
	msg := strings.ToLower(sysErr.Error())
	return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
}
