package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sora-rara/bracu-student-hub-sub004/pkg/response"
)

const studentIDKey = "student_id"

// studentIDMaxLen 限制外部传入学号的最大长度，防止日志注入
const studentIDMaxLen = 32

// StudentIdentity 学生身份提取中间件
// 从请求头 X-Student-Id 读取学号并注入 gin.Context。
// 身份认证由外层网关负责，本服务只做标识提取与格式校验。
func StudentIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := strings.TrimSpace(c.GetHeader("X-Student-Id"))
		if sid == "" || len(sid) > studentIDMaxLen {
			response.Unauthorized(c, 10002, "缺少学生标识")
			c.Abort()
			return
		}

		c.Set(studentIDKey, sid)
		c.Next()
	}
}
