package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"userdir/backend/internal/model"
	"userdir/backend/pkg/response"
)

// MustGetEmail 从 Gin 上下文中安全提取当前用户邮箱。
// 如果 JWT 中间件未正确注入 email，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetEmail(c *gin.Context) (string, bool) {
	v, exists := c.Get("email")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// actorContext 把认证用户作为审计执行者注入请求上下文
// 写入类接口统一经由此处取上下文，保存时据此填充执行者字段
func actorContext(c *gin.Context) (context.Context, bool) {
	email, ok := MustGetEmail(c)
	if !ok {
		return nil, false
	}
	return model.WithActor(c.Request.Context(), email), true
}
