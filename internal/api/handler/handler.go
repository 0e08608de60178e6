package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"userdir/backend/internal/service"
	apperrors "userdir/backend/pkg/errors"
	"userdir/backend/pkg/response"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	User       *UserHandler
	Department *DepartmentHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		User:       NewUserHandler(svc.User),
		Department: NewDepartmentHandler(svc.Department),
		Export:     NewExportHandler(svc.Export),
	}
}

// writeError 业务错误到 HTTP 状态码的统一映射
// 校验 400，未命中 404，冲突 409，凭证 401，其余 500（细节只进日志）
func writeError(c *gin.Context, err error) {
	var ve *apperrors.ValidationError
	switch {
	case errors.As(err, &ve):
		response.BadRequest(c, 10001, ve.Error())
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		response.Unauthorized(c, 11001, "邮箱或密码错误")
	case errors.Is(err, apperrors.ErrNotFound):
		response.NotFound(c, 20001, "资源不存在")
	case errors.Is(err, apperrors.ErrDuplicate):
		response.Conflict(c, 20002, "资源已存在")
	default:
		response.InternalError(c)
	}
}

// parseIDParam 解析路径中的 :id，非法时写入 400 并返回 false
func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, 10001, "无效的 ID")
		return 0, false
	}
	return id, true
}
