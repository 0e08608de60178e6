package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"userdir/backend/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc *service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc *service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportUsers 导出用户名单
// GET /api/v1/users/export
func (h *ExportHandler) ExportUsers(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportUsers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
