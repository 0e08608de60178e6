package handler

import (
	"github.com/gin-gonic/gin"

	"userdir/backend/internal/dto"
	"userdir/backend/internal/service"
	"userdir/backend/pkg/response"
)

// DepartmentHandler 部门模块 HTTP 处理器
type DepartmentHandler struct {
	deptSvc *service.DepartmentService
}

// NewDepartmentHandler 创建 DepartmentHandler
func NewDepartmentHandler(deptSvc *service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{deptSvc: deptSvc}
}

// Create 创建部门
// POST /api/v1/departments
func (h *DepartmentHandler) Create(c *gin.Context) {
	var req dto.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	ctx, ok := actorContext(c)
	if !ok {
		return
	}

	dept, err := h.deptSvc.Save(ctx, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, dept)
}

// Get 按 ID 查询部门
// GET /api/v1/departments/:id
func (h *DepartmentHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	dept, err := h.deptSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, dept)
}

// GetByName 按名称查询部门
// GET /api/v1/departments/by-name?name=
func (h *DepartmentHandler) GetByName(c *gin.Context) {
	dept, err := h.deptSvc.GetByName(c.Request.Context(), c.Query("name"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, dept)
}

// Update 按 ID 更新部门
// PUT /api/v1/departments/:id
func (h *DepartmentHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	ctx, ok := actorContext(c)
	if !ok {
		return
	}

	dept, err := h.deptSvc.Update(ctx, id, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, dept)
}

// Delete 按 ID 删除部门
// DELETE /api/v1/departments/:id
func (h *DepartmentHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.deptSvc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, nil)
}

// List 查询全部部门
// GET /api/v1/departments
func (h *DepartmentHandler) List(c *gin.Context) {
	depts, err := h.deptSvc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, depts)
}

// CountByName 按名称统计部门数
// GET /api/v1/departments/count?name=
func (h *DepartmentHandler) CountByName(c *gin.Context) {
	count, err := h.deptSvc.CountByName(c.Request.Context(), c.Query("name"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, gin.H{"count": count})
}

// FilterByName 按名称关键词过滤部门
// GET /api/v1/departments/filter?keyword=
func (h *DepartmentHandler) FilterByName(c *gin.Context) {
	depts, err := h.deptSvc.FilterByName(c.Request.Context(), c.Query("keyword"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, depts)
}

// ListSorted 排序查询部门
// GET /api/v1/departments/sorted?sort_by=&direction=
func (h *DepartmentHandler) ListSorted(c *gin.Context) {
	var req dto.SortRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	depts, err := h.deptSvc.ListSorted(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, depts)
}

// ListPaginated 分页查询部门
// GET /api/v1/departments/paginated?page=&page_size=
func (h *DepartmentHandler) ListPaginated(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	depts, total, err := h.deptSvc.ListPaginated(c.Request.Context(), &page)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OKPage(c, depts, total, page.GetPage(), page.GetPageSize())
}

// Rename 按 ID 批量改名
// PATCH /api/v1/departments/:id/name
func (h *DepartmentHandler) Rename(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.RenameDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	affected, err := h.deptSvc.RenameByID(c.Request.Context(), id, req.NewName)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, gin.H{"affected": affected})
}

// BulkDeleteByName 按名称批量删除部门
// DELETE /api/v1/departments/by-name?name=
func (h *DepartmentHandler) BulkDeleteByName(c *gin.Context) {
	affected, err := h.deptSvc.DeleteByName(c.Request.Context(), c.Query("name"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, gin.H{"affected": affected})
}
