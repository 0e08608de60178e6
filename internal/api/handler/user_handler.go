package handler

import (
	"github.com/gin-gonic/gin"

	"userdir/backend/internal/dto"
	"userdir/backend/internal/service"
	"userdir/backend/pkg/response"
)

// UserHandler 用户模块 HTTP 处理器
type UserHandler struct {
	userSvc *service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc *service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// Create 管理端建档
// POST /api/v1/users
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	ctx, ok := actorContext(c)
	if !ok {
		return
	}

	user, err := h.userSvc.Save(ctx, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, user)
}

// Get 按 ID 查询用户
// GET /api/v1/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	user, err := h.userSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, user)
}

// Update 按 ID 更新用户
// PUT /api/v1/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	ctx, ok := actorContext(c)
	if !ok {
		return
	}

	user, err := h.userSvc.Update(ctx, id, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, user)
}

// Delete 按 ID 删除用户
// DELETE /api/v1/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.userSvc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, nil)
}

// List 查询全部用户
// GET /api/v1/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userSvc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, users)
}

// ListPaginated 分页查询用户
// GET /api/v1/users/paginated?page=&page_size=
func (h *UserHandler) ListPaginated(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	users, total, err := h.userSvc.ListPaginated(c.Request.Context(), &page)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OKPage(c, users, total, page.GetPage(), page.GetPageSize())
}

// ListSorted 排序查询用户
// GET /api/v1/users/sorted?sort_by=&direction=
func (h *UserHandler) ListSorted(c *gin.Context) {
	var req dto.SortRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	users, err := h.userSvc.ListSorted(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, users)
}

// Filter 城市+联系方式组合过滤
// GET /api/v1/users/filter?city=&contact=
func (h *UserHandler) Filter(c *gin.Context) {
	var req dto.FilterUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	users, err := h.userSvc.Filter(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, users)
}

// ListByCity 按城市查询用户
// GET /api/v1/users/by-city?city=&sorted=
func (h *UserHandler) ListByCity(c *gin.Context) {
	city := c.Query("city")

	var (
		users []dto.UserResponse
		err   error
	)
	if c.Query("sorted") == "true" {
		users, err = h.userSvc.ListByCitySorted(c.Request.Context(), city)
	} else {
		users, err = h.userSvc.ListByCity(c.Request.Context(), city)
	}
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, users)
}

// CountByEmailDomain 按邮箱后缀统计用户数
// GET /api/v1/users/count-by-domain?domain=
func (h *UserHandler) CountByEmailDomain(c *gin.Context) {
	count, err := h.userSvc.CountByEmailDomain(c.Request.Context(), c.Query("domain"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, gin.H{"count": count})
}

// ListWithDepartment 查询已分配部门的用户
// GET /api/v1/users/with-department
func (h *UserHandler) ListWithDepartment(c *gin.Context) {
	users, err := h.userSvc.ListWithDepartment(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, users)
}

// ListByDepartmentName 按部门名称查询用户
// GET /api/v1/users/by-department?name=
func (h *UserHandler) ListByDepartmentName(c *gin.Context) {
	users, err := h.userSvc.ListByDepartmentName(c.Request.Context(), c.Query("name"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, users)
}

// ListSortedByDepartmentName 按部门名称倒序查询用户
// GET /api/v1/users/sorted-by-department
func (h *UserHandler) ListSortedByDepartmentName(c *gin.Context) {
	users, err := h.userSvc.ListSortedByDepartmentName(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, users)
}

// AssignDepartment 为用户分配部门
// POST /api/v1/users/assign-department
func (h *UserHandler) AssignDepartment(c *gin.Context) {
	var req dto.AssignDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	ctx, ok := actorContext(c)
	if !ok {
		return
	}

	user, err := h.userSvc.AssignDepartment(ctx, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, user)
}

// BulkUpdateEmails 按城市批量改邮箱
// PATCH /api/v1/users/emails
func (h *UserHandler) BulkUpdateEmails(c *gin.Context) {
	var req dto.BulkEmailUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	affected, err := h.userSvc.UpdateEmailsByCity(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, gin.H{"affected": affected})
}

// BulkDeleteByCity 按城市批量删除用户
// DELETE /api/v1/users/by-city?city=
func (h *UserHandler) BulkDeleteByCity(c *gin.Context) {
	affected, err := h.userSvc.DeleteByCity(c.Request.Context(), c.Query("city"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, gin.H{"affected": affected})
}

// Summaries 用户摘要投影
// GET /api/v1/users/summaries?city=
func (h *UserHandler) Summaries(c *gin.Context) {
	summaries, err := h.userSvc.Summaries(c.Request.Context(), c.Query("city"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, summaries)
}

// UserDepartments 用户+部门联合投影
// GET /api/v1/users/user-departments
func (h *UserHandler) UserDepartments(c *gin.Context) {
	rows, err := h.userSvc.UserDepartments(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, rows)
}
