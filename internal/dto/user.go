package dto

// ── 用户模块 DTO ──

// CreateUserRequest 管理端直接建档请求
type CreateUserRequest struct {
	UserName     string `json:"user_name" binding:"required"`
	Email        string `json:"email"     binding:"required,email"`
	Address      string `json:"address"   binding:"required"`
	Contact      string `json:"contact"   binding:"required,min=5,max=10"`
	Password     string `json:"password"  binding:"required,min=8"`
	DepartmentID *int64 `json:"department_id"`
}

// UpdateUserRequest 更新用户请求（按 ID 整体替换可变字段）
type UpdateUserRequest struct {
	UserName     string `json:"user_name" binding:"required"`
	Email        string `json:"email"     binding:"required,email"`
	Address      string `json:"address"   binding:"required"`
	Contact      string `json:"contact"   binding:"required,min=5,max=10"`
	DepartmentID *int64 `json:"department_id"`
}

// FilterUsersRequest 城市+联系方式组合过滤参数（两者皆可选）
type FilterUsersRequest struct {
	City    string `form:"city"`
	Contact string `form:"contact"`
}

// SortRequest 排序参数
type SortRequest struct {
	SortBy    string `form:"sort_by"   binding:"required"`
	Direction string `form:"direction" binding:"required"`
}

// BulkEmailUpdateRequest 按城市批量改邮箱请求
type BulkEmailUpdateRequest struct {
	City     string `json:"city"      binding:"required"`
	NewEmail string `json:"new_email" binding:"required,email"`
}

// AssignDepartmentRequest 用户分配部门请求
type AssignDepartmentRequest struct {
	UserID       int64 `json:"user_id"       binding:"required"`
	DepartmentID int64 `json:"department_id" binding:"required"`
}

// ── 响应视图 ──

// UserResponse 用户信息响应（不含密码散列）
type UserResponse struct {
	ID         int64               `json:"id"`
	UserName   string              `json:"user_name"`
	Email      string              `json:"email"`
	Address    string              `json:"address"`
	Contact    string              `json:"contact"`
	Department *DepartmentResponse `json:"department,omitempty"`
	Roles      []string            `json:"roles,omitempty"`
}

// ── 投影视图（直接从窄查询扫描，不经过完整实体）──

// UserSummary 用户摘要投影
type UserSummary struct {
	UserName string `json:"user_name"`
	Email    string `json:"email"`
	Contact  string `json:"contact"`
}

// UserDept 用户+部门联合投影（内连接语义：无部门的用户被排除）
type UserDept struct {
	UserName string `json:"user_name"`
	Email    string `json:"email"`
	DeptName string `json:"dept_name"`
}
