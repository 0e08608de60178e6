package dto

// ── 部门模块 DTO ──

// CreateDepartmentRequest 创建部门请求
type CreateDepartmentRequest struct {
	DeptCode string `json:"dept_code" binding:"required,max=50"`
	DeptName string `json:"dept_name" binding:"required,max=100"`
}

// UpdateDepartmentRequest 更新部门请求（按 ID 整体替换可变字段）
type UpdateDepartmentRequest struct {
	DeptCode string `json:"dept_code" binding:"required,max=50"`
	DeptName string `json:"dept_name" binding:"required,max=100"`
}

// RenameDepartmentRequest 按 ID 批量改名请求
type RenameDepartmentRequest struct {
	NewName string `json:"new_name" binding:"required,max=100"`
}

// DepartmentResponse 部门信息响应
type DepartmentResponse struct {
	ID       int64  `json:"id"`
	DeptCode string `json:"dept_code"`
	DeptName string `json:"dept_name"`
}
