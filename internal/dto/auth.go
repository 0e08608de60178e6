package dto

// ── 认证模块 DTO ──

// RegisterRequest 注册请求
type RegisterRequest struct {
	UserName string `json:"user_name" binding:"required"`
	Email    string `json:"email"     binding:"required,email"`
	Address  string `json:"address"   binding:"required"`
	Contact  string `json:"contact"   binding:"required,min=5,max=10"`
	Password string `json:"password"  binding:"required,min=8"`
	Role     string `json:"role"      binding:"omitempty,oneof=ROLE_USER ROLE_ADMIN"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse 登录成功响应
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int          `json:"expires_in"` // Token 有效期（秒）
	User        UserResponse `json:"user"`
}
