package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mentor-match/backend/internal/dto"
	"mentor-match/backend/internal/model"
	"mentor-match/backend/internal/service"
	"mentor-match/backend/pkg/response"
)

// MatchingHandler 匹配请求 HTTP 处理器
type MatchingHandler struct {
	matchingSvc service.MatchingService
}

// NewMatchingHandler 创建 MatchingHandler
func NewMatchingHandler(matchingSvc service.MatchingService) *MatchingHandler {
	return &MatchingHandler{matchingSvc: matchingSvc}
}

// Create 学员发起匹配请求
// POST /api/matching-requests
func (h *MatchingHandler) Create(c *gin.Context) {
	menteeID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateMatchingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.matchingSvc.Create(c.Request.Context(), menteeID, &req)
	if err != nil {
		h.writeMatchingError(c, err)
		return
	}

	response.Created(c, result)
}

// List 按调用者角色列出匹配请求：mentor 看收到的，mentee 看发出的
// GET /api/matching-requests
func (h *MatchingHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	results, err := h.matchingSvc.ListForActor(c.Request.Context(), userID, role)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, results)
}

// Incoming 导师收到的匹配请求
// GET /api/matching-requests/incoming
func (h *MatchingHandler) Incoming(c *gin.Context) {
	mentorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	results, err := h.matchingSvc.ListForActor(c.Request.Context(), mentorID, model.RoleMentor)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, results)
}

// Outgoing 学员发出的匹配请求
// GET /api/matching-requests/outgoing
func (h *MatchingHandler) Outgoing(c *gin.Context) {
	menteeID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	results, err := h.matchingSvc.ListForActor(c.Request.Context(), menteeID, model.RoleMentee)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, results)
}

// Decide 导师裁决匹配请求（接受 / 拒绝）
// PUT /api/matching-requests/:id
func (h *MatchingHandler) Decide(c *gin.Context) {
	mentorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateMatchingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.matchingSvc.Decide(c.Request.Context(), c.Param("id"), mentorID, model.RequestStatus(req.Status))
	if err != nil {
		h.writeMatchingError(c, err)
		return
	}

	response.OK(c, result)
}

// Withdraw 学员撤回待处理的匹配请求
// DELETE /api/matching-requests/:id
func (h *MatchingHandler) Withdraw(c *gin.Context) {
	menteeID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.matchingSvc.Withdraw(c.Request.Context(), c.Param("id"), menteeID); err != nil {
		h.writeMatchingError(c, err)
		return
	}

	response.OK(c, nil)
}

// writeMatchingError 统一翻译匹配模块业务错误
func (h *MatchingHandler) writeMatchingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidTarget):
		response.Error(c, http.StatusUnprocessableEntity, 13001, "请求对象必须是已注册的导师")
	case errors.Is(err, service.ErrDuplicatePending):
		response.Conflict(c, 13002, "已存在对该导师的待处理请求")
	case errors.Is(err, service.ErrRequestNotFound):
		response.NotFound(c, 13003, "匹配请求不存在")
	case errors.Is(err, service.ErrNotRequestActor):
		response.Forbidden(c, 10003, "无权操作该匹配请求")
	case errors.Is(err, service.ErrInvalidTransition):
		response.Conflict(c, 13004, "请求已被处理，无法变更")
	case errors.Is(err, service.ErrMentorAlreadyMatched):
		response.Conflict(c, 13005, "导师已有接受的匹配")
	case errors.Is(err, service.ErrInvalidDecision):
		response.BadRequest(c, 10001, "状态仅允许 accepted 或 rejected")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/matching_handler.go
