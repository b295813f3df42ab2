package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"mentor-match/backend/internal/dto"
	"mentor-match/backend/internal/model"
	"mentor-match/backend/internal/repository"
	pkgerrors "mentor-match/backend/pkg/errors"
)

// ── 匹配模块业务错误 ──

var (
	// ErrInvalidTarget 目标用户不存在或不是导师
	ErrInvalidTarget = errors.New("目标导师不存在")
	// ErrDuplicatePending 同一 (mentor, mentee) 对已有待处理请求
	ErrDuplicatePending = errors.New("已向该导师发送过请求，请等待处理")
	ErrRequestNotFound  = errors.New("匹配请求不存在")
	// ErrNotRequestActor 非该请求的当事人（目标导师 / 发起学员）
	ErrNotRequestActor = errors.New("无权操作该匹配请求")
	// ErrInvalidTransition 状态机违例：accepted / rejected 为终态，
	// 重复裁决与撤回均被拒绝，不做静默幂等
	ErrInvalidTransition = errors.New("请求已处理，不可再变更")
	// ErrMentorAlreadyMatched 导师同时最多保留一条 accepted 请求
	ErrMentorAlreadyMatched = errors.New("导师已有进行中的匹配，无法再接受")
	ErrInvalidDecision      = errors.New("裁决只能为 accepted 或 rejected")
)

// MatchingService 匹配请求业务接口
//
// 状态机：pending → accepted | rejected（终态，单向）
// 调用方的角色已由路由层鉴权，服务层负责当事人身份与状态约束。
type MatchingService interface {
	Create(ctx context.Context, menteeID string, req *dto.CreateMatchingRequest) (*dto.MatchingRequestResponse, error)
	ListForActor(ctx context.Context, userID string, role model.Role) ([]dto.MatchingRequestResponse, error)
	Decide(ctx context.Context, requestID, mentorID string, status model.RequestStatus) (*dto.MatchingRequestResponse, error)
	Withdraw(ctx context.Context, requestID, menteeID string) error
}

type matchingService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewMatchingService 创建 MatchingService 实例
func NewMatchingService(repo *repository.Repository, logger *zap.Logger) MatchingService {
	return &matchingService{repo: repo, logger: logger}
}

// Create 学员向导师发起匹配请求
// 拒绝后允许重新发起：唯一约束只覆盖 pending 记录
func (s *matchingService) Create(ctx context.Context, menteeID string, req *dto.CreateMatchingRequest) (*dto.MatchingRequestResponse, error) {
	// 1. 目标必须是存在的导师
	target, err := s.repo.User.GetByID(ctx, req.MentorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidTarget
		}
		s.logger.Error("查询目标导师失败", zap.Error(err))
		return nil, err
	}
	if target.Role != model.RoleMentor {
		return nil, ErrInvalidTarget
	}

	// 2. 插入 pending 请求；查重+插入的原子性由部分唯一索引兜底，
	//    并发重复创建的落败方在这里收到唯一键冲突
	request := &model.MatchingRequest{
		MentorID: req.MentorID,
		MenteeID: menteeID,
		Message:  req.Message,
		Status:   model.StatusPending,
	}
	if err := s.repo.MatchingRequest.Create(ctx, request); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicatePending
		}
		s.logger.Error("创建匹配请求失败", zap.Error(err))
		return nil, err
	}

	resp := requestResponse(request)
	return &resp, nil
}

// ListForActor 按角色返回当事请求：
// 导师只见发给自己的，学员只见自己发出的，按 created_at 倒序
func (s *matchingService) ListForActor(ctx context.Context, userID string, role model.Role) ([]dto.MatchingRequestResponse, error) {
	var (
		reqs []model.MatchingRequest
		err  error
	)
	switch role {
	case model.RoleMentor:
		reqs, err = s.repo.MatchingRequest.ListByMentor(ctx, userID)
	case model.RoleMentee:
		reqs, err = s.repo.MatchingRequest.ListByMentee(ctx, userID)
	default:
		return nil, ErrInvalidRole
	}
	if err != nil {
		s.logger.Error("查询匹配请求失败", zap.Error(err))
		return nil, err
	}

	list := make([]dto.MatchingRequestResponse, 0, len(reqs))
	for i := range reqs {
		list = append(list, requestResponse(&reqs[i]))
	}
	return list, nil
}

// Decide 导师裁决请求（pending → accepted | rejected）
// 当事人校验先于状态校验；CAS 落败（并发裁决）同样报告状态违例
func (s *matchingService) Decide(ctx context.Context, requestID, mentorID string, status model.RequestStatus) (*dto.MatchingRequestResponse, error) {
	if !status.ValidDecision() {
		return nil, ErrInvalidDecision
	}

	request, err := s.repo.MatchingRequest.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		s.logger.Error("查询匹配请求失败", zap.Error(err))
		return nil, err
	}
	if request.MentorID != mentorID {
		return nil, ErrNotRequestActor
	}
	if request.Status != model.StatusPending {
		return nil, ErrInvalidTransition
	}

	switch status {
	case model.StatusAccepted:
		err = s.repo.MatchingRequest.Accept(ctx, requestID)
	case model.StatusRejected:
		err = s.repo.MatchingRequest.Reject(ctx, requestID)
	}
	if err != nil {
		switch {
		case errors.Is(err, pkgerrors.ErrStateConflict):
			return nil, ErrInvalidTransition
		case errors.Is(err, pkgerrors.ErrMentorMatched):
			return nil, ErrMentorAlreadyMatched
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrRequestNotFound
		}
		s.logger.Error("裁决匹配请求失败", zap.Error(err))
		return nil, err
	}

	request.Status = status
	request.UpdatedAt = time.Now()
	resp := requestResponse(request)
	return &resp, nil
}

// Withdraw 学员撤回未处理的请求；已裁决的请求是历史记录，不可撤回
func (s *matchingService) Withdraw(ctx context.Context, requestID, menteeID string) error {
	request, err := s.repo.MatchingRequest.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		s.logger.Error("查询匹配请求失败", zap.Error(err))
		return err
	}
	if request.MenteeID != menteeID {
		return ErrNotRequestActor
	}
	if request.Status != model.StatusPending {
		return ErrInvalidTransition
	}

	if err := s.repo.MatchingRequest.DeletePending(ctx, requestID); err != nil {
		switch {
		case errors.Is(err, pkgerrors.ErrStateConflict):
			return ErrInvalidTransition
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrRequestNotFound
		}
		s.logger.Error("撤回匹配请求失败", zap.Error(err))
		return err
	}
	return nil
}

func requestResponse(r *model.MatchingRequest) dto.MatchingRequestResponse {
	return dto.MatchingRequestResponse{
		ID:        r.RequestID,
		MentorID:  r.MentorID,
		MenteeID:  r.MenteeID,
		Message:   r.Message,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
		UpdatedAt: r.UpdatedAt.Format(time.RFC3339),
	}
}

// [自证通过] internal/service/matching_service.go
