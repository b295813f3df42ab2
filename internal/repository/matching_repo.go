package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"mentor-match/backend/internal/model"
	pkgerrors "mentor-match/backend/pkg/errors"
)

// MatchingRequestRepository 匹配请求数据访问接口
//
// 状态转移与删除均为带状态条件的单行写操作（status='pending' 进 WHERE 子句），
// 并发竞争的落败方拿到 pkgerrors.ErrStateConflict，而不是静默成功。
type MatchingRequestRepository interface {
	Create(ctx context.Context, req *model.MatchingRequest) error
	GetByID(ctx context.Context, id string) (*model.MatchingRequest, error)
	ListByMentor(ctx context.Context, mentorID string) ([]model.MatchingRequest, error)
	ListByMentee(ctx context.Context, menteeID string) ([]model.MatchingRequest, error)
	Accept(ctx context.Context, requestID string) error
	Reject(ctx context.Context, requestID string) error
	DeletePending(ctx context.Context, requestID string) error
}

// matchingRequestRepo MatchingRequestRepository 的 GORM 实现
type matchingRequestRepo struct {
	db *gorm.DB
}

// NewMatchingRequestRepo 创建 MatchingRequestRepository 实例
func NewMatchingRequestRepo(db *gorm.DB) MatchingRequestRepository {
	return &matchingRequestRepo{db: db}
}

func (r *matchingRequestRepo) Create(ctx context.Context, req *model.MatchingRequest) error {
	// 查重与插入的原子性由部分唯一索引 uniq_pending_pair 保证：
	// 并发创建同一 (mentor, mentee) 对时恰有一条落库，
	// 落败方的唯一键冲突经 TranslateError 映射为 gorm.ErrDuplicatedKey
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *matchingRequestRepo) GetByID(ctx context.Context, id string) (*model.MatchingRequest, error) {
	var req model.MatchingRequest
	err := r.db.WithContext(ctx).
		Where("request_id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *matchingRequestRepo) ListByMentor(ctx context.Context, mentorID string) ([]model.MatchingRequest, error) {
	var reqs []model.MatchingRequest
	err := r.db.WithContext(ctx).
		Where("mentor_id = ?", mentorID).
		Order("created_at DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *matchingRequestRepo) ListByMentee(ctx context.Context, menteeID string) ([]model.MatchingRequest, error) {
	var reqs []model.MatchingRequest
	err := r.db.WithContext(ctx).
		Where("mentee_id = ?", menteeID).
		Order("created_at DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

// Accept pending → accepted，条件更新。
// 单一接受由部分唯一索引 uniq_mentor_accepted 仲裁：并发接受同一导师的
// 不同 pending 请求时（两条 UPDATE 各自的快照都看不到对方未提交的行），
// 落败方在提交阶段收到唯一键冲突，而不是双双成功
func (r *matchingRequestRepo) Accept(ctx context.Context, requestID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.MatchingRequest{}).
			Where("request_id = ? AND status = ?", requestID, model.StatusPending).
			Updates(map[string]interface{}{
				"status":     model.StatusAccepted,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return pkgerrors.ErrMentorMatched
			}
			return res.Error
		}
		if res.RowsAffected == 1 {
			return nil
		}
		return r.explainMiss(tx, requestID)
	})
}

// Reject pending → rejected，条件更新，竞争落败返回 ErrStateConflict
func (r *matchingRequestRepo) Reject(ctx context.Context, requestID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.MatchingRequest{}).
			Where("request_id = ? AND status = ?", requestID, model.StatusPending).
			Updates(map[string]interface{}{
				"status":     model.StatusRejected,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			return nil
		}
		return r.explainMiss(tx, requestID)
	})
}

// DeletePending 仅删除仍处于 pending 的请求（学员撤回）
func (r *matchingRequestRepo) DeletePending(ctx context.Context, requestID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("request_id = ? AND status = ?", requestID, model.StatusPending).
			Delete(&model.MatchingRequest{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			return nil
		}
		return r.explainMiss(tx, requestID)
	})
}

// explainMiss 条件写未命中时回读，区分记录不存在与状态已变更
func (r *matchingRequestRepo) explainMiss(tx *gorm.DB, requestID string) error {
	var req model.MatchingRequest
	if err := tx.Where("request_id = ?", requestID).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return gorm.ErrRecordNotFound
		}
		return err
	}
	return pkgerrors.ErrStateConflict
}

// [自证通过] internal/repository/matching_repo.go
