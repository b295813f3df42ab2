package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"mentor-match/backend/internal/model"
	"mentor-match/backend/internal/repository"
	pkgerrors "mentor-match/backend/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // key: user_id
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	// 模拟 uniq_users_email (LOWER(email)) 唯一索引
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%03d", m.seq)
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.UserID]; !ok {
		return gorm.ErrRecordNotFound
	}
	user.UpdatedAt = time.Now()
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) UpdateImage(_ context.Context, userID string, data []byte, mime string) error {
	u, ok := m.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.ProfileImage = data
	u.ProfileImageMime = mime
	u.UpdatedAt = time.Now()
	return nil
}

func (m *mockUserRepo) ListMentors(_ context.Context, filter *repository.MentorFilter) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if u.Role != model.RoleMentor {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.TechStack != "" && !u.TechStack.Contains(filter.TechStack) {
			continue
		}
		result = append(result, *u)
	}

	// 与真实实现一致：排序键 + user_id 次级排序
	sort.Slice(result, func(i, j int) bool {
		if filter.SortBy == "tech_stack" {
			ti, tj := firstElem(result[i].TechStack), firstElem(result[j].TechStack)
			// 空技术栈排在最后（NULLS LAST）
			switch {
			case ti == "" && tj != "":
				return false
			case ti != "" && tj == "":
				return true
			case ti != tj:
				return ti < tj
			}
		} else if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].UserID < result[j].UserID
	})
	return result, nil
}

func firstElem(arr model.StringArray) string {
	if len(arr) == 0 {
		return ""
	}
	return arr[0]
}

// ── Mock MatchingRequestRepository ──

type mockMatchingRepo struct {
	requests map[string]*model.MatchingRequest // key: request_id
	seq      int
	clock    time.Time
}

func newMockMatchingRepo() *mockMatchingRepo {
	return &mockMatchingRepo{
		requests: make(map[string]*model.MatchingRequest),
		clock:    time.Now(),
	}
}

func (m *mockMatchingRepo) Create(_ context.Context, req *model.MatchingRequest) error {
	// 模拟部分唯一索引 uniq_pending_pair
	for _, r := range m.requests {
		if r.MentorID == req.MentorID && r.MenteeID == req.MenteeID && r.Status == model.StatusPending {
			return gorm.ErrDuplicatedKey
		}
	}
	m.seq++
	if req.RequestID == "" {
		req.RequestID = fmt.Sprintf("req-%03d", m.seq)
	}
	// 递增时钟保证 created_at 可排序
	m.clock = m.clock.Add(time.Second)
	req.CreatedAt = m.clock
	req.UpdatedAt = m.clock
	m.requests[req.RequestID] = req
	return nil
}

func (m *mockMatchingRepo) GetByID(_ context.Context, id string) (*model.MatchingRequest, error) {
	if r, ok := m.requests[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMatchingRepo) ListByMentor(_ context.Context, mentorID string) ([]model.MatchingRequest, error) {
	return m.list(func(r *model.MatchingRequest) bool { return r.MentorID == mentorID }), nil
}

func (m *mockMatchingRepo) ListByMentee(_ context.Context, menteeID string) ([]model.MatchingRequest, error) {
	return m.list(func(r *model.MatchingRequest) bool { return r.MenteeID == menteeID }), nil
}

func (m *mockMatchingRepo) list(match func(*model.MatchingRequest) bool) []model.MatchingRequest {
	var result []model.MatchingRequest
	for _, r := range m.requests {
		if match(r) {
			result = append(result, *r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func (m *mockMatchingRepo) Accept(_ context.Context, requestID string) error {
	r, ok := m.requests[requestID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if r.Status != model.StatusPending {
		return pkgerrors.ErrStateConflict
	}
	// 模拟 uniq_mentor_accepted 部分唯一索引的仲裁
	for _, other := range m.requests {
		if other.MentorID == r.MentorID && other.Status == model.StatusAccepted {
			return pkgerrors.ErrMentorMatched
		}
	}
	r.Status = model.StatusAccepted
	r.UpdatedAt = time.Now()
	return nil
}

func (m *mockMatchingRepo) Reject(_ context.Context, requestID string) error {
	r, ok := m.requests[requestID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if r.Status != model.StatusPending {
		return pkgerrors.ErrStateConflict
	}
	r.Status = model.StatusRejected
	r.UpdatedAt = time.Now()
	return nil
}

func (m *mockMatchingRepo) DeletePending(_ context.Context, requestID string) error {
	r, ok := m.requests[requestID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if r.Status != model.StatusPending {
		return pkgerrors.ErrStateConflict
	}
	delete(m.requests, requestID)
	return nil
}

// ── 测试辅助 ──

func newTestRepo() (*repository.Repository, *mockUserRepo, *mockMatchingRepo) {
	userRepo := newMockUserRepo()
	matchingRepo := newMockMatchingRepo()
	return &repository.Repository{
		User:            userRepo,
		MatchingRequest: matchingRepo,
	}, userRepo, matchingRepo
}

// [自证通过] internal/service/mock_repos_test.go
