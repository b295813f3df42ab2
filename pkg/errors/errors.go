package errors

import "errors"

// ErrStateConflict 并发状态冲突：记录已被其他操作抢先变更
// 条件更新（WHERE status='pending'）影响行数为 0 时由仓储层返回
var ErrStateConflict = errors.New("记录状态已被其他操作变更，请刷新后重试")

// ErrMentorMatched 导师已有进行中的匹配：
// 接受操作与"每位导师同时最多一条 accepted"约束冲突
var ErrMentorMatched = errors.New("导师已有进行中的匹配")
