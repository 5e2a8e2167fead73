package model

import "errors"

// 错误分类：handler 层据此映射HTTP状态码
var (
	// ErrValidation 输入不合法，直接拒绝，不重试
	ErrValidation = errors.New("validation failed")
	// ErrNotFound 请求或钱包不存在
	ErrNotFound = errors.New("record not found")
	// ErrLedgerUnavailable 账本连接/查询/提交失败，由下一轮扫描重试
	ErrLedgerUnavailable = errors.New("ledger unavailable")
	// ErrGuardConflict 条件写入未命中（其他调用方已完成状态转换），视为正常
	ErrGuardConflict = errors.New("state transition already applied")
)
