package interfaces

import "errors"

// ErrNotFound 记录不存在，实现层使用 %w 包装，调用方用 errors.Is 判断
var ErrNotFound = errors.New("record not found")

// ErrCommitFailed 事务提交失败
var ErrCommitFailed = errors.New("transaction commit failed")
