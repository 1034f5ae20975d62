package service

import "errors"

// 业务错误哨兵，API 层据此映射 HTTP 状态码。
var (
	// ErrNotFound 目标资源不存在
	ErrNotFound = errors.New("资源不存在")
	// ErrForbidden 无权操作目标资源
	ErrForbidden = errors.New("无权限执行该操作")
	// ErrConflict 与现有数据冲突（重复点赞、重复字段等）
	ErrConflict = errors.New("数据冲突")
	// ErrInvalidState 当前状态不允许该操作
	ErrInvalidState = errors.New("当前状态不允许该操作")
	// ErrBadRequest 请求参数非法
	ErrBadRequest = errors.New("请求参数非法")
)
