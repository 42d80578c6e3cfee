// Package storage 定义存储层领域错误
//
// 这些错误用于隔离业务层与底层存储引擎的错误类型，
// 驱动实现（mongostore）负责将底层错误转换为这些领域错误。
package storage

import "errors"

var (
	// ErrNotFound 实体不存在
	// 替代 mongo.ErrNoDocuments：存储引擎对"零结果"不报错，
	// 由存储层升级为显式错误
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate 唯一键冲突（email/phone_number/username/uid 重复）
	ErrDuplicate = errors.New("duplicate: entity already exists")
)
