// Package storage 提供存储层抽象
//
// interface.go 定义持久化存储接口和查询/分页类型。
// 业务层只依赖这里的接口，具体引擎由 mongostore 实现。
package storage

import (
	"context"

	"user-directory/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// UserFilter 用户查询条件
type UserFilter struct {
	// Fields 精确匹配的字段/值映射，值为 nil 的键在查询前被丢弃
	Fields map[string]any

	// Search 全文搜索词，非空时匹配所有字段上的文本索引
	Search string
}

// PageOptions 分页选项
type PageOptions struct {
	// Sort 字段名到方向的映射：1 升序，-1 降序
	Sort map[string]int

	// Page 页号，1 起始
	Page int

	// Limit 每页条数
	Limit int
}

// Page 分页结果容器
type Page[T any] struct {
	Items []*T  `json:"items"`
	Total int64 `json:"total"` // 匹配总数
	Page  int   `json:"page"`  // 当前页号（1 起始）
	Pages int   `json:"pages"` // 总页数
	Limit int   `json:"limit"` // 每页条数
}

// UserStore 用户存储接口
//
// 所有写操作由存储层维护 created_at/updated_at。
// 读操作对"零结果"返回 ErrNotFound，唯一键冲突返回 ErrDuplicate。
type UserStore interface {
	// UpsertUserByEmail 以 email 为自然键的原子 upsert：
	// 已存在则合并 patch 的非 nil 字段，否则插入并应用默认值。
	// 并发同键调用依赖存储引擎的原子 upsert 收敛到单条记录。
	UpsertUserByEmail(ctx context.Context, email *string, patch *model.UserPatch) (*model.User, error)

	// GetUserByID 按原生 ID 直查
	GetUserByID(ctx context.Context, id bson.ObjectID) (*model.User, error)

	// FindUser 按条件查找单个用户，多条匹配时最近创建者优先
	FindUser(ctx context.Context, filter UserFilter) (*model.User, error)

	// UpdateUserByID 按 ID 合并 patch 的非 nil 字段，返回更新后的记录
	UpdateUserByID(ctx context.Context, id bson.ObjectID, patch *model.UserPatch) (*model.User, error)

	// SetUserDeleted 软删除：置 deleted=true、deleted_at=now、deleted_by（可选）
	// 重复调用刷新 deleted_at
	SetUserDeleted(ctx context.Context, id bson.ObjectID, deletedBy *bson.ObjectID) (*model.User, error)

	// RestoreUser 恢复软删除：清空 deleted/deleted_at/deleted_by
	RestoreUser(ctx context.Context, id bson.ObjectID) (*model.User, error)

	// PageUsers 分页扫描。不隐式过滤软删除记录：
	// 调用方未在 filter 中注入 deleted=false 时，已删除与未删除记录都会返回。
	PageUsers(ctx context.Context, filter UserFilter, opts PageOptions) (*Page[model.User], error)
}
