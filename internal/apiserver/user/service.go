// Package user 用户领域 - 数据访问服务与 HTTP 处理
//
// 文件组织：
//   - service.go: 数据访问服务（身份解析、软删除等业务规则）
//   - handler.go: HTTP 处理函数
//   - util.go:    通用工具函数
package user

import (
	"context"
	"errors"
	"strings"

	"user-directory/internal/shared/model"
	"user-directory/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service 用户数据访问服务
//
// 唯一直接读写存储的组件；身份解析与软删除的业务规则都在这里。
// 存储客户端在构造时注入，生命周期由进程入口管理。
type Service struct {
	store storage.UserStore
}

// NewService 创建用户服务
func NewService(store storage.UserStore) *Service {
	return &Service{store: store}
}

// aliasFields FindByID 别名查找策略的尝试顺序
//
// 依次尝试，首个命中即返回；同一策略内多条匹配时最近创建者优先
// （平局规则由存储层的 created_at 降序保证）。
var aliasFields = []string{"uid", "username", "email", "phone_number"}

// Create 创建用户
//
// 以 email 为自然键执行 upsert：同 email 记录已存在时合并非 nil 字段，
// 否则插入新记录并应用默认值。对重复的同参调用幂等。
func (s *Service) Create(ctx context.Context, patch *model.UserPatch) (*model.User, error) {
	patch.Normalize()
	return s.store.UpsertUserByEmail(ctx, patch.Email, patch)
}

// Update 按 ID 更新用户
//
// nil 字段在合并前被丢弃；唯一性与规范化约束在写入时重新校验。
// ID 不存在时返回 storage.ErrNotFound。
func (s *Service) Update(ctx context.Context, id bson.ObjectID, patch *model.UserPatch) (*model.User, error) {
	patch.Normalize()
	return s.store.UpdateUserByID(ctx, id, patch)
}

// FindByID 按原生 ID 或别名查找用户
//
// 24 位十六进制字符串走 _id 直查；其余输入依次尝试别名策略：
// uid、username（小写化）、email（小写化）、phone_number。
// 所有路径都未命中时返回 storage.ErrNotFound。
func (s *Service) FindByID(ctx context.Context, idOrAlias string) (*model.User, error) {
	if model.IsObjectIDHex(idOrAlias) {
		oid, err := bson.ObjectIDFromHex(idOrAlias)
		if err != nil {
			return nil, err
		}
		return s.store.GetUserByID(ctx, oid)
	}

	for _, field := range aliasFields {
		value := idOrAlias
		switch field {
		case "username", "email":
			value = strings.ToLower(strings.TrimSpace(idOrAlias))
		}

		u, err := s.store.FindUser(ctx, storage.UserFilter{Fields: map[string]any{field: value}})
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	}

	return nil, storage.ErrNotFound
}

// FindOne 按任意条件查找单个用户
//
// 值为 nil 的键在查询前被丢弃；无匹配时返回 storage.ErrNotFound。
func (s *Service) FindOne(ctx context.Context, fields map[string]any) (*model.User, error) {
	return s.store.FindUser(ctx, storage.UserFilter{Fields: fields})
}

// Delete 软删除用户
//
// 先按 FindByID 语义解析目标，再置软删除标记。
// 从不物理删除；已删除记录仍可通过显式 withDeleted 查询到。
// 对已删除记录重复调用不报错，但会刷新 deleted_at。
func (s *Service) Delete(ctx context.Context, idOrAlias string, deletedBy *bson.ObjectID) (*model.User, error) {
	u, err := s.FindByID(ctx, idOrAlias)
	if err != nil {
		return nil, err
	}
	return s.store.SetUserDeleted(ctx, u.ID, deletedBy)
}

// Restore 恢复软删除的用户
func (s *Service) Restore(ctx context.Context, idOrAlias string) (*model.User, error) {
	u, err := s.FindByID(ctx, idOrAlias)
	if err != nil {
		return nil, err
	}
	return s.store.RestoreUser(ctx, u.ID)
}

// Page 分页扫描
//
// 服务层不隐式注入 deleted=false：排除软删除记录是调用方（HTTP 层）的职责。
// filter.Search 非空时执行全文搜索。
func (s *Service) Page(ctx context.Context, filter storage.UserFilter, opts storage.PageOptions) (*storage.Page[model.User], error) {
	return s.store.PageUsers(ctx, filter, opts)
}
