package mongostore

import (
	"context"
	"time"

	"user-directory/internal/shared/model"
	"user-directory/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// UserStore
// ============================================================================

// UpsertUserByEmail 以 email 为自然键的原子 upsert
//
// 并发同键调用由 MongoDB 的原子 findOneAndUpdate + email 唯一索引收敛到单条记录。
// email 为 nil 时匹配任意无 email 字段的记录（稀疏唯一语义：缺失不参与唯一性）。
func (s *Store) UpsertUserByEmail(ctx context.Context, email *string, patch *model.UserPatch) (*model.User, error) {
	filter := bson.M{"email": bson.M{"$exists": false}}
	if email != nil {
		filter = bson.M{"email": model.NormalizeEmail(*email)}
	}

	now := time.Now()
	set := bson.M{"updated_at": now}
	for k, v := range patch.Fields() {
		set[k] = v
	}

	// 插入时应用默认值；$set 已覆盖的字段不能重复出现在 $setOnInsert
	setOnInsert := bson.M{
		"created_at": now,
		"deleted":    false,
	}
	if patch.Status == nil {
		setOnInsert["status"] = string(model.UserStatusActive)
	}

	update := bson.M{"$set": set, "$setOnInsert": setOnInsert}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var user model.User
	if err := s.col(ColUsers).FindOneAndUpdate(ctx, filter, update, opts).Decode(&user); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByID 按原生 ID 直查
func (s *Store) GetUserByID(ctx context.Context, id bson.ObjectID) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), bson.M{"_id": id})
}

// FindUser 按条件查找单个用户
//
// 多条匹配时最近创建者优先（别名命中的平局规则）。
func (s *Store) FindUser(ctx context.Context, filter storage.UserFilter) (*model.User, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findOne[model.User](ctx, s.col(ColUsers), buildFilter(filter), opts)
}

// UpdateUserByID 按 ID 合并 patch 的非 nil 字段
//
// 唯一约束在写入时由索引重新校验，冲突返回 storage.ErrDuplicate。
func (s *Store) UpdateUserByID(ctx context.Context, id bson.ObjectID, patch *model.UserPatch) (*model.User, error) {
	set := bson.M{"updated_at": time.Now()}
	for k, v := range patch.Fields() {
		set[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user model.User
	err := s.col(ColUsers).FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// SetUserDeleted 软删除
//
// 对已删除记录重复调用会刷新 deleted_at（观察到的原始行为，非契约保证）。
func (s *Store) SetUserDeleted(ctx context.Context, id bson.ObjectID, deletedBy *bson.ObjectID) (*model.User, error) {
	now := time.Now()
	set := bson.M{
		"deleted":    true,
		"deleted_at": now,
		"updated_at": now,
	}
	if deletedBy != nil {
		set["deleted_by"] = *deletedBy
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user model.User
	err := s.col(ColUsers).FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// RestoreUser 恢复软删除，清空 deleted_at/deleted_by 保持字段对不变式
func (s *Store) RestoreUser(ctx context.Context, id bson.ObjectID) (*model.User, error) {
	update := bson.M{
		"$set":   bson.M{"deleted": false, "updated_at": time.Now()},
		"$unset": bson.M{"deleted_at": "", "deleted_by": ""},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user model.User
	err := s.col(ColUsers).FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&user)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// PageUsers 偏移分页扫描
//
// 不隐式过滤软删除记录，deleted=false 由调用方按需注入。
func (s *Store) PageUsers(ctx context.Context, filter storage.UserFilter, opts storage.PageOptions) (*storage.Page[model.User], error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 10
	}

	query := buildFilter(filter)

	total, err := s.col(ColUsers).CountDocuments(ctx, query)
	if err != nil {
		return nil, wrapError(err)
	}

	findOpts := options.Find().
		SetSort(buildSort(opts.Sort)).
		SetSkip(int64((opts.Page - 1) * opts.Limit)).
		SetLimit(int64(opts.Limit))

	items, err := findMany[model.User](ctx, s.col(ColUsers), query, findOpts)
	if err != nil {
		return nil, err
	}

	pages := int((total + int64(opts.Limit) - 1) / int64(opts.Limit))

	return &storage.Page[model.User]{
		Items: items,
		Total: total,
		Page:  opts.Page,
		Pages: pages,
		Limit: opts.Limit,
	}, nil
}

// Compile-time interface check
var _ storage.UserStore = (*Store)(nil)
