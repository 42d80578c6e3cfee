package mongostore

import (
	"context"
	"errors"
	"sort"

	"user-directory/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// wrapError 将 MongoDB 错误转换为领域错误
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return storage.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return storage.ErrDuplicate
	}
	return err
}

// findOne 查找单个文档并解码到 result
// 文档不存在时返回 storage.ErrNotFound
func findOne[T any](ctx context.Context, col *mongo.Collection, filter bson.M, opts ...options.Lister[options.FindOneOptions]) (*T, error) {
	var result T
	if err := col.FindOne(ctx, filter, opts...).Decode(&result); err != nil {
		return nil, wrapError(err)
	}
	return &result, nil
}

// findMany 查找多个文档
func findMany[T any](ctx context.Context, col *mongo.Collection, filter bson.M, opts ...options.Lister[options.FindOptions]) ([]*T, error) {
	cursor, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, wrapError(err)
	}
	defer cursor.Close(ctx)

	var results []*T
	for cursor.Next(ctx) {
		var item T
		if err := cursor.Decode(&item); err != nil {
			return nil, err
		}
		results = append(results, &item)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	if results == nil {
		results = []*T{}
	}
	return results, nil
}

// buildFilter 将 storage.UserFilter 转换为 bson 查询
//
// Fields 中值为 nil 的键在查询前被丢弃；Search 非空时追加 $text 条件。
func buildFilter(f storage.UserFilter) bson.M {
	query := bson.M{}
	for k, v := range f.Fields {
		if v == nil {
			continue
		}
		query[k] = v
	}
	if f.Search != "" {
		query["$text"] = bson.M{"$search": f.Search}
	}
	return query
}

// buildSort 将字段->方向映射转换为确定性排序
//
// map 遍历顺序不稳定，按字段名排序保证同一输入生成相同的排序键序列。
// 空映射回退到 created_at 降序。
func buildSort(fields map[string]int) bson.D {
	if len(fields) == 0 {
		return bson.D{{Key: "created_at", Value: -1}}
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	d := make(bson.D, 0, len(keys))
	for _, k := range keys {
		dir := fields[k]
		if dir >= 0 {
			dir = 1
		} else {
			dir = -1
		}
		d = append(d, bson.E{Key: k, Value: dir})
	}
	return d
}
