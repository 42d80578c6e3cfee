// Package mongostore 实现基于 MongoDB 的 storage.UserStore
//
// 使用 mongo-go-driver v2，通过 bson tag 实现 model 结构体的序列化/反序列化。
// 所有 Collection 名称和索引在 ensureIndexes 中统一管理。
package mongostore

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection 名称常量
const (
	ColUsers = "users"
)

// Store 实现 storage.UserStore 接口的 MongoDB 驱动
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore 创建 MongoDB 存储实例
//
// uri: MongoDB 连接 URI，如 "mongodb://localhost:27017"
// dbName: 数据库名称，如 "user_directory"
func NewStore(uri, dbName string) (*Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect failed: %w", err)
	}

	// 验证连接
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongostore: ping failed: %w", err)
	}

	db := client.Database(dbName)
	s := &Store{client: client, db: db}

	// 创建索引
	if err := s.ensureIndexes(ctx); err != nil {
		log.Printf("WARNING: mongostore: ensure indexes failed: %v", err)
	}

	return s, nil
}

// Close 关闭 MongoDB 连接
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// col 获取指定 Collection
func (s *Store) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// ensureIndexes 创建所有必要的索引
//
// 唯一约束均为稀疏索引：字段缺失的文档不参与唯一性检查。
// $** 通配文本索引使所有字段默认可全文搜索，无需逐字段声明。
func (s *Store) ensureIndexes(ctx context.Context) error {
	type idx struct {
		col    string
		keys   bson.D
		unique bool
		sparse bool
	}

	indexes := []idx{
		// users 唯一别名字段
		{ColUsers, bson.D{{Key: "email", Value: 1}}, true, true},
		{ColUsers, bson.D{{Key: "phone_number", Value: 1}}, true, true},
		{ColUsers, bson.D{{Key: "username", Value: 1}}, true, true},
		{ColUsers, bson.D{{Key: "uid", Value: 1}}, true, true},

		// 分页默认排序
		{ColUsers, bson.D{{Key: "created_at", Value: -1}}, false, false},

		// 全文搜索（所有字段）
		{ColUsers, bson.D{{Key: "$**", Value: "text"}}, false, false},
	}

	for _, i := range indexes {
		model := mongo.IndexModel{Keys: i.keys}
		if i.unique || i.sparse {
			opts := options.Index()
			if i.unique {
				opts.SetUnique(true)
			}
			if i.sparse {
				opts.SetSparse(true)
			}
			model.Options = opts
		}
		if _, err := s.col(i.col).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("create index on %s: %w", i.col, err)
		}
	}

	return nil
}
