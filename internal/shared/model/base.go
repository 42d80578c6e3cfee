// Package model 定义核心数据模型
//
// base.go 包含所有持久化实体共享的基础字段定义：
//   - Document：实体公共字段（ID、时间戳、软删除、状态）
//
// 约定：
//   - created_at/updated_at 由存储层在写入时维护
//   - 软删除字段（deleted/deleted_at/deleted_by）仅由删除/恢复操作修改，
//     不变式：deleted == false 时 deleted_at 必为空，反之亦然
//   - 所有实体共享通用 status 字段（自由分类字符串）
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Document 所有持久化实体的公共字段，内嵌到各实体结构体中
type Document struct {
	ID        bson.ObjectID  `json:"id" bson:"_id,omitempty"`
	Status    string         `json:"status,omitempty" bson:"status,omitempty"`             // 分类状态（如 active/blocked）
	Deleted   bool           `json:"deleted" bson:"deleted"`                               // 软删除标记
	DeletedAt *time.Time     `json:"deleted_at,omitempty" bson:"deleted_at,omitempty"`     // 软删除时间
	DeletedBy *bson.ObjectID `json:"deleted_by,omitempty" bson:"deleted_by,omitempty"`     // 执行删除的用户（弱引用）
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" bson:"updated_at"`
}
