package model

import (
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// UserStatus 用户状态
type UserStatus string

const (
	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

// User 用户
//
// email/phone_number/username/uid 均为稀疏唯一字段：缺失时不参与唯一性约束。
// email 与 username 在持久化前统一小写并去除首尾空白。
type User struct {
	Document    `bson:",inline"`
	DisplayName string `json:"display_name,omitempty" bson:"display_name,omitempty"`
	Email       string `json:"email,omitempty" bson:"email,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty" bson:"phone_number,omitempty"`
	Username    string `json:"username,omitempty" bson:"username,omitempty"`
	UID         string `json:"uid,omitempty" bson:"uid,omitempty"` // 外部系统 ID（别名查找用）
}

// UserPatch 部分用户字段，nil 表示调用方未提供该字段
//
// 合并语义：只有非 nil 字段会被写入，绝不用空值覆盖已有数据。
type UserPatch struct {
	DisplayName *string `json:"display_name,omitempty"`
	Email       *string `json:"email,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Username    *string `json:"username,omitempty"`
	UID         *string `json:"uid,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// Normalize 对声明为规范化的字段应用小写/去空白规则
//
// 与调用方传入的大小写和空白无关，持久化前统一处理。
func (p *UserPatch) Normalize() {
	if p.DisplayName != nil {
		*p.DisplayName = strings.TrimSpace(*p.DisplayName)
	}
	if p.Email != nil {
		*p.Email = NormalizeEmail(*p.Email)
	}
	if p.PhoneNumber != nil {
		*p.PhoneNumber = strings.TrimSpace(*p.PhoneNumber)
	}
	if p.Username != nil {
		*p.Username = strings.ToLower(strings.TrimSpace(*p.Username))
	}
	if p.Status != nil {
		*p.Status = strings.TrimSpace(*p.Status)
	}
}

// Fields 返回非 nil 字段到 bson 字段名的映射
//
// nil 字段在合并前被丢弃，保证部分更新不会清空已有值。
func (p *UserPatch) Fields() map[string]any {
	fields := map[string]any{}
	if p.DisplayName != nil {
		fields["display_name"] = *p.DisplayName
	}
	if p.Email != nil {
		fields["email"] = *p.Email
	}
	if p.PhoneNumber != nil {
		fields["phone_number"] = *p.PhoneNumber
	}
	if p.Username != nil {
		fields["username"] = *p.Username
	}
	if p.UID != nil {
		fields["uid"] = *p.UID
	}
	if p.Status != nil {
		fields["status"] = *p.Status
	}
	return fields
}

// NormalizeEmail 小写并去除首尾空白
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsObjectIDHex 判断给定字符串是否为合法的 24 位十六进制原生 ID
//
// 用于 FindByID 的路径选择：合法原生 ID 走 _id 直查，否则走别名链查找。
func IsObjectIDHex(s string) bool {
	_, err := bson.ObjectIDFromHex(s)
	return err == nil
}
