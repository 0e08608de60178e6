package model

import "time"

// Role 角色表 — 对应 roles
// 首次使用时惰性创建；name 唯一约束防止并发创建产生重复行
type Role struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"              json:"id"`
	Name      string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"    json:"created_at"`
}

// TableName 指定表名
func (Role) TableName() string { return "roles" }

// 预定义角色名
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)
