package model

import (
	"context"
	"time"
)

// BaseModel 通用审计字段（所有业务模型嵌入）
// 审计执行者记录操作者邮箱
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string   `gorm:"type:varchar(255)"                  json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:varchar(255)"                  json:"updated_by,omitempty"`
}

// StampCreated 按上下文中的操作者填充创建与更新执行者
// 上下文未携带操作者时（如匿名路径）保持为空
func (b *BaseModel) StampCreated(ctx context.Context) {
	if actor, ok := ActorFromContext(ctx); ok {
		b.CreatedBy = &actor
		b.UpdatedBy = &actor
	}
}

// StampUpdated 按上下文中的操作者填充更新执行者
func (b *BaseModel) StampUpdated(ctx context.Context) {
	if actor, ok := ActorFromContext(ctx); ok {
		b.UpdatedBy = &actor
	}
}
