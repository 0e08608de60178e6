package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db         *gorm.DB
	User       UserRepository
	Department DepartmentRepository
	Role       RoleRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:         db,
		User:       NewUserRepo(db),
		Department: NewDepartmentRepo(db),
		Role:       NewRoleRepo(db),
	}
}

// Transaction 在单个数据库事务中执行 fn
// fn 收到的聚合绑定在事务连接上；fn 返回错误时整体回滚，
// 注册、批量更新/删除等修改操作都应经由此入口保证原子性
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		// 内存实现不携带数据库连接，直接执行
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
