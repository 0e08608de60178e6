package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"userdir/backend/internal/model"
)

// RoleRepository 角色数据访问接口
type RoleRepository interface {
	GetOrCreate(ctx context.Context, name string) (*model.Role, error)
	GetByName(ctx context.Context, name string) (*model.Role, error)
}

type roleRepo struct {
	db *gorm.DB
}

// NewRoleRepo 创建 RoleRepository 实例
func NewRoleRepo(db *gorm.DB) RoleRepository {
	return &roleRepo{db: db}
}

// GetOrCreate 取出同名角色，不存在则创建
// 通过 ON CONFLICT DO NOTHING + 回读处理并发注册同时建角色的竞态
func (r *roleRepo) GetOrCreate(ctx context.Context, name string) (*model.Role, error) {
	role := model.Role{Name: name}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(&role).Error
	if err != nil {
		return nil, err
	}
	if role.ID != 0 {
		return &role, nil
	}
	// 冲突未插入，回读已存在的角色
	return r.GetByName(ctx, name)
}

func (r *roleRepo) GetByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}
