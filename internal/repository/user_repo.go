package repository

import (
	"context"

	"gorm.io/gorm"

	"userdir/backend/internal/dto"
	"userdir/backend/internal/model"
	"userdir/backend/internal/query"
	apperrors "userdir/backend/pkg/errors"
)

// UserFields 用户实体对外暴露的可查询字段
var UserFields = query.FieldMap{
	"id":       "id",
	"userName": "user_name",
	"email":    "email",
	"address":  "address",
	"contact":  "contact",
}

// defaultUserOrder 分页等需要稳定顺序的读取的缺省排序
var defaultUserOrder = query.OrderAsc("id")

// UserRepository 用户数据访问接口
// 谓词相关方法把 query 包的声明式条件编译为参数化 SQL 执行
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]model.User, error)

	FindByPredicate(ctx context.Context, pred query.Predicate, order *query.OrderSpec) ([]model.User, error)
	Count(ctx context.Context, pred query.Predicate) (int64, error)
	ListPaginated(ctx context.Context, pred query.Predicate, order *query.OrderSpec, page query.PageSpec) ([]model.User, int64, error)

	ListWithDepartment(ctx context.Context) ([]model.User, error)
	ListByDepartmentName(ctx context.Context, deptName string) ([]model.User, error)
	ListSortedByDepartmentName(ctx context.Context) ([]model.User, error)

	UpdateWhere(ctx context.Context, pred query.Predicate, assignments map[string]string) (int64, error)
	DeleteWhere(ctx context.Context, pred query.Predicate) (int64, error)

	ListSummaries(ctx context.Context, pred query.Predicate) ([]dto.UserSummary, error)
	ListUserDept(ctx context.Context) ([]dto.UserDept, error)
}

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Department").
		Preload("Roles").
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Department").
		Preload("Roles").
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.User{}, id).Error
}

func (r *userRepo) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Preload("Department").
		Order("id ASC").
		Find(&users).Error
	return users, err
}

// applyPredicate 编译谓词并挂到查询上；恒真谓词不产生 WHERE
func applyPredicate(db *gorm.DB, pred query.Predicate, fields query.FieldMap) (*gorm.DB, error) {
	cond, args, err := pred.Compile(fields)
	if err != nil {
		return nil, err
	}
	if cond != "" {
		db = db.Where(cond, args...)
	}
	return db, nil
}

// resolveAssignments 把以字段名为键的赋值表翻译为列名赋值表
// 赋值字段同样经过字段表校验，拒绝未知字段
func resolveAssignments(assignments map[string]string, fields query.FieldMap) (map[string]interface{}, error) {
	values := make(map[string]interface{}, len(assignments))
	for field, value := range assignments {
		col, ok := fields[field]
		if !ok {
			return nil, apperrors.NewValidation(field, "未知的赋值字段")
		}
		values[col] = value
	}
	return values, nil
}

// applyOrder 编译排序；order 为 nil 时使用缺省排序保证结果确定性
func applyOrder(db *gorm.DB, order *query.OrderSpec, fallback query.OrderSpec, fields query.FieldMap) (*gorm.DB, error) {
	spec := fallback
	if order != nil {
		spec = *order
	}
	clause, err := spec.Compile(fields)
	if err != nil {
		return nil, err
	}
	return db.Order(clause), nil
}

func (r *userRepo) FindByPredicate(ctx context.Context, pred query.Predicate, order *query.OrderSpec) ([]model.User, error) {
	db, err := applyPredicate(r.db.WithContext(ctx).Model(&model.User{}), pred, UserFields)
	if err != nil {
		return nil, err
	}
	db, err = applyOrder(db, order, defaultUserOrder, UserFields)
	if err != nil {
		return nil, err
	}

	var users []model.User
	if err := db.Preload("Department").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) Count(ctx context.Context, pred query.Predicate) (int64, error) {
	db, err := applyPredicate(r.db.WithContext(ctx).Model(&model.User{}), pred, UserFields)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := db.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *userRepo) ListPaginated(ctx context.Context, pred query.Predicate, order *query.OrderSpec, page query.PageSpec) ([]model.User, int64, error) {
	if err := page.Validate(); err != nil {
		return nil, 0, err
	}

	db, err := applyPredicate(r.db.WithContext(ctx).Model(&model.User{}), pred, UserFields)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db, err = applyOrder(db, order, defaultUserOrder, UserFields)
	if err != nil {
		return nil, 0, err
	}

	var users []model.User
	if err := db.Preload("Department").
		Offset(page.Offset()).Limit(page.Size).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepo) ListWithDepartment(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		InnerJoins("Department").
		Order("users.id ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return distinctByID(users), nil
}

// distinctByID 按主键去重（连接可能放大行数）
func distinctByID(users []model.User) []model.User {
	seen := make(map[int64]bool, len(users))
	out := users[:0]
	for _, u := range users {
		if seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		out = append(out, u)
	}
	return out
}

func (r *userRepo) ListByDepartmentName(ctx context.Context, deptName string) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN departments ON departments.id = users.department_id").
		Where("departments.dept_name = ?", deptName).
		Preload("Department").
		Order("users.id ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepo) ListSortedByDepartmentName(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN departments ON departments.id = users.department_id").
		Preload("Department").
		Order("departments.dept_name DESC").
		Find(&users).Error
	return users, err
}

func (r *userRepo) UpdateWhere(ctx context.Context, pred query.Predicate, assignments map[string]string) (int64, error) {
	cond, args, err := pred.Compile(UserFields)
	if err != nil {
		return 0, err
	}

	values, err := resolveAssignments(assignments, UserFields)
	if err != nil {
		return 0, err
	}

	db := r.db.WithContext(ctx).Model(&model.User{})
	if cond != "" {
		db = db.Where(cond, args...)
	} else {
		db = db.Where("1 = 1")
	}

	res := db.Updates(values)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *userRepo) DeleteWhere(ctx context.Context, pred query.Predicate) (int64, error) {
	cond, args, err := pred.Compile(UserFields)
	if err != nil {
		return 0, err
	}

	db := r.db.WithContext(ctx)
	if cond != "" {
		db = db.Where(cond, args...)
	} else {
		db = db.Where("1 = 1")
	}

	res := db.Delete(&model.User{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *userRepo) ListSummaries(ctx context.Context, pred query.Predicate) ([]dto.UserSummary, error) {
	db, err := applyPredicate(r.db.WithContext(ctx).Model(&model.User{}), pred, UserFields)
	if err != nil {
		return nil, err
	}

	var summaries []dto.UserSummary
	if err := db.Select("user_name", "email", "contact").
		Order("id ASC").
		Scan(&summaries).Error; err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *userRepo) ListUserDept(ctx context.Context) ([]dto.UserDept, error) {
	var rows []dto.UserDept
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Select("users.user_name", "users.email", "departments.dept_name").
		Joins("JOIN departments ON departments.id = users.department_id").
		Order("users.id ASC").
		Scan(&rows).Error
	return rows, err
}
