package repository

import (
	"context"

	"gorm.io/gorm"

	"userdir/backend/internal/model"
	"userdir/backend/internal/query"
)

// DepartmentFields 部门实体对外暴露的可查询字段
var DepartmentFields = query.FieldMap{
	"id":       "id",
	"deptCode": "dept_code",
	"deptName": "dept_name",
}

var defaultDepartmentOrder = query.OrderAsc("id")

// DepartmentRepository 部门数据访问接口
type DepartmentRepository interface {
	Create(ctx context.Context, dept *model.Department) error
	GetByID(ctx context.Context, id int64) (*model.Department, error)
	GetByName(ctx context.Context, deptName string) (*model.Department, error)
	Update(ctx context.Context, dept *model.Department) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]model.Department, error)

	FindByPredicate(ctx context.Context, pred query.Predicate, order *query.OrderSpec) ([]model.Department, error)
	Count(ctx context.Context, pred query.Predicate) (int64, error)
	ListPaginated(ctx context.Context, pred query.Predicate, order *query.OrderSpec, page query.PageSpec) ([]model.Department, int64, error)

	UpdateWhere(ctx context.Context, pred query.Predicate, assignments map[string]string) (int64, error)
	DeleteWhere(ctx context.Context, pred query.Predicate) (int64, error)
}

// departmentRepo DepartmentRepository 的 GORM 实现
type departmentRepo struct {
	db *gorm.DB
}

// NewDepartmentRepo 创建 DepartmentRepository 实例
func NewDepartmentRepo(db *gorm.DB) DepartmentRepository {
	return &departmentRepo{db: db}
}

func (r *departmentRepo) Create(ctx context.Context, dept *model.Department) error {
	return r.db.WithContext(ctx).Create(dept).Error
}

func (r *departmentRepo) GetByID(ctx context.Context, id int64) (*model.Department, error) {
	var dept model.Department
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dept).Error
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepo) GetByName(ctx context.Context, deptName string) (*model.Department, error) {
	var dept model.Department
	err := r.db.WithContext(ctx).Where("dept_name = ?", deptName).First(&dept).Error
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepo) Update(ctx context.Context, dept *model.Department) error {
	return r.db.WithContext(ctx).Save(dept).Error
}

func (r *departmentRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Department{}, id).Error
}

func (r *departmentRepo) List(ctx context.Context) ([]model.Department, error) {
	var depts []model.Department
	err := r.db.WithContext(ctx).Order("id ASC").Find(&depts).Error
	return depts, err
}

func (r *departmentRepo) FindByPredicate(ctx context.Context, pred query.Predicate, order *query.OrderSpec) ([]model.Department, error) {
	db, err := applyPredicate(r.db.WithContext(ctx).Model(&model.Department{}), pred, DepartmentFields)
	if err != nil {
		return nil, err
	}
	db, err = applyOrder(db, order, defaultDepartmentOrder, DepartmentFields)
	if err != nil {
		return nil, err
	}

	var depts []model.Department
	if err := db.Find(&depts).Error; err != nil {
		return nil, err
	}
	return depts, nil
}

func (r *departmentRepo) Count(ctx context.Context, pred query.Predicate) (int64, error) {
	db, err := applyPredicate(r.db.WithContext(ctx).Model(&model.Department{}), pred, DepartmentFields)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := db.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *departmentRepo) ListPaginated(ctx context.Context, pred query.Predicate, order *query.OrderSpec, page query.PageSpec) ([]model.Department, int64, error) {
	if err := page.Validate(); err != nil {
		return nil, 0, err
	}

	db, err := applyPredicate(r.db.WithContext(ctx).Model(&model.Department{}), pred, DepartmentFields)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db, err = applyOrder(db, order, defaultDepartmentOrder, DepartmentFields)
	if err != nil {
		return nil, 0, err
	}

	var depts []model.Department
	if err := db.Offset(page.Offset()).Limit(page.Size).Find(&depts).Error; err != nil {
		return nil, 0, err
	}
	return depts, total, nil
}

func (r *departmentRepo) UpdateWhere(ctx context.Context, pred query.Predicate, assignments map[string]string) (int64, error) {
	cond, args, err := pred.Compile(DepartmentFields)
	if err != nil {
		return 0, err
	}

	values, err := resolveAssignments(assignments, DepartmentFields)
	if err != nil {
		return 0, err
	}

	db := r.db.WithContext(ctx).Model(&model.Department{})
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

func (r *departmentRepo) DeleteWhere(ctx context.Context, pred query.Predicate) (int64, error) {
	cond, args, err := pred.Compile(DepartmentFields)
	if err != nil {
		return 0, err
	}

	db := r.db.WithContext(ctx)
	if cond != "" {
		db = db.Where(cond, args...)
	} else {
		db = db.Where("1 = 1")
	}

	res := db.Delete(&model.Department{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
