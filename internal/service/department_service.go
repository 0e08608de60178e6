package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"userdir/backend/internal/dto"
	"userdir/backend/internal/model"
	"userdir/backend/internal/query"
	"userdir/backend/internal/repository"
	apperrors "userdir/backend/pkg/errors"
)

// DepartmentService 部门的增删改查与批量操作
type DepartmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDepartmentService 创建部门服务
func NewDepartmentService(repo *repository.Repository, logger *zap.Logger) *DepartmentService {
	return &DepartmentService{repo: repo, logger: logger}
}

// Save 创建部门，编码重复返回冲突错误
func (s *DepartmentService) Save(ctx context.Context, req *dto.CreateDepartmentRequest) (*dto.DepartmentResponse, error) {
	dept := &model.Department{
		DeptCode: req.DeptCode,
		DeptName: req.DeptName,
	}
	dept.StampCreated(ctx)
	if err := s.repo.Department.Create(ctx, dept); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("部门编码 %s: %w", req.DeptCode, apperrors.ErrDuplicate)
		}
		return nil, apperrors.NewStorage("创建部门", err)
	}
	resp := toDepartmentResponse(dept)
	return &resp, nil
}

// GetByID 按 ID 查询部门
func (s *DepartmentService) GetByID(ctx context.Context, id int64) (*dto.DepartmentResponse, error) {
	dept, err := s.repo.Department.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("部门 %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, apperrors.NewStorage("查询部门", err)
	}
	resp := toDepartmentResponse(dept)
	return &resp, nil
}

// GetByName 按名称查询部门
func (s *DepartmentService) GetByName(ctx context.Context, deptName string) (*dto.DepartmentResponse, error) {
	if strings.TrimSpace(deptName) == "" {
		return nil, apperrors.NewValidation("dept_name", "部门名称不能为空")
	}
	dept, err := s.repo.Department.GetByName(ctx, deptName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("部门 %s: %w", deptName, apperrors.ErrNotFound)
		}
		return nil, apperrors.NewStorage("查询部门", err)
	}
	resp := toDepartmentResponse(dept)
	return &resp, nil
}

// Update 按 ID 整体更新部门
func (s *DepartmentService) Update(ctx context.Context, id int64, req *dto.UpdateDepartmentRequest) (*dto.DepartmentResponse, error) {
	dept, err := s.repo.Department.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("部门 %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, apperrors.NewStorage("查询部门", err)
	}

	dept.DeptCode = req.DeptCode
	dept.DeptName = req.DeptName
	dept.StampUpdated(ctx)

	if err := s.repo.Department.Update(ctx, dept); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("部门编码 %s: %w", req.DeptCode, apperrors.ErrDuplicate)
		}
		return nil, apperrors.NewStorage("更新部门", err)
	}

	resp := toDepartmentResponse(dept)
	return &resp, nil
}

// Delete 按 ID 删除部门，所属用户的部门外键由数据库置空
func (s *DepartmentService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.Department.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("部门 %d: %w", id, apperrors.ErrNotFound)
		}
		return apperrors.NewStorage("查询部门", err)
	}
	if err := s.repo.Department.Delete(ctx, id); err != nil {
		return apperrors.NewStorage("删除部门", err)
	}
	return nil
}

// List 查询全部部门
func (s *DepartmentService) List(ctx context.Context) ([]dto.DepartmentResponse, error) {
	depts, err := s.repo.Department.List(ctx)
	if err != nil {
		return nil, apperrors.NewStorage("查询部门列表", err)
	}
	return toDepartmentResponses(depts), nil
}

// CountByName 统计指定名称的部门数
func (s *DepartmentService) CountByName(ctx context.Context, deptName string) (int64, error) {
	if strings.TrimSpace(deptName) == "" {
		return 0, apperrors.NewValidation("dept_name", "部门名称不能为空")
	}
	count, err := s.repo.Department.Count(ctx, query.Equals("deptName", deptName))
	if err != nil {
		return 0, wrapStorage("统计部门", err)
	}
	return count, nil
}

// FilterByName 按名称关键词忽略大小写过滤部门
func (s *DepartmentService) FilterByName(ctx context.Context, keyword string) ([]dto.DepartmentResponse, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, apperrors.NewValidation("keyword", "过滤关键词不能为空")
	}
	depts, err := s.repo.Department.FindByPredicate(ctx, query.IContains("deptName", keyword), nil)
	if err != nil {
		return nil, wrapStorage("过滤部门", err)
	}
	return toDepartmentResponses(depts), nil
}

// ListSorted 按外部传入的字段与方向排序查询全部部门
func (s *DepartmentService) ListSorted(ctx context.Context, req *dto.SortRequest) ([]dto.DepartmentResponse, error) {
	order, err := query.ParseOrder(req.SortBy, req.Direction)
	if err != nil {
		return nil, err
	}
	depts, err := s.repo.Department.FindByPredicate(ctx, query.Always(), &order)
	if err != nil {
		return nil, wrapStorage("排序查询部门", err)
	}
	return toDepartmentResponses(depts), nil
}

// ListPaginated 分页查询部门
func (s *DepartmentService) ListPaginated(ctx context.Context, page *dto.PaginationRequest) ([]dto.DepartmentResponse, int64, error) {
	spec := query.PageSpec{Page: page.GetPage(), Size: page.GetPageSize()}
	depts, total, err := s.repo.Department.ListPaginated(ctx, query.Always(), nil, spec)
	if err != nil {
		return nil, 0, wrapStorage("分页查询部门", err)
	}
	return toDepartmentResponses(depts), total, nil
}

// RenameByID 按 ID 批量改名，返回受影响行数（ID 不存在时为 0）
func (s *DepartmentService) RenameByID(ctx context.Context, id int64, newName string) (int64, error) {
	if strings.TrimSpace(newName) == "" {
		return 0, apperrors.NewValidation("new_name", "新名称不能为空")
	}

	var affected int64
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		n, err := tx.Department.UpdateWhere(ctx,
			query.EqualsInt64("id", id),
			map[string]string{"deptName": newName})
		if err != nil {
			return err
		}
		affected = n
		return nil
	})
	if err != nil {
		return 0, wrapStorage("批量改名部门", err)
	}
	return affected, nil
}

// DeleteByName 按名称批量删除部门，返回受影响行数
func (s *DepartmentService) DeleteByName(ctx context.Context, deptName string) (int64, error) {
	if strings.TrimSpace(deptName) == "" {
		return 0, apperrors.NewValidation("dept_name", "部门名称不能为空")
	}

	var affected int64
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		n, err := tx.Department.DeleteWhere(ctx, query.Equals("deptName", deptName))
		if err != nil {
			return err
		}
		affected = n
		return nil
	})
	if err != nil {
		return 0, wrapStorage("批量删除部门", err)
	}
	s.logger.Info("批量删除部门",
		zap.String("dept_name", deptName),
		zap.Int64("affected", affected))
	return affected, nil
}

func toDepartmentResponse(dept *model.Department) dto.DepartmentResponse {
	return dto.DepartmentResponse{
		ID:       dept.ID,
		DeptCode: dept.DeptCode,
		DeptName: dept.DeptName,
	}
}

func toDepartmentResponses(depts []model.Department) []dto.DepartmentResponse {
	resps := make([]dto.DepartmentResponse, 0, len(depts))
	for i := range depts {
		resps = append(resps, toDepartmentResponse(&depts[i]))
	}
	return resps
}
