package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"userdir/backend/config"
	"userdir/backend/internal/dto"
	"userdir/backend/internal/model"
	"userdir/backend/internal/query"
	"userdir/backend/internal/repository"
	apperrors "userdir/backend/pkg/errors"
)

// UserService 用户档案的增删改查、组合过滤与批量操作
type UserService struct {
	repo   *repository.Repository
	cfg    *config.Config
	logger *zap.Logger
}

// NewUserService 创建用户服务
func NewUserService(repo *repository.Repository, cfg *config.Config, logger *zap.Logger) *UserService {
	return &UserService{repo: repo, cfg: cfg, logger: logger}
}

// ── 基础 CRUD ──

// Save 管理端直接建档
func (s *UserService) Save(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.Auth.BcryptCost)
	if err != nil {
		return nil, apperrors.NewStorage("密码散列", err)
	}

	user := &model.User{
		UserName:     req.UserName,
		Email:        req.Email,
		PasswordHash: string(hash),
		Address:      req.Address,
		Contact:      req.Contact,
	}

	if req.DepartmentID != nil {
		if _, err := s.repo.Department.GetByID(ctx, *req.DepartmentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("部门 %d: %w", *req.DepartmentID, apperrors.ErrNotFound)
			}
			return nil, apperrors.NewStorage("查询部门", err)
		}
		user.DepartmentID = req.DepartmentID
	}

	user.StampCreated(ctx)
	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("邮箱 %s: %w", req.Email, apperrors.ErrDuplicate)
		}
		return nil, apperrors.NewStorage("创建用户", err)
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// GetByID 按 ID 查询用户
func (s *UserService) GetByID(ctx context.Context, id int64) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("用户 %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, apperrors.NewStorage("查询用户", err)
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// Update 按 ID 整体更新可变字段
func (s *UserService) Update(ctx context.Context, id int64, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("用户 %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, apperrors.NewStorage("查询用户", err)
	}

	user.UserName = req.UserName
	user.Email = req.Email
	user.Address = req.Address
	user.Contact = req.Contact
	user.DepartmentID = req.DepartmentID
	user.StampUpdated(ctx)

	if err := s.repo.User.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("邮箱 %s: %w", req.Email, apperrors.ErrDuplicate)
		}
		return nil, apperrors.NewStorage("更新用户", err)
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// Delete 按 ID 删除用户
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.User.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("用户 %d: %w", id, apperrors.ErrNotFound)
		}
		return apperrors.NewStorage("查询用户", err)
	}
	if err := s.repo.User.Delete(ctx, id); err != nil {
		return apperrors.NewStorage("删除用户", err)
	}
	return nil
}

// AssignDepartment 为用户分配部门
func (s *UserService) AssignDepartment(ctx context.Context, req *dto.AssignDepartmentRequest) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("用户 %d: %w", req.UserID, apperrors.ErrNotFound)
		}
		return nil, apperrors.NewStorage("查询用户", err)
	}

	dept, err := s.repo.Department.GetByID(ctx, req.DepartmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("部门 %d: %w", req.DepartmentID, apperrors.ErrNotFound)
		}
		return nil, apperrors.NewStorage("查询部门", err)
	}

	user.DepartmentID = &dept.ID
	user.Department = dept
	user.StampUpdated(ctx)
	if err := s.repo.User.Update(ctx, user); err != nil {
		return nil, apperrors.NewStorage("更新用户", err)
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// List 查询全部用户
func (s *UserService) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.repo.User.List(ctx)
	if err != nil {
		return nil, apperrors.NewStorage("查询用户列表", err)
	}
	return toUserResponses(users), nil
}

// ── 谓词查询 ──

// ListByCity 按城市（地址等值）查询
func (s *UserService) ListByCity(ctx context.Context, city string) ([]dto.UserResponse, error) {
	if strings.TrimSpace(city) == "" {
		return nil, apperrors.NewValidation("city", "城市不能为空")
	}
	users, err := s.repo.User.FindByPredicate(ctx, query.Equals("address", city), nil)
	if err != nil {
		return nil, wrapStorage("按城市查询用户", err)
	}
	return toUserResponses(users), nil
}

// ListByCitySorted 按城市查询并按用户名倒序
func (s *UserService) ListByCitySorted(ctx context.Context, city string) ([]dto.UserResponse, error) {
	if strings.TrimSpace(city) == "" {
		return nil, apperrors.NewValidation("city", "城市不能为空")
	}
	order := query.OrderDesc("userName")
	users, err := s.repo.User.FindByPredicate(ctx, query.Equals("address", city), &order)
	if err != nil {
		return nil, wrapStorage("按城市查询用户", err)
	}
	return toUserResponses(users), nil
}

// CountByEmailDomain 统计邮箱以指定后缀结尾的用户数
func (s *UserService) CountByEmailDomain(ctx context.Context, domain string) (int64, error) {
	if strings.TrimSpace(domain) == "" {
		return 0, apperrors.NewValidation("domain", "邮箱后缀不能为空")
	}
	count, err := s.repo.User.Count(ctx, query.Suffix("email", domain))
	if err != nil {
		return 0, wrapStorage("统计用户", err)
	}
	return count, nil
}

// Filter 城市 + 联系方式前缀组合过滤，两个条件都可选
// 条件从恒真谓词开始折叠，零条件时返回全量
func (s *UserService) Filter(ctx context.Context, req *dto.FilterUsersRequest) ([]dto.UserResponse, error) {
	pred := query.Always()
	if req.City != "" {
		pred = query.And(pred, query.Equals("address", req.City))
	}
	if req.Contact != "" {
		pred = query.And(pred, query.Prefix("contact", req.Contact))
	}

	users, err := s.repo.User.FindByPredicate(ctx, pred, nil)
	if err != nil {
		return nil, wrapStorage("过滤用户", err)
	}
	return toUserResponses(users), nil
}

// ListSorted 按外部传入的字段与方向排序查询全量用户
func (s *UserService) ListSorted(ctx context.Context, req *dto.SortRequest) ([]dto.UserResponse, error) {
	order, err := query.ParseOrder(req.SortBy, req.Direction)
	if err != nil {
		return nil, err
	}
	users, err := s.repo.User.FindByPredicate(ctx, query.Always(), &order)
	if err != nil {
		return nil, wrapStorage("排序查询用户", err)
	}
	return toUserResponses(users), nil
}

// ListPaginated 分页查询用户，返回当前页数据与总数
func (s *UserService) ListPaginated(ctx context.Context, page *dto.PaginationRequest) ([]dto.UserResponse, int64, error) {
	spec := query.PageSpec{Page: page.GetPage(), Size: page.GetPageSize()}
	users, total, err := s.repo.User.ListPaginated(ctx, query.Always(), nil, spec)
	if err != nil {
		return nil, 0, wrapStorage("分页查询用户", err)
	}
	return toUserResponses(users), total, nil
}

// ── 关联查询 ──

// ListWithDepartment 查询所有已分配部门的用户（内连接语义）
func (s *UserService) ListWithDepartment(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.repo.User.ListWithDepartment(ctx)
	if err != nil {
		return nil, apperrors.NewStorage("查询用户部门", err)
	}
	return toUserResponses(users), nil
}

// ListByDepartmentName 按部门名称查询用户
func (s *UserService) ListByDepartmentName(ctx context.Context, deptName string) ([]dto.UserResponse, error) {
	if strings.TrimSpace(deptName) == "" {
		return nil, apperrors.NewValidation("dept_name", "部门名称不能为空")
	}
	users, err := s.repo.User.ListByDepartmentName(ctx, deptName)
	if err != nil {
		return nil, apperrors.NewStorage("按部门查询用户", err)
	}
	return toUserResponses(users), nil
}

// ListSortedByDepartmentName 按部门名称倒序查询已分配部门的用户
func (s *UserService) ListSortedByDepartmentName(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.repo.User.ListSortedByDepartmentName(ctx)
	if err != nil {
		return nil, apperrors.NewStorage("按部门排序查询用户", err)
	}
	return toUserResponses(users), nil
}

// ── 批量操作 ──

// UpdateEmailsByCity 按城市批量改邮箱，返回受影响行数
func (s *UserService) UpdateEmailsByCity(ctx context.Context, req *dto.BulkEmailUpdateRequest) (int64, error) {
	var affected int64
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		n, err := tx.User.UpdateWhere(ctx,
			query.Equals("address", req.City),
			map[string]string{"email": req.NewEmail})
		if err != nil {
			return err
		}
		affected = n
		return nil
	})
	if err != nil {
		return 0, wrapStorage("批量更新邮箱", err)
	}
	s.logger.Info("批量更新用户邮箱",
		zap.String("city", req.City),
		zap.Int64("affected", affected))
	return affected, nil
}

// DeleteByCity 按城市批量删除用户，返回受影响行数
func (s *UserService) DeleteByCity(ctx context.Context, city string) (int64, error) {
	if strings.TrimSpace(city) == "" {
		return 0, apperrors.NewValidation("city", "城市不能为空")
	}

	var affected int64
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		n, err := tx.User.DeleteWhere(ctx, query.Equals("address", city))
		if err != nil {
			return err
		}
		affected = n
		return nil
	})
	if err != nil {
		return 0, wrapStorage("批量删除用户", err)
	}
	s.logger.Info("批量删除用户",
		zap.String("city", city),
		zap.Int64("affected", affected))
	return affected, nil
}

// ── 投影查询 ──

// Summaries 用户摘要投影，city 可选
func (s *UserService) Summaries(ctx context.Context, city string) ([]dto.UserSummary, error) {
	pred := query.Always()
	if city != "" {
		pred = query.Equals("address", city)
	}
	summaries, err := s.repo.User.ListSummaries(ctx, pred)
	if err != nil {
		return nil, wrapStorage("查询用户摘要", err)
	}
	return summaries, nil
}

// UserDepartments 用户 + 部门联合投影
func (s *UserService) UserDepartments(ctx context.Context) ([]dto.UserDept, error) {
	rows, err := s.repo.User.ListUserDept(ctx)
	if err != nil {
		return nil, apperrors.NewStorage("查询用户部门投影", err)
	}
	return rows, nil
}

// ── 视图转换 ──

// wrapStorage 归一化底层错误：校验错误原样透传，其余包为存储错误
func wrapStorage(op string, err error) error {
	if apperrors.IsValidation(err) {
		return err
	}
	return apperrors.NewStorage(op, err)
}

func toUserResponse(user *model.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:       user.ID,
		UserName: user.UserName,
		Email:    user.Email,
		Address:  user.Address,
		Contact:  user.Contact,
	}
	if user.Department != nil {
		resp.Department = &dto.DepartmentResponse{
			ID:       user.Department.ID,
			DeptCode: user.Department.DeptCode,
			DeptName: user.Department.DeptName,
		}
	}
	for _, role := range user.Roles {
		resp.Roles = append(resp.Roles, role.Name)
	}
	return resp
}

func toUserResponses(users []model.User) []dto.UserResponse {
	resps := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		resps = append(resps, toUserResponse(&users[i]))
	}
	return resps
}
