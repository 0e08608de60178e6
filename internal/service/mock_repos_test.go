package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gorm.io/gorm"

	"userdir/backend/internal/dto"
	"userdir/backend/internal/model"
	"userdir/backend/internal/query"
	"userdir/backend/internal/repository"
	apperrors "userdir/backend/pkg/errors"
)

// ── 谓词内存求值 ──

// evalPredicate 在内存中对单条记录求值谓词
// get 返回字段值，未知字段返回 ok=false
func evalPredicate(p query.Predicate, get func(field string) (string, bool)) (bool, error) {
	switch p.Op {
	case query.OpAlways:
		return true, nil

	case query.OpEquals, query.OpPrefix, query.OpSuffix, query.OpIContains:
		val, ok := get(p.Field)
		if !ok {
			return false, apperrors.NewValidation(p.Field, "未知的查询字段")
		}
		want := predValue(p)
		switch p.Op {
		case query.OpEquals:
			return val == want, nil
		case query.OpPrefix:
			return strings.HasPrefix(val, want), nil
		case query.OpSuffix:
			return strings.HasSuffix(val, want), nil
		default:
			return strings.Contains(strings.ToLower(val), strings.ToLower(want)), nil
		}

	case query.OpAnd:
		for _, sub := range p.Sub {
			ok, err := evalPredicate(sub, get)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil

	case query.OpOr:
		for _, sub := range p.Sub {
			ok, err := evalPredicate(sub, get)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}
	return false, apperrors.NewValidation("predicate", "未知的谓词操作符")
}

// predValue 谓词值转文本，与字段取值函数的文本表示对齐
func predValue(p query.Predicate) string {
	if s, ok := p.Value.(string); ok {
		return s
	}
	return fmt.Sprint(p.Value)
}

func userField(u *model.User, field string) (string, bool) {
	switch field {
	case "id":
		return strconv.FormatInt(u.ID, 10), true
	case "userName":
		return u.UserName, true
	case "email":
		return u.Email, true
	case "address":
		return u.Address, true
	case "contact":
		return u.Contact, true
	}
	return "", false
}

func deptField(d *model.Department, field string) (string, bool) {
	switch field {
	case "id":
		return strconv.FormatInt(d.ID, 10), true
	case "deptCode":
		return d.DeptCode, true
	case "deptName":
		return d.DeptName, true
	}
	return "", false
}

// sortUsers 按排序规格排序，id 字段按数值比较
func sortUsers(users []model.User, order query.OrderSpec) error {
	if _, ok := userField(&model.User{}, order.Field); !ok {
		return apperrors.NewValidation(order.Field, "未知的排序字段")
	}
	sort.SliceStable(users, func(i, j int) bool {
		var less bool
		if order.Field == "id" {
			less = users[i].ID < users[j].ID
		} else {
			a, _ := userField(&users[i], order.Field)
			b, _ := userField(&users[j], order.Field)
			less = a < b
		}
		if order.Direction == query.Desc {
			return !less
		}
		return less
	})
	return nil
}

// ── 用户 mock 仓库 ──

type mockUserRepo struct {
	mu     sync.Mutex
	users  map[int64]*model.User
	nextID int64
	depts  *mockDeptRepo
}

func newMockUserRepo(depts *mockDeptRepo) *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*model.User), depts: depts}
}

func copyUser(u *model.User) *model.User {
	cp := *u
	cp.Department = nil
	if u.Department != nil {
		d := *u.Department
		cp.Department = &d
	}
	cp.Roles = append([]model.Role(nil), u.Roles...)
	return &cp
}

// resolve 填充部门关联（模拟 Preload）
func (m *mockUserRepo) resolve(u *model.User) *model.User {
	cp := copyUser(u)
	if cp.DepartmentID != nil && m.depts != nil {
		if d, ok := m.depts.depts[*cp.DepartmentID]; ok {
			dd := *d
			cp.Department = &dd
		}
	}
	return cp
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	m.nextID++
	user.ID = m.nextID
	m.users[user.ID] = copyUser(user)
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m.resolve(u), nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return m.resolve(u), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.users {
		if id != user.ID && u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if _, ok := m.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.users[user.ID] = copyUser(user)
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedAll(), nil
}

func (m *mockUserRepo) sortedAll() []model.User {
	out := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *m.resolve(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *mockUserRepo) filter(pred query.Predicate) ([]model.User, error) {
	var out []model.User
	for _, u := range m.sortedAll() {
		u := u
		ok, err := evalPredicate(pred, func(f string) (string, bool) { return userField(&u, f) })
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) FindByPredicate(_ context.Context, pred query.Predicate, order *query.OrderSpec) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users, err := m.filter(pred)
	if err != nil {
		return nil, err
	}
	if order != nil {
		if err := sortUsers(users, *order); err != nil {
			return nil, err
		}
	}
	return users, nil
}

func (m *mockUserRepo) Count(_ context.Context, pred query.Predicate) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users, err := m.filter(pred)
	if err != nil {
		return 0, err
	}
	return int64(len(users)), nil
}

func (m *mockUserRepo) ListPaginated(_ context.Context, pred query.Predicate, order *query.OrderSpec, page query.PageSpec) ([]model.User, int64, error) {
	if err := page.Validate(); err != nil {
		return nil, 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	users, err := m.filter(pred)
	if err != nil {
		return nil, 0, err
	}
	spec := query.OrderAsc("id")
	if order != nil {
		spec = *order
	}
	if err := sortUsers(users, spec); err != nil {
		return nil, 0, err
	}
	total := int64(len(users))
	start := page.Offset()
	if start >= len(users) {
		return nil, total, nil
	}
	end := start + page.Size
	if end > len(users) {
		end = len(users)
	}
	return users[start:end], total, nil
}

func (m *mockUserRepo) ListWithDepartment(_ context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.User
	for _, u := range m.sortedAll() {
		if u.Department != nil {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) ListByDepartmentName(_ context.Context, deptName string) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.User
	for _, u := range m.sortedAll() {
		if u.Department != nil && u.Department.DeptName == deptName {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) ListSortedByDepartmentName(_ context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.User
	for _, u := range m.sortedAll() {
		if u.Department != nil {
			out = append(out, u)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Department.DeptName > out[j].Department.DeptName
	})
	return out, nil
}

func (m *mockUserRepo) UpdateWhere(_ context.Context, pred query.Predicate, assignments map[string]string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for field := range assignments {
		if _, ok := userField(&model.User{}, field); !ok {
			return 0, apperrors.NewValidation(field, "未知的赋值字段")
		}
	}
	var affected int64
	for _, u := range m.users {
		u := u
		ok, err := evalPredicate(pred, func(f string) (string, bool) { return userField(u, f) })
		if err != nil {
			return 0, err
		}
		if !ok {
			continue
		}
		for field, value := range assignments {
			switch field {
			case "userName":
				u.UserName = value
			case "email":
				u.Email = value
			case "address":
				u.Address = value
			case "contact":
				u.Contact = value
			}
		}
		affected++
	}
	return affected, nil
}

func (m *mockUserRepo) DeleteWhere(_ context.Context, pred query.Predicate) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var affected int64
	for id, u := range m.users {
		u := u
		ok, err := evalPredicate(pred, func(f string) (string, bool) { return userField(u, f) })
		if err != nil {
			return 0, err
		}
		if ok {
			delete(m.users, id)
			affected++
		}
	}
	return affected, nil
}

func (m *mockUserRepo) ListSummaries(_ context.Context, pred query.Predicate) ([]dto.UserSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users, err := m.filter(pred)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, dto.UserSummary{UserName: u.UserName, Email: u.Email, Contact: u.Contact})
	}
	return out, nil
}

func (m *mockUserRepo) ListUserDept(_ context.Context) ([]dto.UserDept, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []dto.UserDept
	for _, u := range m.sortedAll() {
		if u.Department != nil {
			out = append(out, dto.UserDept{
				UserName: u.UserName,
				Email:    u.Email,
				DeptName: u.Department.DeptName,
			})
		}
	}
	return out, nil
}

// ── 部门 mock 仓库 ──

type mockDeptRepo struct {
	mu     sync.Mutex
	depts  map[int64]*model.Department
	nextID int64
	users  *mockUserRepo
}

func newMockDeptRepo() *mockDeptRepo {
	return &mockDeptRepo{depts: make(map[int64]*model.Department)}
}

// clearRefs 删除部门后把所属用户的外键置空（模拟 ON DELETE SET NULL）
func (m *mockDeptRepo) clearRefs(deptID int64) {
	if m.users == nil {
		return
	}
	for _, u := range m.users.users {
		if u.DepartmentID != nil && *u.DepartmentID == deptID {
			u.DepartmentID = nil
		}
	}
}

func (m *mockDeptRepo) Create(_ context.Context, dept *model.Department) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.depts {
		if d.DeptCode == dept.DeptCode {
			return gorm.ErrDuplicatedKey
		}
	}
	m.nextID++
	dept.ID = m.nextID
	cp := *dept
	m.depts[dept.ID] = &cp
	return nil
}

func (m *mockDeptRepo) GetByID(_ context.Context, id int64) (*model.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.depts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *mockDeptRepo) GetByName(_ context.Context, deptName string) (*model.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.depts {
		if d.DeptName == deptName {
			cp := *d
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) Update(_ context.Context, dept *model.Department) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, d := range m.depts {
		if id != dept.ID && d.DeptCode == dept.DeptCode {
			return gorm.ErrDuplicatedKey
		}
	}
	if _, ok := m.depts[dept.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *dept
	m.depts[dept.ID] = &cp
	return nil
}

func (m *mockDeptRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.depts, id)
	m.clearRefs(id)
	return nil
}

func (m *mockDeptRepo) List(_ context.Context) ([]model.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedAll(), nil
}

func (m *mockDeptRepo) sortedAll() []model.Department {
	out := make([]model.Department, 0, len(m.depts))
	for _, d := range m.depts {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *mockDeptRepo) filter(pred query.Predicate) ([]model.Department, error) {
	var out []model.Department
	for _, d := range m.sortedAll() {
		d := d
		ok, err := evalPredicate(pred, func(f string) (string, bool) { return deptField(&d, f) })
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDeptRepo) FindByPredicate(_ context.Context, pred query.Predicate, order *query.OrderSpec) ([]model.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	depts, err := m.filter(pred)
	if err != nil {
		return nil, err
	}
	if order != nil {
		if _, ok := deptField(&model.Department{}, order.Field); !ok {
			return nil, apperrors.NewValidation(order.Field, "未知的排序字段")
		}
		sort.SliceStable(depts, func(i, j int) bool {
			var less bool
			if order.Field == "id" {
				less = depts[i].ID < depts[j].ID
			} else {
				a, _ := deptField(&depts[i], order.Field)
				b, _ := deptField(&depts[j], order.Field)
				less = a < b
			}
			if order.Direction == query.Desc {
				return !less
			}
			return less
		})
	}
	return depts, nil
}

func (m *mockDeptRepo) Count(_ context.Context, pred query.Predicate) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	depts, err := m.filter(pred)
	if err != nil {
		return 0, err
	}
	return int64(len(depts)), nil
}

func (m *mockDeptRepo) ListPaginated(_ context.Context, pred query.Predicate, _ *query.OrderSpec, page query.PageSpec) ([]model.Department, int64, error) {
	if err := page.Validate(); err != nil {
		return nil, 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	depts, err := m.filter(pred)
	if err != nil {
		return nil, 0, err
	}
	total := int64(len(depts))
	start := page.Offset()
	if start >= len(depts) {
		return nil, total, nil
	}
	end := start + page.Size
	if end > len(depts) {
		end = len(depts)
	}
	return depts[start:end], total, nil
}

func (m *mockDeptRepo) UpdateWhere(_ context.Context, pred query.Predicate, assignments map[string]string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for field := range assignments {
		if _, ok := deptField(&model.Department{}, field); !ok {
			return 0, apperrors.NewValidation(field, "未知的赋值字段")
		}
	}
	var affected int64
	for _, d := range m.depts {
		d := d
		ok, err := evalPredicate(pred, func(f string) (string, bool) { return deptField(d, f) })
		if err != nil {
			return 0, err
		}
		if !ok {
			continue
		}
		for field, value := range assignments {
			switch field {
			case "deptCode":
				d.DeptCode = value
			case "deptName":
				d.DeptName = value
			}
		}
		affected++
	}
	return affected, nil
}

func (m *mockDeptRepo) DeleteWhere(_ context.Context, pred query.Predicate) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var affected int64
	for id, d := range m.depts {
		d := d
		ok, err := evalPredicate(pred, func(f string) (string, bool) { return deptField(d, f) })
		if err != nil {
			return 0, err
		}
		if ok {
			delete(m.depts, id)
			m.clearRefs(id)
			affected++
		}
	}
	return affected, nil
}

// ── 角色 mock 仓库 ──

type mockRoleRepo struct {
	mu     sync.Mutex
	roles  map[string]*model.Role
	nextID int64
}

func newMockRoleRepo() *mockRoleRepo {
	return &mockRoleRepo{roles: make(map[string]*model.Role)}
}

func (m *mockRoleRepo) GetOrCreate(_ context.Context, name string) (*model.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.roles[name]; ok {
		cp := *r
		return &cp, nil
	}
	m.nextID++
	r := &model.Role{ID: m.nextID, Name: name}
	m.roles[name] = r
	cp := *r
	return &cp, nil
}

func (m *mockRoleRepo) GetByName(_ context.Context, name string) (*model.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.roles[name]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

// ── 记录型 mock 邮件发送器 ──

type mockMailer struct {
	mu    sync.Mutex
	sent  []string
	fail  bool
	sendC chan struct{}
}

func newMockMailer() *mockMailer {
	return &mockMailer{sendC: make(chan struct{}, 16)}
}

func (m *mockMailer) Send(to, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer func() { m.sendC <- struct{}{} }()
	if m.fail {
		return apperrors.NewStorage("邮件", gorm.ErrInvalidDB)
	}
	m.sent = append(m.sent, to)
	return nil
}

func (m *mockMailer) sentTo() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

// ── 测试装配 ──

func newTestRepo() (*repository.Repository, *mockUserRepo, *mockDeptRepo) {
	depts := newMockDeptRepo()
	users := newMockUserRepo(depts)
	depts.users = users
	return &repository.Repository{
		User:       users,
		Department: depts,
		Role:       newMockRoleRepo(),
	}, users, depts
}
